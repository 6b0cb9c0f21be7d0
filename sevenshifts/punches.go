package sevenshifts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bafang/labor-engine/labor"
)

// PunchFilter selects time punches for a fetch. Dates are business-local
// calendar dates ("YYYY-MM-DD"); the search window runs from the start of
// StartDate to the end of EndDate.
type PunchFilter struct {
	StartDate  string
	EndDate    string
	LocationID *int64
	Approved   *bool
	Deleted    bool
	Limit      int // page size, capped upstream at 200; defaults to 100
}

type breakJSON struct {
	In   string `json:"in"`
	Out  string `json:"out"`
	Paid bool   `json:"paid"`
}

type punchJSON struct {
	UserID     int64       `json:"user_id"`
	ClockedIn  string      `json:"clocked_in"`
	ClockedOut string      `json:"clocked_out"`
	Approved   bool        `json:"approved"`
	Deleted    bool        `json:"deleted"`
	HourlyWage float64     `json:"hourly_wage"`
	Breaks     []breakJSON `json:"breaks"`
}

type punchEnvelope struct {
	Data []punchJSON `json:"data"`
	Meta struct {
		Cursor struct {
			Next string `json:"next"`
		} `json:"cursor"`
	} `json:"meta"`
}

// TimePunches fetches every time punch matching the filter, following the
// response cursor until exhausted.
func (c *Client) TimePunches(ctx context.Context, f PunchFilter) ([]labor.Punch, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("deleted", fmt.Sprintf("%t", f.Deleted))
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("clocked_in[gte]", f.StartDate+"T00:00:00")
	params.Set("clocked_out[lte]", f.EndDate+"T23:59:59")
	params.Set("localize_search_time", "true")

	if f.LocationID != nil {
		params.Set("location_id", fmt.Sprintf("%d", *f.LocationID))
	}
	if f.Approved != nil {
		params.Set("approved", fmt.Sprintf("%t", *f.Approved))
	}

	var punches []labor.Punch
	cursor := ""

	for {
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		endpoint := fmt.Sprintf("%s/company/%s/time_punches?%s", c.BaseURL, c.CompanyID, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		body, err := c.do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch time punches: %w", err)
		}

		var envelope punchEnvelope
		decodeErr := json.NewDecoder(body).Decode(&envelope)
		body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decode time punches: %w", decodeErr)
		}

		for _, raw := range envelope.Data {
			punches = append(punches, toPunch(raw))
		}

		cursor = envelope.Meta.Cursor.Next
		if cursor == "" {
			return punches, nil
		}
	}
}

func toPunch(raw punchJSON) labor.Punch {
	breaks := make([]labor.Break, 0, len(raw.Breaks))
	for _, b := range raw.Breaks {
		breaks = append(breaks, labor.Break{
			In:   parseInstant(b.In),
			Out:  parseInstant(b.Out),
			Paid: b.Paid,
		})
	}

	return labor.Punch{
		UserID:     raw.UserID,
		ClockedIn:  parseInstant(raw.ClockedIn),
		ClockedOut: parseInstant(raw.ClockedOut),
		Breaks:     breaks,
		Approved:   raw.Approved,
		Deleted:    raw.Deleted,
		HourlyWage: raw.HourlyWage,
	}
}
