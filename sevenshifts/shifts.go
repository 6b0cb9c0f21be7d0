package sevenshifts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bafang/labor-engine/labor"
)

type shiftJSON struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	HourlyWage float64     `json:"hourly_wage"`
	Breaks     []breakJSON `json:"breaks"`
}

type shiftEnvelope struct {
	Data []shiftJSON `json:"data"`
}

// ShiftsForWeek fetches the scheduled (non-draft, non-deleted) shifts whose
// start falls inside the business-timezone week beginning at weekStart.
// weekStart's calendar date is interpreted in the business timezone; the
// window covers Monday 00:00:00 through Sunday 23:59:59 local, converted to
// UTC for the API.
func (c *Client) ShiftsForWeek(ctx context.Context, weekStart time.Time, locationID *int64) ([]labor.Shift, error) {
	zone := labor.BusinessZone()
	local := weekStart.In(zone)
	if weekStart.Location() == time.UTC && weekStart.Hour() == 0 {
		// A bare date (midnight UTC) means the local calendar date.
		local = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, zone)
	} else {
		local = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
	}

	weekEnd := local.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	params := url.Values{}
	params.Set("start[gte]", local.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("start[lte]", weekEnd.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("limit", "500")
	params.Set("include_deleted", "false")
	params.Set("draft", "false")
	if locationID != nil {
		params.Set("location_id", fmt.Sprintf("%d", *locationID))
	}

	endpoint := fmt.Sprintf("%s/company/%s/shifts?%s", c.BaseURL, c.CompanyID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch shifts: %w", err)
	}
	defer body.Close()

	var envelope shiftEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode shifts: %w", err)
	}

	shifts := make([]labor.Shift, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		start := parseInstant(raw.Start)
		end := parseInstant(raw.End)
		if start == nil || end == nil {
			// Skip malformed rows rather than failing the whole fetch.
			continue
		}

		breaks := make([]labor.Break, 0, len(raw.Breaks))
		for _, b := range raw.Breaks {
			breaks = append(breaks, labor.Break{In: parseInstant(b.In), Out: parseInstant(b.Out), Paid: b.Paid})
		}

		shifts = append(shifts, labor.Shift{
			UserID:     raw.UserID,
			Start:      start,
			End:        end,
			HourlyWage: raw.HourlyWage,
			Breaks:     breaks,
		})
	}

	return shifts, nil
}
