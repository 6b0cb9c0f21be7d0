package sevenshifts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// User is the subset of a 7shifts user record the display endpoints need.
// EmployeeID is the payroll-system identifier, empty when unset.
type User struct {
	Name       string
	EmployeeID string
}

// unknownUser stands in when a lookup fails; display endpoints never break
// over a single missing user.
var unknownUser = User{Name: "Unknown User"}

type userEnvelope struct {
	Data struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		EmployeeID string `json:"employee_id"`
	} `json:"data"`
}

// Users looks up user details one id at a time. Failed lookups map to an
// "Unknown User" placeholder instead of an error.
func (c *Client) Users(ctx context.Context, ids []int64) (map[int64]User, error) {
	users := make(map[int64]User, len(ids))

	for _, id := range ids {
		user, err := c.user(ctx, id)
		if err != nil {
			users[id] = unknownUser
			continue
		}
		users[id] = user
	}

	return users, nil
}

func (c *Client) user(ctx context.Context, id int64) (User, error) {
	endpoint := fmt.Sprintf("%s/company/%s/users/%d?include_inactive=true", c.BaseURL, c.CompanyID, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return User{}, err
	}

	body, err := c.do(req)
	if err != nil {
		return User{}, err
	}
	defer body.Close()

	var envelope userEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return User{}, err
	}

	return User{
		Name:       strings.TrimSpace(envelope.Data.FirstName + " " + envelope.Data.LastName),
		EmployeeID: envelope.Data.EmployeeID,
	}, nil
}
