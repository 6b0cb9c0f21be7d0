package sevenshifts

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	c := New("test-key", "1234")
	c.BaseURL = srv.URL
	return c
}

func TestTimePunches_FollowsCursor(t *testing.T) {
	// GIVEN: Two pages of punches behind a cursor
	// WHEN: TimePunches runs
	// THEN: Both pages are returned in order, with query params intact

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)

		require.Equal(t, "/company/1234/time_punches", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "2025-03-10T00:00:00", q.Get("clocked_in[gte]"))
		assert.Equal(t, "2025-03-16T23:59:59", q.Get("clocked_out[lte]"))
		assert.Equal(t, "true", q.Get("localize_search_time"))
		assert.Equal(t, "42", q.Get("location_id"))

		w.Header().Set("Content-Type", "application/json")
		if q.Get("cursor") == "" {
			fmt.Fprint(w, `{
				"data": [{"user_id": 7, "clocked_in": "2025-03-10T16:00:00Z", "clocked_out": "2025-03-11T00:00:00Z",
				          "approved": true, "hourly_wage": 1850,
				          "breaks": [{"in": "2025-03-10T19:00:00Z", "out": "2025-03-10T19:30:00Z", "paid": false}]}],
				"meta": {"cursor": {"next": "page-two"}}
			}`)
			return
		}
		require.Equal(t, "page-two", q.Get("cursor"))
		fmt.Fprint(w, `{
			"data": [{"user_id": 8, "clocked_in": "2025-03-11T16:00:00Z", "clocked_out": "2025-03-11T22:00:00Z"}],
			"meta": {"cursor": {"next": ""}}
		}`)
	}))
	defer srv.Close()

	loc := int64(42)
	punches, err := testClient(srv).TimePunches(context.Background(), PunchFilter{
		StartDate:  "2025-03-10",
		EndDate:    "2025-03-16",
		LocationID: &loc,
	})

	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Len(t, punches, 2)

	assert.Equal(t, int64(7), punches[0].UserID)
	assert.True(t, punches[0].Approved)
	assert.Equal(t, 1850.0, punches[0].HourlyWage)
	require.Len(t, punches[0].Breaks, 1)
	assert.False(t, punches[0].Breaks[0].Paid)

	assert.Equal(t, int64(8), punches[1].UserID)
}

func TestTimePunches_Non2xxIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv).TimePunches(context.Background(), PunchFilter{
		StartDate: "2025-03-10", EndDate: "2025-03-16",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
}

func TestShiftsForWeek_WindowAndMalformedRows(t *testing.T) {
	// GIVEN: A week request for Monday 2025-03-10 (Pacific)
	// WHEN: The API returns one good and one malformed shift
	// THEN: The window is Pacific Mon 00:00 - Sun 23:59:59 in UTC, and the
	//       malformed row is skipped

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/company/1234/shifts", r.URL.Path)
		q := r.URL.Query()

		// Pacific is UTC-7 in March (PDT).
		assert.Equal(t, "2025-03-10T07:00:00Z", q.Get("start[gte]"))
		assert.Equal(t, "2025-03-17T06:59:59Z", q.Get("start[lte]"))
		assert.Equal(t, "false", q.Get("draft"))
		assert.Equal(t, "2025-03-01", r.Header.Get("x-api-version"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": [
			{"id": 1, "user_id": 7, "start": "2025-03-10T16:00:00Z", "end": "2025-03-11T00:00:00Z", "hourly_wage": 2000},
			{"id": 2, "user_id": 8, "start": "not-a-time", "end": "2025-03-11T00:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	weekStart := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	shifts, err := testClient(srv).ShiftsForWeek(context.Background(), weekStart, nil)

	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, int64(7), shifts[0].UserID)
	assert.Equal(t, 2000.0, shifts[0].HourlyWage)
}

func TestUsers_DegradesToPlaceholder(t *testing.T) {
	// GIVEN: One resolvable user and one that 404s
	// WHEN: Users runs
	// THEN: The failed lookup maps to "Unknown User", no error

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/company/1234/users/7" {
			assert.Equal(t, "true", r.URL.Query().Get("include_inactive"))
			fmt.Fprint(w, `{"data": {"first_name": "Mei", "last_name": "Chen", "employee_id": "G-1001"}}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	users, err := testClient(srv).Users(context.Background(), []int64{7, 99})

	require.NoError(t, err)
	assert.Equal(t, User{Name: "Mei Chen", EmployeeID: "G-1001"}, users[7])
	assert.Equal(t, "Unknown User", users[99].Name)
	assert.Empty(t, users[99].EmployeeID)
}
