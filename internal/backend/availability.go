package backend

import (
	"context"
	"fmt"
	"net/url"
)

type bookedDatesResponse struct {
	BookedDates []string `json:"bookedDates"`
}

func (c *Client) BookedDates(ctx context.Context) ([]string, error) {
	var out bookedDatesResponse
	if err := c.get(ctx, "booked_dates", "/api/booked-dates", nil, &out); err != nil {
		return nil, err
	}
	return out.BookedDates, nil
}

func (c *Client) MonthlyAvailability(ctx context.Context, year, month int) ([]string, error) {
	var out bookedDatesResponse
	path := fmt.Sprintf("/api/availability/%d/%d", year, month)
	if err := c.get(ctx, "monthly_availability", path, nil, &out); err != nil {
		return nil, err
	}
	return out.BookedDates, nil
}

// CheckDate is the authoritative per-date check.
func (c *Client) CheckDate(ctx context.Context, date string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	q := url.Values{"date": {date}}
	if err := c.get(ctx, "check_date", "/api/availability/check", q, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}
