// Package availability decides which event dates can be picked and confirms a pick against the
// backend's authoritative per-date check.
package availability

import (
	"time"
)

// Set is a lookup of booked ISO dates (YYYY-MM-DD).
type Set map[string]struct{}

func NewSet(dates []string) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		if len(d) >= len(time.DateOnly) {
			// backend kadang mengirim datetime penuh
			d = d[:len(time.DateOnly)]
		}
		s[d] = struct{}{}
	}
	return s
}

func (s Set) Has(date string) bool {
	_, ok := s[date]
	return ok
}

// Rules are the inputs of the selectability decision. OwnDate is the current event date of the
// order being edited, empty for a new order.
type Rules struct {
	Today   string
	Booked  Set
	OwnDate string
}

// Selectable: not in the past, and not booked unless it is the edited order's own date.
func (r Rules) Selectable(date string) bool {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return false
	}
	if date < r.Today {
		return false
	}
	if r.Booked.Has(date) && date != r.OwnDate {
		return false
	}
	return true
}

type Day struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	InMonth    bool   `json:"in_month"`
	Past       bool   `json:"past"`
	Booked     bool   `json:"booked"`
	Own        bool   `json:"own,omitempty"`
	Selectable bool   `json:"selectable"`
}

type Month struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Weeks [][7]Day `json:"weeks"`
}

// BuildMonth lays out a month grid, weeks starting on Monday. Leading and trailing days of the
// neighbouring months are included but never selectable.
func BuildMonth(year int, month time.Month, r Rules) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7 // Senin = 0
	cur := first.AddDate(0, 0, -offset)

	m := Month{Year: year, Month: int(month)}
	for {
		var week [7]Day
		for i := range week {
			date := cur.Format(time.DateOnly)
			inMonth := cur.Month() == month
			week[i] = Day{
				Date:       date,
				Day:        cur.Day(),
				InMonth:    inMonth,
				Past:       date < r.Today,
				Booked:     r.Booked.Has(date),
				Own:        r.OwnDate != "" && date == r.OwnDate,
				Selectable: inMonth && r.Selectable(date),
			}
			cur = cur.AddDate(0, 0, 1)
		}
		m.Weeks = append(m.Weeks, week)
		if cur.Month() != month {
			break
		}
	}
	return m
}
