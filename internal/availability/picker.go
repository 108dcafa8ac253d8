package availability

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
)

var ErrDateUnavailable = errors.New("date unavailable")

const msgDateTaken = "Tanggal ini sudah dipesan, silakan pilih tanggal lain."

// Checker is the authoritative per-date availability check.
type Checker interface {
	CheckDate(ctx context.Context, date string) (bool, error)
}

// Picker is the state of the date dialog. Selected is the highlighted day, Confirmed the date
// accepted into the order form.
type Picker struct {
	Rules     Rules  `json:"rules"`
	Selected  string `json:"selected_date"`
	Confirmed string `json:"confirmed_date"`
	Error     string `json:"error,omitempty"`
	Open      bool   `json:"open"`
}

// Select is a no-op for days that cannot be picked.
func (p *Picker) Select(date string) bool {
	if !p.Rules.Selectable(date) {
		return false
	}
	p.Selected = date
	p.Error = ""
	return true
}

// Confirm accepts the selected date after asking the backend, since the booked list may be stale.
// On rejection the dialog stays open and the previously confirmed date is kept.
func (p *Picker) Confirm(ctx context.Context, c Checker) error {
	if p.Selected == "" {
		return feedback.Field("event_date", "Pilih tanggal acara terlebih dahulu.")
	}
	if p.Selected == p.Rules.OwnDate {
		p.accept()
		return nil
	}

	ok, err := c.CheckDate(ctx, p.Selected)
	if err != nil {
		return err
	}
	if !ok {
		p.Error = msgDateTaken
		p.Open = true
		return DateConflict()
	}
	p.accept()
	return nil
}

func (p *Picker) accept() {
	p.Confirmed = p.Selected
	p.Error = ""
	p.Open = false
}

func DateConflict() error {
	return &feedback.Conflict{Field: "event_date", Message: msgDateTaken, Err: ErrDateUnavailable}
}

// Recheck is the final-moment check before an order is submitted. The edited order's own date
// passes without a round trip.
func Recheck(ctx context.Context, c Checker, date, ownDate string) error {
	if date != "" && date == ownDate {
		return nil
	}
	ok, err := c.CheckDate(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		return DateConflict()
	}
	return nil
}
