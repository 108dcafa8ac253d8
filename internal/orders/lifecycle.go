package orders

import (
	"errors"
	"strings"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
)

var (
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrAlreadyReviewed      = errors.New("order already reviewed")
)

const (
	MinRating = 1
	MaxRating = 5
)

func CanCancel(o Order) bool   { return CanTransition(o.Status, StatusCancelled) }
func CanComplete(o Order) bool { return CanTransition(o.Status, StatusCompleted) }

// CanReview: satu review per order yang sudah selesai.
func CanReview(o Order) bool { return o.Status == StatusCompleted && !o.Reviewed() }

// StatusUpdate is the body of the backend status PATCH.
type StatusUpdate struct {
	Status             Status `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type CancelForm struct {
	Reason string `json:"reason"`
}

func (f CancelForm) Validate(o Order) (StatusUpdate, error) {
	if !CanCancel(o) {
		return StatusUpdate{}, &feedback.Conflict{
			Field:   "status",
			Message: "Pesanan dengan status " + o.Status.Label() + " tidak dapat dibatalkan.",
			Err:     ErrTransitionNotAllowed,
		}
	}
	reason := strings.TrimSpace(f.Reason)
	if reason == "" {
		return StatusUpdate{}, feedback.Field("reason", "Alasan pembatalan wajib diisi.")
	}
	return StatusUpdate{Status: StatusCancelled, CancellationReason: reason}, nil
}

// Completion is the pre-flight result of "complete order". Unpaid balance only produces a
// warning; the backend decides.
type Completion struct {
	Update  StatusUpdate `json:"update"`
	Warning string       `json:"warning,omitempty"`
}

func CheckCompletion(o Order) (Completion, error) {
	if !CanComplete(o) {
		return Completion{}, &feedback.Conflict{
			Field:   "status",
			Message: "Hanya pesanan yang sedang berlangsung yang dapat diselesaikan.",
			Err:     ErrTransitionNotAllowed,
		}
	}
	c := Completion{Update: StatusUpdate{Status: StatusCompleted}}
	if !o.IsFullyPaid {
		c.Warning = "Pembayaran pesanan ini belum lunas."
	}
	return c, nil
}

type ReviewPrompt struct {
	OrderID int64  `json:"order_id"`
	Open    bool   `json:"open"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// PromptAfterCompletion opens the review dialog right after a successful completion.
func PromptAfterCompletion(o Order) ReviewPrompt {
	return ReviewPrompt{OrderID: o.ID, Open: CanReview(o), Rating: 0}
}

func (p ReviewPrompt) CanSubmit() bool {
	return p.Rating >= MinRating && p.Rating <= MaxRating && strings.TrimSpace(p.Comment) != ""
}

func (p ReviewPrompt) Validate(o Order) (Review, error) {
	if o.Reviewed() {
		return Review{}, &feedback.Conflict{Message: "Pesanan ini sudah diulas.", Err: ErrAlreadyReviewed}
	}
	if o.Status != StatusCompleted {
		return Review{}, &feedback.Conflict{Message: "Ulasan hanya untuk pesanan yang sudah selesai.", Err: ErrTransitionNotAllowed}
	}
	v := &feedback.Invalid{}
	if p.Rating < MinRating || p.Rating > MaxRating {
		v.Add("rating", "Pilih rating 1 sampai 5.")
	}
	if strings.TrimSpace(p.Comment) == "" {
		v.Add("comment", "Komentar wajib diisi.")
	}
	if err := v.OrNil(); err != nil {
		return Review{}, err
	}
	return Review{Rating: p.Rating, Comment: strings.TrimSpace(p.Comment)}, nil
}
