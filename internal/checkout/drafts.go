package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
)

// Draft is an unfinished order form of one user.
type Draft struct {
	UserID    int64     `json:"user_id"`
	Form      Form      `json:"form"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DraftStore interface {
	Get(ctx context.Context, userID int64) (Draft, error)
	Put(ctx context.Context, d Draft) (Draft, error)
	Delete(ctx context.Context, userID int64) error
}

type DraftRepo struct{ DB *pgxpool.Pool }

func (r *DraftRepo) Get(ctx context.Context, userID int64) (Draft, error) {
	var (
		raw []byte
		d   = Draft{UserID: userID}
	)
	err := r.DB.QueryRow(ctx, `SELECT form, updated_at FROM order_drafts WHERE user_id=$1`, userID).
		Scan(&raw, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Draft{}, fmt.Errorf("draft of user %d: %w", userID, feedback.ErrNotFound)
	}
	if err != nil {
		return Draft{}, err
	}
	if err := json.Unmarshal(raw, &d.Form); err != nil {
		return Draft{}, fmt.Errorf("decode draft of user %d: %w", userID, err)
	}
	return d, nil
}

// Put upserts; satu user hanya punya satu draft.
func (r *DraftRepo) Put(ctx context.Context, d Draft) (Draft, error) {
	raw, err := json.Marshal(d.Form)
	if err != nil {
		return Draft{}, err
	}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO order_drafts(user_id, form, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET form = EXCLUDED.form, updated_at = now()
		RETURNING updated_at`, d.UserID, raw).Scan(&d.UpdatedAt)
	if err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (r *DraftRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM order_drafts WHERE user_id=$1`, userID)
	return err
}
