package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

// Store keeps flows in Redis between requests; they expire with the countdown window.
type Store struct {
	rdb redis.UniversalClient
}

func NewStore(rdb redis.UniversalClient) *Store { return &Store{rdb: rdb} }

func (s *Store) Save(ctx context.Context, f *Flow) error {
	if err := redisx.SetJSON(ctx, s.rdb, redisx.PaymentFlow(f.ID), f, redisx.TTLPaymentFlow); err != nil {
		return fmt.Errorf("save payment flow %s: %w", f.ID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*Flow, error) {
	var f Flow
	found, err := redisx.GetJSON(ctx, s.rdb, redisx.PaymentFlow(id), &f)
	if err != nil {
		return nil, fmt.Errorf("load payment flow %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("payment flow %s: %w", id, feedback.ErrNotFound)
	}
	return &f, nil
}

// Update applies fn to the stored flow as a compare-and-set on its key. When another request
// changed the flow in between, nothing is written and the caller gets a wrong-step conflict.
// A step refused by fn (ErrWrongStep) is not written either. The returned error is fn's.
func (s *Store) Update(ctx context.Context, id string, fn func(*Flow) error) (*Flow, error) {
	key := redisx.PaymentFlow(id)
	var (
		f      Flow
		actErr error
	)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		found, err := redisx.GetJSON(ctx, tx, key, &f)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("payment flow %s: %w", id, feedback.ErrNotFound)
		}
		actErr = fn(&f)
		if errors.Is(actErr, ErrWrongStep) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			return redisx.SetJSON(ctx, p, key, &f, redisx.TTLPaymentFlow)
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		// kalah balapan dengan request lain (double click)
		cur, loadErr := s.Load(ctx, id)
		if loadErr != nil {
			return nil, loadErr
		}
		return cur, cur.wrongStep("update")
	case errors.Is(err, feedback.ErrNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("update payment flow %s: %w", id, err)
	}
	return &f, actErr
}

// WatchVA registers a pending VA payment for the status poller.
func (s *Store) WatchVA(ctx context.Context, paymentID int64) error {
	return s.rdb.SAdd(ctx, redisx.KeyVAWatch, paymentID).Err()
}

func (s *Store) UnwatchVA(ctx context.Context, paymentID int64) error {
	return s.rdb.SRem(ctx, redisx.KeyVAWatch, paymentID).Err()
}

func (s *Store) WatchedVA(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.rdb.SMembers(ctx, redisx.KeyVAWatch).ScanSlice(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveVAStatus records the last successful status check; later checks overwrite earlier ones.
func (s *Store) SaveVAStatus(ctx context.Context, paymentID int64, res StatusView) error {
	return redisx.SetJSON(ctx, s.rdb, redisx.VAStatus(paymentID), res, redisx.TTLVAStatus)
}

func (s *Store) LastVAStatus(ctx context.Context, paymentID int64) (StatusView, bool, error) {
	var v StatusView
	found, err := redisx.GetJSON(ctx, s.rdb, redisx.VAStatus(paymentID), &v)
	return v, found, err
}
