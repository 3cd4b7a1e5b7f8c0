package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// PurchaseLedger owns the at-most-one-completed-purchase invariant. Two
// independent callers write to it after a successful payment: the provider
// webhook (which may retry) and the client-triggered fallback recorder. Both
// paths converge on the same row. The pre-check is a fast path only; the
// store's completed-scoped unique index is what actually prevents
// duplicates under a race.
type PurchaseLedger struct {
	purchases PurchaseStore
	courses   CourseStore
}

func NewPurchaseLedger(purchases PurchaseStore, courses CourseStore) *PurchaseLedger {
	return &PurchaseLedger{purchases: purchases, courses: courses}
}

func (l *PurchaseLedger) HasCompletedPurchase(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	purchase, err := l.purchases.FindCompleted(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	return purchase != nil, nil
}

// Record is the client-fallback write path. The amount is taken from the
// authoritative course row, never from client input.
func (l *PurchaseLedger) Record(ctx context.Context, userID, courseID uuid.UUID, paymentRef string) (*domain.Purchase, bool, error) {
	course, err := l.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return l.record(ctx, userID, courseID, paymentRef, "", course.Price)
}

// RecordFromProvider is the webhook write path. The amount comes from the
// verified provider event, which itself originated from a checkout session
// priced off the course row.
func (l *PurchaseLedger) RecordFromProvider(ctx context.Context, userID, courseID uuid.UUID, paymentRef, customerRef string, amount float64) (*domain.Purchase, bool, error) {
	return l.record(ctx, userID, courseID, paymentRef, customerRef, amount)
}

// record inserts idempotently: an existing completed purchase is returned
// as success (already=true) rather than duplicated or treated as an error.
func (l *PurchaseLedger) record(ctx context.Context, userID, courseID uuid.UUID, paymentRef, customerRef string, amount float64) (*domain.Purchase, bool, error) {
	existing, err := l.purchases.FindCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, false, fmt.Errorf("checking existing purchase: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	purchase := &domain.Purchase{
		ID:                    uuid.New(),
		UserID:                userID,
		CourseID:              courseID,
		StripePaymentIntentID: paymentRef,
		StripeCustomerID:      customerRef,
		AmountPaid:            amount,
		Status:                domain.PurchaseCompleted,
		PurchasedAt:           time.Now().UTC(),
	}

	if err := l.purchases.Create(ctx, purchase); err != nil {
		if errors.Is(err, domain.ErrAlreadyPurchased) {
			// Lost the race against the other write path; the winner's row
			// is the purchase.
			winner, findErr := l.purchases.FindCompleted(ctx, userID, courseID)
			if findErr != nil {
				return nil, false, findErr
			}
			if winner != nil {
				return winner, true, nil
			}
		}
		return nil, false, fmt.Errorf("recording purchase: %w", err)
	}
	return purchase, false, nil
}
