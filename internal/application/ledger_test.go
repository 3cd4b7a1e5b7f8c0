package application

import (
	"context"
	"errors"
	"testing"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecordFirstWrite(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{{ID: courseID, Name: "Jumpstart", Price: 49}}
	purchases := &fakePurchaseStore{}
	ledger := NewPurchaseLedger(purchases, courses)

	purchase, already, err := ledger.Record(context.Background(), userID, courseID, "pi_123")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.PurchaseCompleted, purchase.Status)
	assert.Equal(t, 49.0, purchase.AmountPaid)
	assert.Equal(t, "pi_123", purchase.StripePaymentIntentID)
	assert.Equal(t, 1, purchases.completedCount(userID, courseID))
}

func TestLedgerRecordIsIdempotent(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{{ID: courseID, Price: 49}}
	purchases := &fakePurchaseStore{}
	ledger := NewPurchaseLedger(purchases, courses)

	first, already, err := ledger.Record(context.Background(), userID, courseID, "pi_123")
	require.NoError(t, err)
	require.False(t, already)

	second, already, err := ledger.Record(context.Background(), userID, courseID, "pi_456")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, purchases.completedCount(userID, courseID))
}

func TestLedgerRecordUnknownCourse(t *testing.T) {
	ledger := NewPurchaseLedger(&fakePurchaseStore{}, newFakeCourseStore())

	_, _, err := ledger.Record(context.Background(), uuid.New(), uuid.New(), "pi_123")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

// A concurrent writer lands between the pre-check and the insert. The insert
// fails on the uniqueness constraint and the winner's row is returned as an
// already-recorded success.
func TestLedgerRecordLosesRace(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{{ID: courseID, Price: 49}}

	winner := domain.Purchase{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   domain.PurchaseCompleted,
	}
	purchases := &fakePurchaseStore{}
	purchases.onCreate = func(*domain.Purchase) error {
		purchases.rows = append(purchases.rows, winner)
		purchases.onCreate = nil
		return domain.ErrAlreadyPurchased
	}
	ledger := NewPurchaseLedger(purchases, courses)

	got, already, err := ledger.Record(context.Background(), userID, courseID, "pi_123")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 1, purchases.completedCount(userID, courseID))
}

func TestLedgerRecordFromProviderUsesEventAmount(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	purchases := &fakePurchaseStore{}
	ledger := NewPurchaseLedger(purchases, newFakeCourseStore())

	purchase, already, err := ledger.RecordFromProvider(context.Background(), userID, courseID, "pi_evt", "cus_1", 79.5)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, 79.5, purchase.AmountPaid)
	assert.Equal(t, "cus_1", purchase.StripeCustomerID)
}

func TestLedgerRecordStoreFailure(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{{ID: courseID, Price: 49}}

	boom := errors.New("connection reset")
	purchases := &fakePurchaseStore{createErr: boom}
	ledger := NewPurchaseLedger(purchases, courses)

	_, _, err := ledger.Record(context.Background(), userID, courseID, "pi_123")
	assert.ErrorIs(t, err, boom)
}

func TestHasCompletedPurchase(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	purchases := &fakePurchaseStore{rows: []domain.Purchase{
		{ID: uuid.New(), UserID: userID, CourseID: courseID, Status: domain.PurchaseCompleted},
	}}
	ledger := NewPurchaseLedger(purchases, newFakeCourseStore())

	ok, err := ledger.HasCompletedPurchase(context.Background(), userID, courseID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.HasCompletedPurchase(context.Background(), userID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

// Failed and pending rows never grant ownership.
func TestHasCompletedPurchaseIgnoresNonCompleted(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()
	purchases := &fakePurchaseStore{rows: []domain.Purchase{
		{ID: uuid.New(), UserID: userID, CourseID: courseID, Status: domain.PurchaseFailed},
		{ID: uuid.New(), UserID: userID, CourseID: courseID, Status: domain.PurchasePending},
	}}
	ledger := NewPurchaseLedger(purchases, newFakeCourseStore())

	ok, err := ledger.HasCompletedPurchase(context.Background(), userID, courseID)
	require.NoError(t, err)
	assert.False(t, ok)
}
