package domain

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

// Purchase is a ledger row. Uniqueness is scoped to completed rows: a user
// may accumulate pending or failed rows for a course, but at most one
// completed row per (user, course) may ever exist. The partial index is the
// actual mutual-exclusion mechanism between the webhook and the client
// fallback recorder.
type Purchase struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID      `gorm:"type:uuid;index;uniqueIndex:uniq_user_course_completed,where:status = 'completed';not null" json:"user_id"`
	CourseID              uuid.UUID      `gorm:"type:uuid;index;uniqueIndex:uniq_user_course_completed,where:status = 'completed';not null" json:"course_id"`
	StripePaymentIntentID string         `json:"stripe_payment_intent_id,omitempty"`
	StripeCustomerID      string         `json:"stripe_customer_id,omitempty"`
	AmountPaid            float64        `gorm:"not null" json:"amount_paid"`
	Status                PurchaseStatus `gorm:"index;default:'completed'" json:"status"`
	PurchasedAt           time.Time      `json:"purchased_at"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"course,omitempty"`
}

// AccessibleCourse is one entry of a user's course list: either a real
// completed purchase or a synthesized entry for a free course the user has
// started. EntryID for synthesized entries is "free-<courseID>" so the two
// kinds stay distinguishable to the caller.
type AccessibleCourse struct {
	EntryID    string    `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	AmountPaid float64   `json:"amount_paid"`
	Course     Course    `json:"course"`
	Purchased  bool      `json:"purchased"`
}
