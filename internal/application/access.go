package application

import (
	"context"
	"errors"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// AccessDecision is the outcome of evaluating "can this user open this
// course's lessons".
type AccessDecision string

const (
	AccessGranted      AccessDecision = "granted"
	AccessDenySignIn   AccessDecision = "must_sign_in"
	AccessDenyNotFound AccessDecision = "not_found"
	AccessDenyPurchase AccessDecision = "must_purchase"
)

// AccessPolicy decides lesson access. It is read-only and must run before
// any lesson content or progress mutation is reachable.
type AccessPolicy struct {
	courses CourseStore
	ledger  *PurchaseLedger
}

func NewAccessPolicy(courses CourseStore, ledger *PurchaseLedger) *AccessPolicy {
	return &AccessPolicy{courses: courses, ledger: ledger}
}

// Evaluate returns the decision and, when the course exists, the course row
// so callers do not load it twice. Free-tier courses are granted
// unconditionally to any authenticated user; paid courses require a
// completed purchase. Store failures are returned as errors, distinct from
// a deny.
func (p *AccessPolicy) Evaluate(ctx context.Context, userID, courseID uuid.UUID) (AccessDecision, *domain.Course, error) {
	if userID == uuid.Nil {
		return AccessDenySignIn, nil, nil
	}

	course, err := p.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return AccessDenyNotFound, nil, nil
		}
		return "", nil, err
	}

	if course.IsFree() {
		return AccessGranted, course, nil
	}

	purchased, err := p.ledger.HasCompletedPurchase(ctx, userID, courseID)
	if err != nil {
		return "", nil, err
	}
	if !purchased {
		return AccessDenyPurchase, course, nil
	}
	return AccessGranted, course, nil
}
