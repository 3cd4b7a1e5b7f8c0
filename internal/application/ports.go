package application

import (
	"context"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// Store interfaces satisfied by the gorm repositories. Use cases depend on
// these so they can be exercised against fakes.

type CourseStore interface {
	GetAll(ctx context.Context) ([]domain.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetFree(ctx context.Context) ([]domain.Course, error)
	GetLessons(ctx context.Context, courseID uuid.UUID) ([]domain.Lesson, error)
	GetLessonByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)
}

type PurchaseStore interface {
	FindCompleted(ctx context.Context, userID, courseID uuid.UUID) (*domain.Purchase, error)
	Create(ctx context.Context, purchase *domain.Purchase) error
	ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error)
}

type ProgressStore interface {
	Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error)
	Upsert(ctx context.Context, progress *domain.LessonProgress) error
	ListByUserAndLessons(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) ([]domain.LessonProgress, error)
	CourseIDsWithActivity(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
