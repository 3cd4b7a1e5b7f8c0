package repository

import (
	"context"
	"errors"
	"time"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns the progress row for (user, lesson).
// domain.ErrProgressNotFound means the lesson was simply never started and
// must stay distinguishable from store failures.
func (r *ProgressRepository) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	var progress domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Upsert writes the progress row keyed on (user_id, lesson_id), mutating in
// place on conflict. The row is never deleted here.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *domain.LessonProgress) error {
	progress.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"progress_percentage", "completed", "last_watched_at", "updated_at",
			}),
		}).
		Create(progress).Error
}

func (r *ProgressRepository) ListByUserAndLessons(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) ([]domain.LessonProgress, error) {
	var rows []domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&rows).Error
	return rows, err
}

// CourseIDsWithActivity returns the distinct courses for which the user has
// any progress row at all. Used to surface started free courses on the
// account page.
func (r *ProgressRepository) CourseIDsWithActivity(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	tx := r.db.WithContext(ctx).
		Model(&domain.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ?", userID).
		Distinct().
		Pluck("lessons.course_id", &ids)
	return ids, tx.Error
}
