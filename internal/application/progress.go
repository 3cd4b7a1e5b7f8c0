package application

import (
	"context"
	"log"
	"math"
	"time"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// ProgressTracker derives and mutates per-lesson and per-course completion
// state. Completion flags are normalized on every read regardless of how
// they were stored; new writes always store the canonical boolean.
type ProgressTracker struct {
	courses  CourseStore
	progress ProgressStore
}

func NewProgressTracker(courses CourseStore, progress ProgressStore) *ProgressTracker {
	return &ProgressTracker{courses: courses, progress: progress}
}

// CourseProgress computes the completion summary for one course. A failure
// on the progress query degrades to a zeroed summary with the real lesson
// total, so a transient store error never blocks course-list rendering; the
// failure is still logged.
func (t *ProgressTracker) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*domain.CourseProgress, error) {
	lessons, err := t.courses.GetLessons(ctx, courseID)
	if err != nil {
		return &domain.CourseProgress{}, err
	}

	total := len(lessons)
	if total == 0 {
		return &domain.CourseProgress{}, nil
	}

	lessonIDs := make([]uuid.UUID, 0, total)
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}

	rows, err := t.progress.ListByUserAndLessons(ctx, userID, lessonIDs)
	if err != nil {
		log.Printf("progress query failed for course %s, degrading to zero summary: %v", courseID, err)
		return &domain.CourseProgress{Total: total}, nil
	}

	completed := 0
	for _, row := range rows {
		if row.Completed.Bool() {
			completed++
		}
	}

	return &domain.CourseProgress{
		Completed:  completed,
		Total:      total,
		Percentage: ProgressPercentage(completed, total),
		Lessons:    rows,
	}, nil
}

// ProgressPercentage rounds completed/total to a whole percent; 0 when the
// course has no lessons.
func ProgressPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// LessonProgress returns the user's progress row for one lesson.
// domain.ErrProgressNotFound means the lesson was never started, which is an
// expected outcome, not a failure.
func (t *ProgressTracker) LessonProgress(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	return t.progress.Get(ctx, userID, lessonID)
}

// UpdateLessonProgress upserts the row keyed on (user, lesson). The
// completed flag is accepted in any historical representation and
// normalized before the write. Percentage is clamped to [0,100].
func (t *ProgressTracker) UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, percentage int, completed any) (*domain.LessonProgress, error) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	row := &domain.LessonProgress{
		ID:                 uuid.New(),
		UserID:             userID,
		LessonID:           lessonID,
		ProgressPercentage: percentage,
		Completed:          domain.CompletedFlag(domain.NormalizeCompleted(completed)),
		LastWatchedAt:      time.Now().UTC(),
	}
	if err := t.progress.Upsert(ctx, row); err != nil {
		return nil, err
	}
	return t.progress.Get(ctx, userID, lessonID)
}

// NextLesson picks the lesson to resume: the one after the highest
// completed order index, the last lesson when everything is done, the first
// when nothing is. A failed progress lookup counts the lesson as not
// completed and never aborts the scan.
func (t *ProgressTracker) NextLesson(ctx context.Context, userID uuid.UUID, lessons []domain.Lesson) *domain.Lesson {
	if len(lessons) == 0 {
		return nil
	}

	lastCompleted := -1
	for i, lesson := range lessons {
		row, err := t.progress.Get(ctx, userID, lesson.ID)
		if err != nil {
			continue
		}
		if row.Completed.Bool() {
			lastCompleted = i
		}
	}

	next := lastCompleted + 1
	if next >= len(lessons) {
		return &lessons[len(lessons)-1]
	}
	return &lessons[next]
}
