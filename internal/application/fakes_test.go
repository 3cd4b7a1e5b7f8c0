package application

import (
	"context"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// In-memory store fakes backing the use-case tests. Error fields, when set,
// are returned verbatim so failure paths can be driven deterministically.

type fakeCourseStore struct {
	courses    []domain.Course
	lessons    map[uuid.UUID][]domain.Lesson
	allErr     error
	byIDErr    error
	freeErr    error
	lessonsErr error
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{lessons: make(map[uuid.UUID][]domain.Lesson)}
}

func (s *fakeCourseStore) GetAll(ctx context.Context) ([]domain.Course, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	out := make([]domain.Course, len(s.courses))
	copy(out, s.courses)
	return out, nil
}

func (s *fakeCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	for i := range s.courses {
		if s.courses[i].ID == id {
			c := s.courses[i]
			return &c, nil
		}
	}
	return nil, domain.ErrCourseNotFound
}

func (s *fakeCourseStore) GetFree(ctx context.Context) ([]domain.Course, error) {
	if s.freeErr != nil {
		return nil, s.freeErr
	}
	var out []domain.Course
	for _, c := range s.courses {
		if c.Price == 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCourseStore) GetLessons(ctx context.Context, courseID uuid.UUID) ([]domain.Lesson, error) {
	if s.lessonsErr != nil {
		return nil, s.lessonsErr
	}
	return s.lessons[courseID], nil
}

func (s *fakeCourseStore) GetLessonByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	for _, lessons := range s.lessons {
		for i := range lessons {
			if lessons[i].ID == id {
				l := lessons[i]
				return &l, nil
			}
		}
	}
	return nil, domain.ErrLessonNotFound
}

type fakePurchaseStore struct {
	rows      []domain.Purchase
	findErr   error
	createErr error
	listErr   error
	// onCreate runs before the insert; used to simulate a concurrent writer.
	onCreate func(*domain.Purchase) error
}

func (s *fakePurchaseStore) FindCompleted(ctx context.Context, userID, courseID uuid.UUID) (*domain.Purchase, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.rows {
		r := s.rows[i]
		if r.UserID == userID && r.CourseID == courseID && r.Status == domain.PurchaseCompleted {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *fakePurchaseStore) Create(ctx context.Context, purchase *domain.Purchase) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.onCreate != nil {
		if err := s.onCreate(purchase); err != nil {
			return err
		}
	}
	for _, r := range s.rows {
		if r.UserID == purchase.UserID && r.CourseID == purchase.CourseID &&
			r.Status == domain.PurchaseCompleted && purchase.Status == domain.PurchaseCompleted {
			return domain.ErrAlreadyPurchased
		}
	}
	s.rows = append(s.rows, *purchase)
	return nil
}

func (s *fakePurchaseStore) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Purchase
	for _, r := range s.rows {
		if r.UserID == userID && r.Status == domain.PurchaseCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakePurchaseStore) completedCount(userID, courseID uuid.UUID) int {
	n := 0
	for _, r := range s.rows {
		if r.UserID == userID && r.CourseID == courseID && r.Status == domain.PurchaseCompleted {
			n++
		}
	}
	return n
}

type progressKey struct {
	userID   uuid.UUID
	lessonID uuid.UUID
}

type fakeProgressStore struct {
	rows        map[progressKey]domain.LessonProgress
	activity    []uuid.UUID
	getErr      error
	upsertErr   error
	listErr     error
	activityErr error
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[progressKey]domain.LessonProgress)}
}

func (s *fakeProgressStore) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	row, ok := s.rows[progressKey{userID, lessonID}]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return &row, nil
}

func (s *fakeProgressStore) Upsert(ctx context.Context, progress *domain.LessonProgress) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	key := progressKey{progress.UserID, progress.LessonID}
	if existing, ok := s.rows[key]; ok {
		progress.ID = existing.ID
		progress.CreatedAt = existing.CreatedAt
	}
	s.rows[key] = *progress
	return nil
}

func (s *fakeProgressStore) ListByUserAndLessons(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) ([]domain.LessonProgress, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.LessonProgress
	for _, id := range lessonIDs {
		if row, ok := s.rows[progressKey{userID, id}]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeProgressStore) CourseIDsWithActivity(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if s.activityErr != nil {
		return nil, s.activityErr
	}
	return s.activity, nil
}

func (s *fakeProgressStore) markCompleted(userID, lessonID uuid.UUID) {
	s.rows[progressKey{userID, lessonID}] = domain.LessonProgress{
		ID:                 uuid.New(),
		UserID:             userID,
		LessonID:           lessonID,
		Completed:          true,
		ProgressPercentage: 100,
	}
}
