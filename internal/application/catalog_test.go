package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(courses *fakeCourseStore, purchases *fakePurchaseStore, progress *fakeProgressStore) *Catalog {
	tracker := NewProgressTracker(courses, progress)
	return NewCatalog(courses, purchases, progress, tracker, NewFlightRegistry())
}

func TestAllCoursesFreeFirst(t *testing.T) {
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{
		{ID: uuid.New(), Name: "World", BundleName: domain.BundleWorld},
		{ID: uuid.New(), Name: "Starter", BundleName: domain.BundleHelloStarter},
		{ID: uuid.New(), Name: "Intro", BundleName: domain.BundleFree},
	}
	catalog := newCatalog(courses, &fakePurchaseStore{}, newFakeProgressStore())

	out, err := catalog.AllCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Intro", out[0].Name)
	// Paid courses keep their stored order.
	assert.Equal(t, "World", out[1].Name)
	assert.Equal(t, "Starter", out[2].Name)
}

func TestUserCoursesMergesPurchasesAndFreeActivity(t *testing.T) {
	userID := uuid.New()
	paid := domain.Course{ID: uuid.New(), Name: "Jumpstart", Price: 49}
	free := domain.Course{ID: uuid.New(), Name: "Intro", Price: 0, BundleName: domain.BundleFree}

	courses := newFakeCourseStore()
	courses.courses = []domain.Course{paid, free}

	purchases := &fakePurchaseStore{rows: []domain.Purchase{{
		ID: uuid.New(), UserID: userID, CourseID: paid.ID,
		AmountPaid: 49, Status: domain.PurchaseCompleted, Course: &paid,
	}}}

	progress := newFakeProgressStore()
	progress.activity = []uuid.UUID{free.ID}

	catalog := newCatalog(courses, purchases, progress)
	out, err := catalog.UserCourses(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.True(t, out[0].Purchased)
	assert.Equal(t, paid.ID, out[0].CourseID)
	assert.False(t, out[1].Purchased)
	assert.Equal(t, free.ID, out[1].CourseID)
	assert.Equal(t, "free-"+free.ID.String(), out[1].EntryID)
}

// Duplicate purchase rows for one course collapse to the first entry, and a
// purchase suppresses the synthesized free entry for the same course.
func TestUserCoursesDeduplicatesByCourse(t *testing.T) {
	userID := uuid.New()
	course := domain.Course{ID: uuid.New(), Name: "Intro", Price: 0, BundleName: domain.BundleFree}
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{course}

	first := domain.Purchase{
		ID: uuid.New(), UserID: userID, CourseID: course.ID,
		AmountPaid: 10, Status: domain.PurchaseCompleted, Course: &course,
	}
	second := first
	second.ID = uuid.New()
	second.AmountPaid = 20
	purchases := &fakePurchaseStore{rows: []domain.Purchase{first, second}}

	progress := newFakeProgressStore()
	progress.activity = []uuid.UUID{course.ID}

	catalog := newCatalog(courses, purchases, progress)
	out, err := catalog.UserCourses(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, first.ID.String(), out[0].EntryID)
	assert.Equal(t, 10.0, out[0].AmountPaid)
	assert.True(t, out[0].Purchased)
}

func TestUserCoursesFreeWithoutActivityStaysOff(t *testing.T) {
	userID := uuid.New()
	free := domain.Course{ID: uuid.New(), Price: 0, BundleName: domain.BundleFree}
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{free}

	catalog := newCatalog(courses, &fakePurchaseStore{}, newFakeProgressStore())
	out, err := catalog.UserCourses(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, out)
}

// A failing free-course or activity lookup only costs the synthesized
// entries; purchases still come back.
func TestUserCoursesSynthesisFailureKeepsPurchases(t *testing.T) {
	userID := uuid.New()
	paid := domain.Course{ID: uuid.New(), Price: 49}
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{paid}
	courses.freeErr = errors.New("db down")

	purchases := &fakePurchaseStore{rows: []domain.Purchase{{
		ID: uuid.New(), UserID: userID, CourseID: paid.ID,
		Status: domain.PurchaseCompleted, Course: &paid,
	}}}

	catalog := newCatalog(courses, purchases, newFakeProgressStore())
	out, err := catalog.UserCourses(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Purchased)
}

func TestUserCoursesSkipsDetachedPurchase(t *testing.T) {
	userID := uuid.New()
	purchases := &fakePurchaseStore{rows: []domain.Purchase{{
		ID: uuid.New(), UserID: userID, CourseID: uuid.New(),
		Status: domain.PurchaseCompleted, Course: nil,
	}}}

	catalog := newCatalog(newFakeCourseStore(), purchases, newFakeProgressStore())
	out, err := catalog.UserCourses(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUserCoursesPurchaseQueryFailure(t *testing.T) {
	purchases := &fakePurchaseStore{listErr: errors.New("db down")}
	catalog := newCatalog(newFakeCourseStore(), purchases, newFakeProgressStore())

	_, err := catalog.UserCourses(context.Background(), uuid.New())
	assert.Error(t, err)
}

// While one load for a user is running, a second one is rejected; once the
// first finishes the key is released.
func TestUserCoursesRejectsOverlappingLoad(t *testing.T) {
	userID := uuid.New()
	started := make(chan struct{})
	release := make(chan struct{})

	purchases := &fakePurchaseStore{}
	courses := newFakeCourseStore()
	progress := newFakeProgressStore()
	catalog := newCatalog(courses, purchases, progress)

	// Block the first load inside the purchase query.
	blocking := &blockingPurchaseStore{inner: purchases, started: started, release: release}
	catalog.purchases = blocking

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := catalog.UserCourses(context.Background(), userID)
		assert.NoError(t, err)
	}()

	<-started
	_, err := catalog.UserCourses(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrRefreshInProgress)

	// A different user is unaffected.
	_, err = catalog.UserCourses(context.Background(), uuid.New())
	assert.NoError(t, err)

	close(release)
	wg.Wait()

	// Key released: the same user may load again.
	_, err = catalog.UserCourses(context.Background(), userID)
	assert.NoError(t, err)
}

type blockingPurchaseStore struct {
	inner   *fakePurchaseStore
	started chan struct{}
	release chan struct{}
	first   atomic.Bool
}

func (s *blockingPurchaseStore) FindCompleted(ctx context.Context, userID, courseID uuid.UUID) (*domain.Purchase, error) {
	return s.inner.FindCompleted(ctx, userID, courseID)
}

func (s *blockingPurchaseStore) Create(ctx context.Context, purchase *domain.Purchase) error {
	return s.inner.Create(ctx, purchase)
}

func (s *blockingPurchaseStore) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	if s.first.CompareAndSwap(false, true) {
		close(s.started)
		<-s.release
	}
	return s.inner.ListCompletedByUser(ctx, userID)
}

func TestUserStats(t *testing.T) {
	userID := uuid.New()
	paid := domain.Course{ID: uuid.New(), Price: 49}
	courses := newFakeCourseStore()
	courses.courses = []domain.Course{paid}
	lessons := seedLessons(courses, paid.ID, 4)

	purchases := &fakePurchaseStore{rows: []domain.Purchase{{
		ID: uuid.New(), UserID: userID, CourseID: paid.ID,
		Status: domain.PurchaseCompleted, Course: &paid,
	}}}

	progress := newFakeProgressStore()
	progress.markCompleted(userID, lessons[0].ID)
	progress.markCompleted(userID, lessons[1].ID)
	progress.markCompleted(userID, lessons[2].ID)

	catalog := newCatalog(courses, purchases, progress)
	stats, err := catalog.UserStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 4, stats.TotalLessons)
	assert.Equal(t, 3, stats.CompletedLessons)
	assert.Equal(t, 75, stats.OverallPercent)
}
