package application

import (
	"context"
	"fmt"
	"log"
	"sort"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
)

// Catalog serves the course listing and the per-user accessible-course
// aggregation backing the account dashboard.
type Catalog struct {
	courses   CourseStore
	purchases PurchaseStore
	progress  ProgressStore
	tracker   *ProgressTracker
	flights   *FlightRegistry
}

func NewCatalog(courses CourseStore, purchases PurchaseStore, progress ProgressStore, tracker *ProgressTracker, flights *FlightRegistry) *Catalog {
	return &Catalog{
		courses:   courses,
		purchases: purchases,
		progress:  progress,
		tracker:   tracker,
		flights:   flights,
	}
}

// AllCourses lists the catalog with the free course sorted first, keeping
// stored order otherwise.
func (c *Catalog) AllCourses(ctx context.Context) ([]domain.Course, error) {
	courses, err := c.courses.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].BundleName.SortRank() < courses[j].BundleName.SortRank()
	})
	return courses, nil
}

// Course returns one course with its lessons in order.
func (c *Catalog) Course(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, err := c.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := c.courses.GetLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons
	return course, nil
}

// UserCourses merges the user's completed purchases with free courses the
// user has started, deduplicated by course ID with first-seen-wins in input
// order. Purchased entries precede synthesized free entries, so a purchase
// always takes precedence when both exist. The upstream query can
// legitimately return several purchase rows for one course (join
// duplication); the output still carries at most one entry per course.
//
// Overlapping calls for the same user are rejected with
// domain.ErrRefreshInProgress instead of racing a duplicate fetch.
func (c *Catalog) UserCourses(ctx context.Context, userID uuid.UUID) ([]domain.AccessibleCourse, error) {
	key := fmt.Sprintf("user-courses:%s", userID)
	if !c.flights.Begin(key) {
		return nil, domain.ErrRefreshInProgress
	}
	defer c.flights.End(key)

	purchases, err := c.purchases.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var out []domain.AccessibleCourse

	for _, p := range purchases {
		if p.Course == nil {
			log.Printf("purchase %s has no course attached, skipping", p.ID)
			continue
		}
		if seen[p.CourseID] {
			continue
		}
		seen[p.CourseID] = true
		out = append(out, domain.AccessibleCourse{
			EntryID:    p.ID.String(),
			UserID:     userID,
			CourseID:   p.CourseID,
			AmountPaid: p.AmountPaid,
			Course:     *p.Course,
			Purchased:  true,
		})
	}

	// Free courses only appear once the user has touched them; a free course
	// with no activity stays off the dashboard. Either lookup failing only
	// costs the synthesized entries, never the purchased ones.
	freeCourses, err := c.courses.GetFree(ctx)
	if err != nil {
		log.Printf("loading free courses for %s: %v", userID, err)
		return out, nil
	}
	activeCourseIDs, err := c.progress.CourseIDsWithActivity(ctx, userID)
	if err != nil {
		log.Printf("loading progress activity for %s: %v", userID, err)
		return out, nil
	}

	active := make(map[uuid.UUID]bool, len(activeCourseIDs))
	for _, id := range activeCourseIDs {
		active[id] = true
	}

	for _, free := range freeCourses {
		if !active[free.ID] || seen[free.ID] {
			continue
		}
		seen[free.ID] = true
		out = append(out, domain.AccessibleCourse{
			EntryID:    "free-" + free.ID.String(),
			UserID:     userID,
			CourseID:   free.ID,
			AmountPaid: 0,
			Course:     free,
			Purchased:  false,
		})
	}

	return out, nil
}

// UserStats sums progress across a user's accessible courses for the
// account dashboard.
type UserStats struct {
	Courses          int `json:"courses"`
	TotalLessons     int `json:"total_lessons"`
	CompletedLessons int `json:"completed_lessons"`
	OverallPercent   int `json:"overall_percent"`
}

func (c *Catalog) UserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	courses, err := c.UserCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{Courses: len(courses)}
	for _, entry := range courses {
		progress, err := c.tracker.CourseProgress(ctx, userID, entry.CourseID)
		if err != nil {
			log.Printf("stats: course progress for %s: %v", entry.CourseID, err)
			continue
		}
		stats.TotalLessons += progress.Total
		stats.CompletedLessons += progress.Completed
	}
	stats.OverallPercent = ProgressPercentage(stats.CompletedLessons, stats.TotalLessons)
	return stats, nil
}
