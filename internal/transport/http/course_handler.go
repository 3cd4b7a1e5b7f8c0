package handlers

import (
	"errors"
	"log"
	"net/http"

	"learnplatform/internal/application"
	"learnplatform/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseHandler struct {
	catalog *application.Catalog
	policy  *application.AccessPolicy
	tracker *application.ProgressTracker
}

func NewCourseHandler(catalog *application.Catalog, policy *application.AccessPolicy, tracker *application.ProgressTracker) *CourseHandler {
	return &CourseHandler{catalog: catalog, policy: policy, tracker: tracker}
}

// userIDFrom reads the authenticated user set by the auth middleware.
func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

func courseIDFrom(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.catalog.AllCourses(c)
	if err != nil {
		log.Printf("courses: listing: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetOne(c *gin.Context) {
	id, ok := courseIDFrom(c)
	if !ok {
		return
	}

	course, err := h.catalog.Course(c, id)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		log.Printf("courses: loading %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

// GET /api/my-courses
func (h *CourseHandler) MyCourses(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	courses, err := h.catalog.UserCourses(c, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Course list refresh already in progress"})
			return
		}
		log.Printf("my-courses: %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load your courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GET /api/my-courses/stats
func (h *CourseHandler) Stats(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	stats, err := h.catalog.UserStats(c, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Course list refresh already in progress"})
			return
		}
		log.Printf("stats: %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load your stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/courses/:id/access
func (h *CourseHandler) Access(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	courseID, ok := courseIDFrom(c)
	if !ok {
		return
	}

	decision, _, err := h.policy.Evaluate(c, userID, courseID)
	if err != nil {
		log.Printf("access: %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify access"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allowed":  decision == application.AccessGranted,
		"decision": decision,
	})
}

// requireAccess runs the access policy and writes the deny response when
// the user may not open the course. Every lesson-content and progress
// endpoint goes through here first.
func (h *CourseHandler) requireAccess(c *gin.Context, userID, courseID uuid.UUID) (*domain.Course, bool) {
	decision, course, err := h.policy.Evaluate(c, userID, courseID)
	if err != nil {
		log.Printf("access: %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify access"})
		return nil, false
	}
	switch decision {
	case application.AccessGranted:
		return course, true
	case application.AccessDenyNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
	case application.AccessDenySignIn:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in required"})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Course not purchased"})
	}
	return nil, false
}

// GET /api/courses/:id/progress
func (h *CourseHandler) CourseProgress(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	courseID, ok := courseIDFrom(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, userID, courseID); !ok {
		return
	}

	progress, err := h.tracker.CourseProgress(c, userID, courseID)
	if err != nil {
		log.Printf("course progress: %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// GET /api/courses/:id/resume
func (h *CourseHandler) Resume(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	courseID, ok := courseIDFrom(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, userID, courseID); !ok {
		return
	}

	course, err := h.catalog.Course(c, courseID)
	if err != nil {
		log.Printf("resume: loading %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load course"})
		return
	}

	lesson := h.tracker.NextLesson(c, userID, course.Lessons)
	if lesson == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course has no lessons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}
