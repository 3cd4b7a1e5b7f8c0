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

type ProgressHandler struct {
	tracker *application.ProgressTracker
	courses application.CourseStore
	access  *CourseHandler
}

func NewProgressHandler(tracker *application.ProgressTracker, courses application.CourseStore, access *CourseHandler) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, courses: courses, access: access}
}

// lessonWithAccess resolves the lesson and verifies the user may open its
// course before any progress read or write happens.
func (h *ProgressHandler) lessonWithAccess(c *gin.Context) (uuid.UUID, *domain.Lesson, bool) {
	userID, ok := userIDFrom(c)
	if !ok {
		return uuid.Nil, nil, false
	}

	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
		return uuid.Nil, nil, false
	}

	lesson, err := h.courses.GetLessonByID(c, lessonID)
	if err != nil {
		if errors.Is(err, domain.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return uuid.Nil, nil, false
		}
		log.Printf("progress: loading lesson %s: %v", lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load lesson"})
		return uuid.Nil, nil, false
	}

	if _, ok := h.access.requireAccess(c, userID, lesson.CourseID); !ok {
		return uuid.Nil, nil, false
	}
	return userID, lesson, true
}

// GET /api/lessons/:id/progress
func (h *ProgressHandler) GetLessonProgress(c *gin.Context) {
	userID, lesson, ok := h.lessonWithAccess(c)
	if !ok {
		return
	}

	progress, err := h.tracker.LessonProgress(c, userID, lesson.ID)
	if err != nil {
		if errors.Is(err, domain.ErrProgressNotFound) {
			// Never started; an expected outcome, not a failure.
			c.JSON(http.StatusNotFound, gin.H{"error": "No progress found"})
			return
		}
		log.Printf("progress: %s/%s: %v", userID, lesson.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// PUT /api/lessons/:id/progress
func (h *ProgressHandler) UpdateLessonProgress(c *gin.Context) {
	userID, lesson, ok := h.lessonWithAccess(c)
	if !ok {
		return
	}

	// completed is accepted in any of its historical representations
	// (boolean, "true", 1) and normalized before the write.
	var req struct {
		ProgressPercentage int `json:"progress_percentage"`
		Completed          any `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid progress payload"})
		return
	}

	progress, err := h.tracker.UpdateLessonProgress(c, userID, lesson.ID, req.ProgressPercentage, req.Completed)
	if err != nil {
		log.Printf("progress: updating %s/%s: %v", userID, lesson.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": progress})
}
