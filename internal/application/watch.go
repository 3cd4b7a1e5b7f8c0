package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultLessonMinutes stands in when a lesson has no recorded duration.
	defaultLessonMinutes = 15
	// watchCompleteThreshold marks an embed-hosted lesson completed once this
	// much of the nominal duration has elapsed.
	watchCompleteThreshold = 80.0
)

// EstimateWatchPercent converts elapsed wall-clock time into a progress
// percentage against the lesson's nominal duration. Embed-hosted players
// expose no playback events, so elapsed time is the only signal available.
// This is a heuristic, not a true watch-progress measure.
func EstimateWatchPercent(elapsed time.Duration, durationMinutes int) float64 {
	if durationMinutes <= 0 {
		durationMinutes = defaultLessonMinutes
	}
	percent := elapsed.Minutes() / float64(durationMinutes) * 100
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}

// WatchTracker periodically records estimated progress for a lesson whose
// video is hosted in an embed. It stops once the completion threshold is
// crossed or the context is cancelled; it never runs past page teardown.
type WatchTracker struct {
	tracker  *ProgressTracker
	interval time.Duration
}

func NewWatchTracker(tracker *ProgressTracker, interval time.Duration) *WatchTracker {
	return &WatchTracker{tracker: tracker, interval: interval}
}

// Run blocks until completion or cancellation. Write failures are logged
// and the next tick retries; estimation must never take the player down.
func (w *WatchTracker) Run(ctx context.Context, userID, lessonID uuid.UUID, durationMinutes int) {
	start := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			percent := EstimateWatchPercent(time.Since(start), durationMinutes)
			if percent >= watchCompleteThreshold {
				if _, err := w.tracker.UpdateLessonProgress(ctx, userID, lessonID, int(percent), true); err != nil {
					log.Printf("watch tracker: completing lesson %s: %v", lessonID, err)
					continue
				}
				return
			}
			if percent > 10 {
				if _, err := w.tracker.UpdateLessonProgress(ctx, userID, lessonID, int(percent), false); err != nil {
					log.Printf("watch tracker: updating lesson %s: %v", lessonID, err)
				}
			}
		}
	}
}
