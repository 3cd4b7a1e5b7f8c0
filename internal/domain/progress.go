package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NormalizeCompleted coerces a completion flag of unknown representation
// into a canonical boolean. Earlier write paths stored the flag as boolean,
// string or number, so the store is never trusted to return a canonical
// type. Truthy forms: true, "true", "1", numeric 1. Everything else,
// including nil, is false. Absence of a progress row is a separate case and
// is handled by callers, not here.
func NormalizeCompleted(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "1"
	case []byte:
		s := string(val)
		return s == "true" || s == "1"
	case int:
		return val == 1
	case int64:
		return val == 1
	case float64:
		return val == 1
	default:
		return false
	}
}

// CompletedFlag is a bool that normalizes on every read and write so the
// heterogeneous historical representations never leak past the scan
// boundary. New writes always store a real boolean; the normalizer stays in
// the read path permanently because old rows may never be backfilled.
type CompletedFlag bool

func (f *CompletedFlag) Scan(value any) error {
	*f = CompletedFlag(NormalizeCompleted(value))
	return nil
}

func (f CompletedFlag) Value() (driver.Value, error) {
	return bool(f), nil
}

func (f *CompletedFlag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = CompletedFlag(NormalizeCompleted(raw))
	return nil
}

func (f CompletedFlag) Bool() bool { return bool(f) }

type LessonProgress struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID     `gorm:"type:uuid;uniqueIndex:uniq_user_lesson;not null" json:"user_id"`
	LessonID           uuid.UUID     `gorm:"type:uuid;uniqueIndex:uniq_user_lesson;not null" json:"lesson_id"`
	Completed          CompletedFlag `gorm:"default:false" json:"completed"`
	ProgressPercentage int           `gorm:"default:0" json:"progress_percentage"`
	LastWatchedAt      time.Time     `json:"last_watched_at"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// CourseProgress is derived on demand from LessonProgress rows scoped to one
// course. It is never cached across requests; staleness here shows up
// directly in the UI.
type CourseProgress struct {
	Completed  int              `json:"completed"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Lessons    []LessonProgress `json:"lessons"`
}
