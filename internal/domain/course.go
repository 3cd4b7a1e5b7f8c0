package domain

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	BundleName  Bundle    `gorm:"index;not null" json:"bundle_name"`
	LessonCount int       `gorm:"not null" json:"lesson_count"`
	// Price is in whole currency units; 0 marks the free tier.
	Price         float64 `gorm:"not null" json:"price"`
	StripePriceID *string `json:"stripe_price_id,omitempty"`

	Lessons []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"lessons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFree reports whether the course is accessible without a purchase.
// The catalog marks free courses both by zero price and the "free" bundle
// tag, and historical rows are not guaranteed to have both set.
func (c *Course) IsFree() bool {
	return c.Price == 0 || c.BundleName == BundleFree
}

type VideoProvider string

const (
	VideoProviderIframe  VideoProvider = "iframe"
	VideoProviderVimeo   VideoProvider = "vimeo"
	VideoProviderYouTube VideoProvider = "youtube"
	VideoProviderDirect  VideoProvider = "direct"
)

type Lesson struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID     `gorm:"type:uuid;index;uniqueIndex:uniq_course_lesson_order;not null" json:"course_id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description"`
	VideoURL    string        `gorm:"not null" json:"video_url"`
	VideoProv   VideoProvider `gorm:"column:video_provider;default:'vimeo'" json:"video_provider"`
	// Duration is the nominal length in minutes; 0 means unknown.
	Duration    int `json:"duration"`
	LessonOrder int `gorm:"uniqueIndex:uniq_course_lesson_order;not null" json:"lesson_order"`

	CreatedAt time.Time `json:"created_at"`
}
