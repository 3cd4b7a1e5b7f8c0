package domain

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrProgressNotFound  = errors.New("progress not found")
	ErrAlreadyPurchased  = errors.New("course already purchased")
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
