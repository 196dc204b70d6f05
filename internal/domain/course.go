package domain

import "time"

// Course is a class a student is enrolled in
type Course struct {
	ID          int64
	UserID      int64
	CourseCode  string
	CourseTitle string
	Instructor  string
	ColorCode   string
	ScheduleDay string
	TimeStart   string
	TimeEnd     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
