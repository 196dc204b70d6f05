// Package course manages the courses a student tracks.
package course

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// Repository defines the interface for course data access. Every method is
// scoped by the owning user.
type Repository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Course, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Course, error)
	ListByDay(ctx context.Context, userID int64, day string) ([]*domain.Course, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id, userID int64) error
}

// Service handles course operations
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new course service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the time source used for timestamps and today's schedule
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Input holds the editable fields of a course
type Input struct {
	CourseCode  string
	CourseTitle string
	Instructor  string
	ColorCode   string
	ScheduleDay string
	TimeStart   string
	TimeEnd     string
}

func (in Input) normalize() (Input, error) {
	in.CourseCode = strings.TrimSpace(in.CourseCode)
	in.CourseTitle = strings.TrimSpace(in.CourseTitle)
	in.Instructor = strings.TrimSpace(in.Instructor)
	in.ColorCode = strings.TrimSpace(in.ColorCode)
	in.ScheduleDay = strings.TrimSpace(in.ScheduleDay)
	in.TimeStart = strings.TrimSpace(in.TimeStart)
	in.TimeEnd = strings.TrimSpace(in.TimeEnd)

	if in.CourseCode == "" {
		return in, domain.Validation("Field courseCode is required")
	}
	if in.CourseTitle == "" {
		return in, domain.Validation("Field courseTitle is required")
	}
	if in.ScheduleDay != "" {
		day, ok := parseWeekday(in.ScheduleDay)
		if !ok {
			return in, domain.Validation("Invalid schedule day")
		}
		in.ScheduleDay = day
	}
	return in, nil
}

func parseWeekday(s string) (string, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d.String(), true
		}
	}
	return "", false
}

// Create adds a course for userID
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*domain.Course, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	now := s.now()
	course := &domain.Course{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(course, in)

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, wrap(err, "Failed to create course")
	}
	return course, nil
}

// Get retrieves one of the user's courses
func (s *Service) Get(ctx context.Context, id, userID int64) (*domain.Course, error) {
	course, err := s.repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, wrap(err, "Failed to load course")
	}
	return course, nil
}

// List returns all of the user's courses ordered by course code
func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Course, error) {
	courses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("Failed to load courses", err)
	}
	return courses, nil
}

// Count returns how many courses the user has
func (s *Service) Count(ctx context.Context, userID int64) (int, error) {
	n, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return 0, domain.Internal("Failed to get course count", err)
	}
	return n, nil
}

// TodaySchedule returns the courses held on the current weekday ordered by start time
func (s *Service) TodaySchedule(ctx context.Context, userID int64) ([]*domain.Course, error) {
	courses, err := s.repo.ListByDay(ctx, userID, s.now().Weekday().String())
	if err != nil {
		return nil, domain.Internal("Failed to load schedule", err)
	}
	return courses, nil
}

// Update replaces the editable fields of one of the user's courses
func (s *Service) Update(ctx context.Context, id, userID int64, in Input) (*domain.Course, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	course, err := s.repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, wrap(err, "Failed to update course")
	}

	apply(course, in)
	course.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, wrap(err, "Failed to update course")
	}
	return course, nil
}

// Delete removes one of the user's courses
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return wrap(err, "Failed to delete course")
	}
	return nil
}

func apply(course *domain.Course, in Input) {
	course.CourseCode = in.CourseCode
	course.CourseTitle = in.CourseTitle
	course.Instructor = in.Instructor
	course.ColorCode = in.ColorCode
	course.ScheduleDay = in.ScheduleDay
	course.TimeStart = in.TimeStart
	course.TimeEnd = in.TimeEnd
}

// wrap passes classified store errors through and hides everything else
// behind message
func wrap(err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrCourseNotFound
	case errors.Is(err, domain.ErrConflict):
		return domain.ErrCourseCodeExists
	}
	return domain.Internal(message, err)
}
