package handlers

import (
	"net/http"

	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/classtrack/internal/course"
	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// CourseHandler handles course endpoints
type CourseHandler struct {
	service *course.Service
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(service *course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// CourseResponse represents a course in API responses
type CourseResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Instructor  string `json:"instructor"`
	ColorCode   string `json:"color_code"`
	ScheduleDay string `json:"schedule_day"`
	TimeStart   string `json:"time_start"`
	TimeEnd     string `json:"time_end"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CourseRequest is the request body for creating or updating a course
type CourseRequest struct {
	CourseCode  string `json:"courseCode"`
	CourseTitle string `json:"courseTitle"`
	Instructor  string `json:"instructor"`
	ColorCode   string `json:"colorCode"`
	ScheduleDay string `json:"scheduleDay"`
	TimeStart   string `json:"timeStart"`
	TimeEnd     string `json:"timeEnd"`
}

func (req CourseRequest) input() course.Input {
	return course.Input{
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		Instructor:  req.Instructor,
		ColorCode:   req.ColorCode,
		ScheduleDay: req.ScheduleDay,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
	}
}

func toCourseResponse(c *domain.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		CourseCode:  c.CourseCode,
		CourseTitle: c.CourseTitle,
		Instructor:  c.Instructor,
		ColorCode:   c.ColorCode,
		ScheduleDay: c.ScheduleDay,
		TimeStart:   c.TimeStart,
		TimeEnd:     c.TimeEnd,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func toCourseList(courses []*domain.Course) []CourseResponse {
	response := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		response = append(response, toCourseResponse(c))
	}
	return response
}

// List returns all courses of the current user
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	courses, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to load courses")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"courses": toCourseList(courses),
	})
}

// Count returns how many courses the current user has
func (h *CourseHandler) Count(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	count, err := h.service.Count(r.Context(), id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to get course count")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

// TodaySchedule returns the courses held on the current weekday
func (h *CourseHandler) TodaySchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	courses, err := h.service.TodaySchedule(r.Context(), id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to load schedule")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"schedule": toCourseList(courses),
	})
}

// Get returns a single course
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	courseID, ok := queryID(w, r, "course")
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), courseID, id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to load course")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"course":  toCourseResponse(c),
	})
}

// Create adds a course for the current user
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), id.UserID, req.input())
	if err != nil {
		respond.DomainError(w, r, err, "Failed to create course")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Course created successfully",
		"course":  toCourseResponse(c),
	})
}

// Update replaces the editable fields of a course
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	courseID, ok := queryID(w, r, "course")
	if !ok {
		return
	}

	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), courseID, id.UserID, req.input())
	if err != nil {
		respond.DomainError(w, r, err, "Failed to update course")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Course updated successfully",
		"course":  toCourseResponse(c),
	})
}

// Delete removes a course
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	courseID, ok := queryID(w, r, "course")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), courseID, id.UserID); err != nil {
		respond.DomainError(w, r, err, "Failed to delete course")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Course deleted successfully",
	})
}
