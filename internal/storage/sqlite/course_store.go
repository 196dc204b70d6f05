package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

const courseColumns = `id, user_id, course_code, course_title, instructor, color_code,
	schedule_day, time_start, time_end, created_at, updated_at`

// CourseStore implements course persistence backed by SQLite.
type CourseStore struct {
	db *DB
}

// NewCourseStore creates a new SQLite-backed course store.
func NewCourseStore(db *DB) *CourseStore {
	return &CourseStore{db: db}
}

// Create inserts a course; a duplicate code for the same user is a conflict.
func (s *CourseStore) Create(ctx context.Context, c *domain.Course) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (user_id, course_code, course_title, instructor, color_code,
			schedule_day, time_start, time_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.CourseCode, c.CourseTitle, c.Instructor, c.ColorCode,
		c.ScheduleDay, c.TimeStart, c.TimeEnd, utc(c.CreatedAt), utc(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert course: %w", translate(err, domain.ErrCourseCodeExists))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("course id: %w", err)
	}
	return nil
}

// GetByIDAndUser retrieves a course owned by userID.
func (s *CourseStore) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE id = ? AND user_id = ?", id, userID)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// ListByUser returns the user's courses ordered by course code.
func (s *CourseStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Course, error) {
	return s.list(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE user_id = ?
		ORDER BY course_code`, userID)
}

// ListByDay returns the user's courses held on day ordered by start time.
func (s *CourseStore) ListByDay(ctx context.Context, userID int64, day string) ([]*domain.Course, error) {
	return s.list(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE user_id = ? AND schedule_day = ?
		ORDER BY time_start`, userID, day)
}

func (s *CourseStore) list(ctx context.Context, query string, args ...any) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []*domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// CountByUser returns how many courses the user has.
func (s *CourseStore) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

// Update replaces the editable fields of a course owned by c.UserID.
func (s *CourseStore) Update(ctx context.Context, c *domain.Course) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE courses SET course_code = ?, course_title = ?, instructor = ?, color_code = ?,
			schedule_day = ?, time_start = ?, time_end = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		c.CourseCode, c.CourseTitle, c.Instructor, c.ColorCode,
		c.ScheduleDay, c.TimeStart, c.TimeEnd, utc(c.UpdatedAt),
		c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", translate(err, domain.ErrCourseCodeExists))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course owned by userID.
func (s *CourseStore) Delete(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM courses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(
		&c.ID, &c.UserID, &c.CourseCode, &c.CourseTitle, &c.Instructor, &c.ColorCode,
		&c.ScheduleDay, &c.TimeStart, &c.TimeEnd, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
