package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/jackc/pgx/v5"
)

const courseColumns = `id, user_id, course_code, course_title, instructor, color_code,
	schedule_day, time_start, time_end, created_at, updated_at`

// CourseStore implements course persistence using PostgreSQL
type CourseStore struct {
	db *DB
}

// NewCourseStore creates a new PostgreSQL course store
func NewCourseStore(db *DB) *CourseStore {
	return &CourseStore{db: db}
}

func (s *CourseStore) Create(ctx context.Context, c *domain.Course) error {
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO courses (user_id, course_code, course_title, instructor, color_code,
			schedule_day, time_start, time_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.UserID, c.CourseCode, c.CourseTitle, c.Instructor, c.ColorCode,
		c.ScheduleDay, c.TimeStart, c.TimeEnd, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert course: %w", translate(err, domain.ErrCourseCodeExists))
	}
	return nil
}

func (s *CourseStore) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Course, error) {
	row := s.db.Pool.QueryRow(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE id = $1 AND user_id = $2", id, userID)
	c, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (s *CourseStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Course, error) {
	return s.list(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE user_id = $1
		ORDER BY course_code`, userID)
}

func (s *CourseStore) ListByDay(ctx context.Context, userID int64, day string) ([]*domain.Course, error) {
	return s.list(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE user_id = $1 AND schedule_day = $2
		ORDER BY time_start`, userID, day)
}

func (s *CourseStore) list(ctx context.Context, query string, args ...any) ([]*domain.Course, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
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

func (s *CourseStore) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := s.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM courses WHERE user_id = $1", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (s *CourseStore) Update(ctx context.Context, c *domain.Course) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE courses SET course_code = $1, course_title = $2, instructor = $3, color_code = $4,
			schedule_day = $5, time_start = $6, time_end = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10`,
		c.CourseCode, c.CourseTitle, c.Instructor, c.ColorCode,
		c.ScheduleDay, c.TimeStart, c.TimeEnd, c.UpdatedAt,
		c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", translate(err, domain.ErrCourseCodeExists))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (s *CourseStore) Delete(ctx context.Context, id, userID int64) error {
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM courses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
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
