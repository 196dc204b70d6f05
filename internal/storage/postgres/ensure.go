package postgres

import (
	"github.com/felixgeelhaar/classtrack/internal/auth"
	"github.com/felixgeelhaar/classtrack/internal/course"
	"github.com/felixgeelhaar/classtrack/internal/notification"
)

// Ensure PostgreSQL stores implement the storage interfaces.
var (
	_ auth.Repository         = (*AuthStore)(nil)
	_ course.Repository       = (*CourseStore)(nil)
	_ notification.Repository = (*NotificationStore)(nil)
)
