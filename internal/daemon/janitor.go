package daemon

import (
	"context"
	"log/slog"
	"time"
)

// runEvery calls fn once per interval until ctx is done
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// sweep removes expired session tokens and in-memory interactive sessions.
// It returns the number of tokens removed.
func (s *Server) sweep(ctx context.Context) int64 {
	removed, err := s.app.Auth.CleanupExpiredSessions(ctx)
	if err != nil {
		slog.Error("session cleanup failed", "error", err)
	} else if removed > 0 {
		s.app.Metrics.SessionsCleaned.Add(float64(removed))
		slog.Info("expired sessions removed", "count", removed)
	}

	if s.memSessions != nil {
		if n := s.memSessions.Sweep(time.Now()); n > 0 {
			slog.Debug("expired interactive sessions removed", "count", n)
		}
	}
	return removed
}
