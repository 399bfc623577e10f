package store

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
)

// EnsureUser creates the user row on first contact or refreshes display fields.
func (s *Store) EnsureUser(ctx context.Context, u User) error {
	if u.Lang == "" {
		u.Lang = "en"
	}
	const q = `
		INSERT INTO users (user_id, username, first_name, lang)
		VALUES (:user_id, :username, :first_name, :lang)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name`
	if _, err := s.db.NamedExecContext(ctx, q, u); err != nil {
		logger.Error(ctx, "service.users", "user.ensure.failed",
			slog.Int64("user_id", u.UserID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("ensure user %d: %w", u.UserID, err)
	}
	return nil
}

// UserByID fetches a single user row.
func (s *Store) UserByID(ctx context.Context, userID int64) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT user_id, username, first_name, lang FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if isNoRows(err) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user %d: %w", userID, err)
	}
	return u, nil
}
