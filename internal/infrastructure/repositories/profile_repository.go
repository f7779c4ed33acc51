package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/flinkapp/flink/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const profileSelect = `
	SELECT u.id AS user_id, u.name, u.profile_url, u.created_at,
	       p.handle, p.bio, p.location, p.website, p.private, p.social_links
	FROM users u
	JOIN profiles p ON p.user_id = u.id`

// ProfileRepository reads users joined with their profile details.
type ProfileRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewProfileRepository(database *db.Database, logger *logrus.Logger) *ProfileRepository {
	return &ProfileRepository{db: database, logger: logger}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.DB.GetContext(ctx, &p, profileSelect+` WHERE u.id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("db: profile not found by user ID")
			}
			return nil, profile.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("db: failed to get profile by user ID")
		}
		return nil, fmt.Errorf("failed to get profile by user ID: %w", err)
	}
	return &p, nil
}

// GetByHandle matches handles case-insensitively.
func (r *ProfileRepository) GetByHandle(ctx context.Context, handle string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.DB.GetContext(ctx, &p, profileSelect+` WHERE LOWER(p.handle) = LOWER($1)`, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"handle": handle}).Debug("db: profile not found by handle")
			}
			return nil, profile.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"handle": handle}).WithError(err).Error("db: failed to get profile by handle")
		}
		return nil, fmt.Errorf("failed to get profile by handle: %w", err)
	}
	return &p, nil
}

// Search is a plain substring filter on handle and name; no ranking.
func (r *ProfileRepository) Search(ctx context.Context, query string, limit int) ([]*profile.Profile, error) {
	profiles := []*profile.Profile{}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	q := profileSelect + `
	WHERE p.handle ILIKE $1 OR u.name ILIKE $1
	ORDER BY p.handle
	LIMIT $2`
	if err := r.db.DB.SelectContext(ctx, &profiles, q, pattern, limit); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to search profiles")
		}
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)
