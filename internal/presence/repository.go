// Package presence tracks which principals are connected to a draft room.
// Presence is advisory: it feeds the lobby UI and never gates a pick.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// Repository implements presence storage against Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert records a heartbeat, inserting the row or refreshing last_seen.
func (r *Repository) Upsert(ctx context.Context, draftID uuid.UUID, principalID string, seenAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO presence (draft_id, principal_id, last_seen)
		VALUES ($1, $2, $3)
		ON CONFLICT (draft_id, principal_id) DO UPDATE SET last_seen = EXCLUDED.last_seen`,
		draftID, principalID, seenAt)
	if err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

// Delete removes a presence row. Deleting an absent row is not an error.
func (r *Repository) Delete(ctx context.Context, draftID uuid.UUID, principalID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM presence WHERE draft_id = $1 AND principal_id = $2`,
		draftID, principalID)
	if err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}
	return nil
}

// ListSeenSince returns entries whose last_seen is strictly after the
// cutoff. An entry seen exactly the online threshold ago is offline.
func (r *Repository) ListSeenSince(ctx context.Context, draftID uuid.UUID, cutoff time.Time) ([]models.PresenceEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT draft_id, principal_id, last_seen
		FROM presence
		WHERE draft_id = $1 AND last_seen > $2
		ORDER BY principal_id ASC`, draftID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}
	defer rows.Close()

	var entries []models.PresenceEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan presence entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// DeleteSeenBefore removes rows whose last_seen predates the cutoff and
// returns how many were removed.
func (r *Repository) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM presence WHERE last_seen < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep presence: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (*models.PresenceEntry, error) {
	var e models.PresenceEntry
	err := row.Scan(&e.DraftID, &e.PrincipalID, &e.LastSeen)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
