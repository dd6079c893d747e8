// Package players serves the player catalog and per-draft availability.
package players

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// Repository implements player catalog access against Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, position, avatar_url, created_at
		FROM players WHERE id = $1`, id)
	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("player %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ListPlayers returns the whole catalog in name order.
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, position, avatar_url, created_at
		FROM players ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// ListAvailableForDraft returns players not yet picked in the draft.
// Computed against the ledger on every call rather than kept as a
// materialized set, so a committed pick is excluded immediately.
func (r *Repository) ListAvailableForDraft(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pl.id, pl.name, pl.position, pl.avatar_url, pl.created_at
		FROM players pl
		LEFT JOIN picks p ON p.player_id = pl.id AND p.draft_id = $1
		WHERE p.id IS NULL
		ORDER BY pl.name ASC`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// UpsertPlayer inserts a catalog entry, leaving an existing row with the
// same name untouched. Reports whether a row was inserted. Used by the
// seeder.
func (r *Repository) UpsertPlayer(ctx context.Context, player models.Player) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO players (id, name, position, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`,
		player.ID, player.Name, player.Position, player.AvatarURL)
	if err != nil {
		return false, fmt.Errorf("failed to upsert player %q: %w", player.Name, err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectPlayers(rows pgx.Rows) ([]models.Player, error) {
	var players []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.Position, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
