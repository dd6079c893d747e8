package pick

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

// Repository implements read access to the pick ledger. The only write path
// for picks is the draft repository's CommitTurn, which inserts the pick
// and advances the cursor in one transaction.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, draft_id, team_id, player_id, pick_number, round, picked_at
		FROM picks WHERE id = $1`, id)
	pick, err := scanPick(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pick %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return pick, nil
}

// ListPicksByDraft returns all committed picks in pick number order.
func (r *Repository) ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, draft_id, team_id, player_id, pick_number, round, picked_at
		FROM picks WHERE draft_id = $1
		ORDER BY pick_number ASC`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()
	return collectPicks(rows)
}

// ListPicksByTeam returns a team's picks in pick number order (its roster).
func (r *Repository) ListPicksByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Pick, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, draft_id, team_id, player_id, pick_number, round, picked_at
		FROM picks WHERE team_id = $1
		ORDER BY pick_number ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks by team: %w", err)
	}
	defer rows.Close()
	return collectPicks(rows)
}

// ListRecentPicks returns the latest picks with team and player names,
// newest first.
func (r *Repository) ListRecentPicks(ctx context.Context, draftID uuid.UUID, limit int32) ([]PickDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.draft_id, p.team_id, p.player_id, p.pick_number, p.round, p.picked_at,
		       t.name, pl.name
		FROM picks p
		JOIN teams t ON t.id = p.team_id
		JOIN players pl ON pl.id = p.player_id
		WHERE p.draft_id = $1
		ORDER BY p.pick_number DESC
		LIMIT $2`, draftID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent picks: %w", err)
	}
	defer rows.Close()

	var details []PickDetail
	for rows.Next() {
		var d PickDetail
		err := rows.Scan(&d.ID, &d.DraftID, &d.TeamID, &d.PlayerID, &d.PickNumber,
			&d.Round, &d.PickedAt, &d.TeamName, &d.PlayerName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// IsPlayerPicked reports whether the player already appears among the
// draft's committed picks.
func (r *Repository) IsPlayerPicked(ctx context.Context, draftID, playerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM picks WHERE draft_id = $1 AND player_id = $2)`,
		draftID, playerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check player picked: %w", err)
	}
	return exists, nil
}

func collectPicks(rows pgx.Rows) ([]models.Pick, error) {
	var picks []models.Pick
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, *pick)
	}
	return picks, rows.Err()
}

func scanPick(row pgx.Row) (*models.Pick, error) {
	var p models.Pick
	err := row.Scan(&p.ID, &p.DraftID, &p.TeamID, &p.PlayerID, &p.PickNumber, &p.Round, &p.PickedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
