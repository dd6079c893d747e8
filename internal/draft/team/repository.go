package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

const teamColumns = `id, draft_id, owner_principal_id, name, draft_order_number, created_at`

// Repository implements team persistence on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateTeam inserts a team with an explicit draft order number. Used for
// the host team at draft creation.
func (r *Repository) CreateTeam(ctx context.Context, team models.Team) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (id, draft_id, owner_principal_id, name, draft_order_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+teamColumns,
		team.ID, team.DraftID, team.OwnerPrincipalID, team.Name, team.DraftOrderNumber)

	created, err := scanTeam(row)
	if err != nil {
		return nil, classifyTeamInsertErr(err)
	}
	return created, nil
}

// AppendTeam inserts a team at the next contiguous draft order number. The
// order is assigned inside the insert so concurrent joins cannot produce
// gaps or duplicates; the unique index backs it up.
func (r *Repository) AppendTeam(ctx context.Context, id uuid.UUID, draftID uuid.UUID, ownerPrincipalID, name string) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (id, draft_id, owner_principal_id, name, draft_order_number)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(draft_order_number), 0) + 1 FROM teams WHERE draft_id = $2))
		RETURNING `+teamColumns,
		id, draftID, ownerPrincipalID, name)

	created, err := scanTeam(row)
	if err != nil {
		return nil, classifyTeamInsertErr(err)
	}
	return created, nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetTeamByDraftAndOwner returns the principal's team in a draft, if any.
func (r *Repository) GetTeamByDraftAndOwner(ctx context.Context, draftID uuid.UUID, ownerPrincipalID string) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+teamColumns+` FROM teams
		WHERE draft_id = $1 AND owner_principal_id = $2`, draftID, ownerPrincipalID)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no team for principal in draft %s: %w", draftID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team by owner: %w", err)
	}
	return team, nil
}

// ListTeamsByDraft returns the draft's teams ordered by draft order number
// ascending, the order the turn calculator indexes into.
func (r *Repository) ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+teamColumns+` FROM teams
		WHERE draft_id = $1
		ORDER BY draft_order_number ASC`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// RenameTeam updates the team's display name, the only mutable team field.
func (r *Repository) RenameTeam(ctx context.Context, id uuid.UUID, name string) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE teams SET name = $2 WHERE id = $1
		RETURNING `+teamColumns, id, name)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to rename team: %w", err)
	}
	return team, nil
}

// ReorderTeams rewrites draft order numbers to match the given team id
// sequence (position i gets order i+1). Runs in one transaction; the unique
// index on (draft_id, draft_order_number) is deferred so the swap is legal.
func (r *Repository) ReorderTeams(ctx context.Context, draftID uuid.UUID, orderedTeamIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, teamID := range orderedTeamIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE teams SET draft_order_number = $3
			WHERE id = $1 AND draft_id = $2`, teamID, draftID, i+1)
		if err != nil {
			return fmt.Errorf("failed to reorder team %s: %w", teamID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("team %s not in draft %s: %w", teamID, draftID, core.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

func classifyTeamInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "teams_draft_owner_uniq":
			return fmt.Errorf("principal already has a team in this draft: %w", ErrAlreadyJoined)
		case "teams_draft_order_uniq":
			return fmt.Errorf("draft order collision: %w", core.ErrSchedulingConflict)
		}
	}
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("draft does not exist: %w", core.ErrNotFound)
	}
	return fmt.Errorf("failed to insert team: %w", err)
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.DraftID, &t.OwnerPrincipalID, &t.Name, &t.DraftOrderNumber, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
