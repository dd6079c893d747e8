package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/models"
	"github.com/rinkdraft/rinkdraft/internal/sqlutil"
)

const draftColumns = `id, name, host_principal_id, status, settings, scheduled_at,
	started_at, completed_at, current_pick_number, current_pick_start_at,
	current_pick_deadline, total_picks, created_at, updated_at`

// Repository implements draft persistence on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateDraft(ctx context.Context, id uuid.UUID, hostPrincipalID string, req CreateDraftRequest, settings models.DraftSettings) (*models.Draft, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO drafts (id, name, host_principal_id, status, settings, scheduled_at, current_pick_number)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		RETURNING `+draftColumns,
		id, req.Name, hostPrincipalID, models.DraftStatusPre, settingsJSON, req.ScheduledAt)

	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// ListDraftsForPrincipal returns drafts the principal hosts or participates
// in, newest first.
func (r *Repository) ListDraftsForPrincipal(ctx context.Context, principalID string) ([]models.Draft, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT `+prefixedDraftColumns("d")+`
		FROM drafts d
		LEFT JOIN teams t ON t.draft_id = d.id
		WHERE d.host_principal_id = $1 OR t.owner_principal_id = $1
		ORDER BY d.created_at DESC`, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []models.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, *draft)
	}
	return drafts, rows.Err()
}

// StartDraft transitions PRE -> DURING, initializing the cursor and the
// first pick deadline. Conditional on status so two concurrent starts cannot
// both succeed.
func (r *Repository) StartDraft(ctx context.Context, id uuid.UUID, now, deadline time.Time, totalPicks int) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE drafts
		SET status = $2, started_at = $3, current_pick_number = 1,
		    current_pick_start_at = $3, current_pick_deadline = $4,
		    total_picks = $5, updated_at = $3
		WHERE id = $1 AND status = $6
		RETURNING `+draftColumns,
		id, models.DraftStatusDuring, now, deadline, totalPicks, models.DraftStatusPre)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s is not in PRE status: %w", id, core.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to start draft: %w", err)
	}
	return draft, nil
}

// FinishDraft transitions DURING -> POST and clears the deadline. Conditional
// on status like StartDraft.
func (r *Repository) FinishDraft(ctx context.Context, id uuid.UUID, now time.Time) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE drafts
		SET status = $2, completed_at = $3, current_pick_start_at = NULL,
		    current_pick_deadline = NULL, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING `+draftColumns,
		id, models.DraftStatusPost, now, models.DraftStatusDuring)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s is not in DURING status: %w", id, core.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to finish draft: %w", err)
	}
	return draft, nil
}

// CommitTurn is the exclusive commit primitive for a single pick number.
// The cursor advance is compare-and-swapped on (status, current pick number),
// and the Pick insert (when present) rides the same transaction, so the
// ledger and the cursor can never diverge. Exactly one caller wins each pick
// number: the loser gets ErrSchedulingConflict.
func (r *Repository) CommitTurn(ctx context.Context, req CommitTurnRequest) (*models.Draft, error) {
	var draft *models.Draft
	err := sqlutil.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drafts
			SET current_pick_number = current_pick_number + 1,
			    current_pick_start_at = $3, current_pick_deadline = $4, updated_at = $3
			WHERE id = $1 AND status = $5 AND current_pick_number = $2
			RETURNING `+draftColumns,
			req.DraftID, req.ExpectedPickNumber, req.Now, req.NextDeadline, models.DraftStatusDuring)

		var err error
		draft, err = scanDraft(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("pick %d in draft %s already resolved: %w",
					req.ExpectedPickNumber, req.DraftID, core.ErrSchedulingConflict)
			}
			return fmt.Errorf("failed to advance cursor: %w", err)
		}

		if req.Pick != nil {
			p := req.Pick
			_, err = tx.Exec(ctx, `
				INSERT INTO picks (id, draft_id, team_id, player_id, pick_number, round, picked_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID, p.DraftID, p.TeamID, p.PlayerID, p.PickNumber, p.Round, p.PickedAt)
			if err != nil {
				return classifyPickInsertErr(err)
			}
		}

		if draft.CurrentPickNumber > draft.TotalPicks {
			row = tx.QueryRow(ctx, `
				UPDATE drafts
				SET status = $2, completed_at = $3, current_pick_start_at = NULL,
				    current_pick_deadline = NULL, updated_at = $3
				WHERE id = $1
				RETURNING `+draftColumns,
				req.DraftID, models.DraftStatusPost, req.Now)
			draft, err = scanDraft(row)
			if err != nil {
				return fmt.Errorf("failed to complete draft: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// FetchNextDeadline returns the soonest pick deadline across all DURING
// drafts, or nil when no draft is on the clock.
func (r *Repository) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	var nd NextDeadline
	err := r.pool.QueryRow(ctx, `
		SELECT id, current_pick_deadline FROM drafts
		WHERE status = $1 AND current_pick_deadline IS NOT NULL
		ORDER BY current_pick_deadline ASC
		LIMIT 1`, models.DraftStatusDuring).Scan(&nd.DraftID, &nd.Deadline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return &nd, nil
}

// DueDraft identifies a draft whose current pick deadline has elapsed,
// together with the cursor value observed at fetch time.
type DueDraft struct {
	DraftID    uuid.UUID
	PickNumber int
}

// FetchDraftsDueForAdvance returns drafts whose pick clock has run out.
func (r *Repository) FetchDraftsDueForAdvance(ctx context.Context, asOf time.Time, limit int32) ([]DueDraft, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, current_pick_number FROM drafts
		WHERE status = $1 AND current_pick_deadline IS NOT NULL AND current_pick_deadline <= $2
		ORDER BY current_pick_deadline ASC
		LIMIT $3`, models.DraftStatusDuring, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due drafts: %w", err)
	}
	defer rows.Close()

	var due []DueDraft
	for rows.Next() {
		var d DueDraft
		if err := rows.Scan(&d.DraftID, &d.PickNumber); err != nil {
			return nil, fmt.Errorf("failed to scan due draft: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// CountPicks returns the number of committed picks in a draft.
func (r *Repository) CountPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM picks WHERE draft_id = $1`, draftID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count picks: %w", err)
	}
	return count, nil
}

func classifyPickInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "picks_draft_player_uniq":
			return fmt.Errorf("player already picked in this draft: %w", core.ErrPlayerAlreadyPicked)
		case "picks_draft_pick_number_uniq":
			return fmt.Errorf("pick number already committed: %w", core.ErrSchedulingConflict)
		}
	}
	return fmt.Errorf("failed to insert pick: %w", err)
}

func prefixedDraftColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.host_principal_id, ` +
		alias + `.status, ` + alias + `.settings, ` + alias + `.scheduled_at, ` +
		alias + `.started_at, ` + alias + `.completed_at, ` + alias + `.current_pick_number, ` +
		alias + `.current_pick_start_at, ` + alias + `.current_pick_deadline, ` +
		alias + `.total_picks, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var d models.Draft
	var settingsJSON []byte
	err := row.Scan(&d.ID, &d.Name, &d.HostPrincipalID, &d.Status, &settingsJSON,
		&d.ScheduledAt, &d.StartedAt, &d.CompletedAt, &d.CurrentPickNumber,
		&d.CurrentPickStartAt, &d.CurrentPickDeadline, &d.TotalPicks,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settingsJSON, &d.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft settings: %w", err)
	}
	return &d, nil
}
