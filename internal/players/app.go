package players

import (
	"context"

	"github.com/google/uuid"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// PlayerRepository defines what the app layer needs from the player
// repository.
type PlayerRepository interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListAvailableForDraft(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
}

// App serves the player catalog. The catalog is global; availability is
// per draft.
type App struct {
	repo PlayerRepository
}

func NewApp(repo PlayerRepository) *App {
	return &App{repo: repo}
}

func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return a.repo.GetPlayer(ctx, id)
}

func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListPlayers(ctx)
}

// ListAvailableForDraft returns the catalog minus the draft's committed
// picks.
func (a *App) ListAvailableForDraft(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	return a.repo.ListAvailableForDraft(ctx, draftID)
}
