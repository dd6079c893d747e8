package draft

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

func TestCanStartDraft(t *testing.T) {
	d := &models.Draft{ID: uuid.New(), HostPrincipalID: "host-1"}

	if !CanStartDraft("host-1", d) {
		t.Fatal("expected host to be allowed to start")
	}
	if CanStartDraft("guest-2", d) {
		t.Fatal("expected non-host to be denied")
	}
	if CanStartDraft("", d) {
		t.Fatal("expected empty principal to be denied")
	}
}

func TestCanSubmitPick(t *testing.T) {
	team := &models.Team{ID: uuid.New(), OwnerPrincipalID: "owner-1"}

	if !CanSubmitPick("owner-1", team) {
		t.Fatal("expected team owner to be allowed to pick")
	}
	if CanSubmitPick("owner-2", team) {
		t.Fatal("expected non-owner to be denied")
	}
	if CanSubmitPick("", team) {
		t.Fatal("expected empty principal to be denied")
	}
}
