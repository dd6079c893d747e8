package draft

import "github.com/rinkdraft/rinkdraft/internal/models"

// Authorization policy. Each operation gets one policy function taking
// (principal, resource) so the rule lives in one place instead of ad hoc id
// comparisons at every call site.

// CanStartDraft reports whether the principal may start the draft.
func CanStartDraft(principalID string, d *models.Draft) bool {
	return principalID != "" && principalID == d.HostPrincipalID
}

// CanFinishDraft reports whether the principal may finish the draft early.
func CanFinishDraft(principalID string, d *models.Draft) bool {
	return principalID != "" && principalID == d.HostPrincipalID
}

// CanRandomizeOrder reports whether the principal may reshuffle the draft
// order.
func CanRandomizeOrder(principalID string, d *models.Draft) bool {
	return principalID != "" && principalID == d.HostPrincipalID
}

// CanSubmitPick reports whether the principal controls the team submitting
// a pick.
func CanSubmitPick(principalID string, t *models.Team) bool {
	return principalID != "" && principalID == t.OwnerPrincipalID
}

// CanRenameTeam reports whether the principal may rename the team.
func CanRenameTeam(principalID string, t *models.Team) bool {
	return principalID != "" && principalID == t.OwnerPrincipalID
}
