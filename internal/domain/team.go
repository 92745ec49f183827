package domain

import "strings"

// helpDeskMarker identifies the triage team by convention: any team whose
// identifier contains this token (any case) is the help desk.
const helpDeskMarker = "HELP_DESK"

// Team is a support group tickets get routed to. The ID is a short string
// code such as "NETWORK" or "HELP_DESK".
type Team struct {
	ID          string
	Name        string
	Description string
	Email       string
}

// IsHelpDesk reports whether this team is the triage team.
func (t Team) IsHelpDesk() bool {
	return IsHelpDeskTeamID(t.ID)
}

// IsHelpDeskTeamID applies the help-desk naming convention to a raw team id.
func IsHelpDeskTeamID(teamID string) bool {
	return strings.Contains(strings.ToUpper(teamID), helpDeskMarker)
}

// TeamMembership links a user to a team. A user holds at most one membership.
type TeamMembership struct {
	ID     int
	TeamID string
	UserID int
}
