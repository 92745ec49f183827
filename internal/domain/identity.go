package domain

// Role is derived from team membership at login and fixed for the session.
type Role string

const (
	RoleRequester Role = "Requester"
	RoleSupport   Role = "Support"
	RoleHelpDesk  Role = "HelpDesk"
)

// DeriveRole maps a user's team membership to a role. No membership makes a
// requester; membership in the help-desk team makes triage staff; any other
// membership makes a support agent of that team.
func DeriveRole(membership *TeamMembership) (Role, *string) {
	if membership == nil {
		return RoleRequester, nil
	}
	if IsHelpDeskTeamID(membership.TeamID) {
		return RoleHelpDesk, nil
	}
	teamID := membership.TeamID
	return RoleSupport, &teamID
}

// Identity is the resolved caller passed explicitly into every service
// operation. It is established at login and immutable for the session.
type Identity struct {
	UserID int     `json:"user_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	TeamID *string `json:"team_id,omitempty"`
}
