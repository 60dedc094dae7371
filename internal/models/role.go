package models

// Role is the set of account roles. There are exactly two: team leaders
// write daily logs on site, managers review and approve them.
type Role string

const (
	RoleTeamLeader Role = "team_leader"
	RoleManager    Role = "manager"
)

// ParseRole validates a role string coming from a request or token.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTeamLeader, RoleManager:
		return Role(s), true
	}
	return "", false
}

// Actor identifies who is performing an operation. Derived from the JWT
// claims by the auth middleware, never from request payloads.
type Actor struct {
	ID   int  `json:"id"`
	Role Role `json:"role"`
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}
