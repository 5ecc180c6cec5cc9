package session

// Persisted entry names. The sqlite driver stores them as rows, the redis
// driver as "<prefix>:<key>".
const (
	KeyToken       = "user_token"
	KeyDisplayName = "user_full_name"
	KeyRole        = "user_role"
)

// Keys lists every persisted entry, in the order Clear removes them.
var Keys = []string{KeyToken, KeyDisplayName, KeyRole}

// Role is the user's role as reported by the service at login.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// ParseRole maps a stored role string to a Role. Matching is exact; anything
// unrecognised, including an absent role, is treated as a student.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(s)
	default:
		return RoleStudent
	}
}

// Session is the signed-in user as reconstructed from a Store.
type Session struct {
	Token       string
	DisplayName string

	// RawRole is the role string exactly as stored, or "" when none was saved.
	RawRole string
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Role is the effective role, defaulting to RoleStudent.
func (s Session) Role() Role {
	return ParseRole(s.RawRole)
}

// Load assembles the current Session from store.
func Load(store Store) Session {
	var s Session
	s.Token, _ = store.Token()
	s.DisplayName, _ = store.DisplayName()
	s.RawRole, _ = store.Role()
	return s
}

// Persist writes a freshly issued session. The token is always written;
// displayName and role are each written only when non-empty, so a login
// response without them leaves earlier values in place.
func Persist(store Store, token, displayName, role string) {
	store.SaveToken(token)
	if displayName != "" {
		store.SaveDisplayName(displayName)
	}
	if role != "" {
		store.SaveRole(role)
	}
}
