// Package auth validates bearer tokens minted by an external identity
// provider and exposes the caller's identity as a Principal. The runtime is
// a JWT consumer only: it never mints its own tokens.
package auth

// UserType is the closed set of caller kinds the rest of the module
// authorizes against, per the spec's Principal data model.
type UserType string

const (
	JobSeeker UserType = "job_seeker"
	Partner   UserType = "partner"
	Admin     UserType = "admin"
	Public    UserType = "public"
)

// Principal is the authenticated caller for one request, produced by the
// JWTValidator and threaded into the transport handlers. Immutable during a
// turn.
type Principal struct {
	UserID      string
	Email       string
	UserType    UserType
	Permissions map[string]bool
}

// HasPermission reports whether p carries the named permission.
func (p Principal) HasPermission(name string) bool {
	return p.Permissions[name]
}
