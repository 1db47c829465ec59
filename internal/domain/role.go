package domain

// Role names carried in the user record and in JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Roles lists every assignable role.
var Roles = []string{RoleAdmin, RoleUser}

// CanModify reports whether actor may change or delete a resource owned by ownerID.
// Admins may modify anything.
func CanModify(actorID, actorRole, ownerID string) bool {
	return actorRole == RoleAdmin || actorID == ownerID
}
