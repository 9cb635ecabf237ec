package models

import "fmt"

// DbRole is the privilege level a user holds on one managed database.
// Roles are totally ordered: OWNER > ADMIN > READWRITE > READONLY.
type DbRole string

// Database membership roles.
const (
	RoleOwner     DbRole = "OWNER"
	RoleAdmin     DbRole = "ADMIN"
	RoleReadWrite DbRole = "READWRITE"
	RoleReadOnly  DbRole = "READONLY"
)

var roleRank = map[DbRole]int{
	RoleReadOnly:  1,
	RoleReadWrite: 2,
	RoleAdmin:     3,
	RoleOwner:     4,
}

// ParseDbRole converts a role string into a DbRole.
// Unknown strings are rejected instead of defaulting.
func ParseDbRole(s string) (DbRole, error) {
	r := DbRole(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// AtLeast reports whether r grants at least the privileges of min.
func (r DbRole) AtLeast(min DbRole) bool {
	return roleRank[r] >= roleRank[min]
}

// GrantStatement returns the canonical GRANT for this role, scoped to one
// database and one server login. The statement shapes must stay stable:
// existing tenant grants were issued from these exact templates.
func (r DbRole) GrantStatement(dbName, username string) string {
	switch r {
	case RoleOwner:
		return fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%' WITH GRANT OPTION", dbName, username)
	case RoleAdmin:
		return fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", dbName, username)
	case RoleReadWrite:
		return fmt.Sprintf("GRANT SELECT, INSERT, UPDATE, DELETE ON `%s`.* TO '%s'@'%%'", dbName, username)
	case RoleReadOnly:
		return fmt.Sprintf("GRANT SELECT ON `%s`.* TO '%s'@'%%'", dbName, username)
	}
	return ""
}
