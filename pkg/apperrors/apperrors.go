package apperrors

import "errors"

// Sentinel error kinds. Services wrap these with context via fmt.Errorf and
// %w; the HTTP layer maps each kind to a status code with errors.Is, so no
// SQL text or internal detail needs to reach the response.
var (
	// ErrUnauthorized: no session, or the caller is not a member of the
	// database being touched.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: the caller is a member but holds too low a role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: project, database, member, backup, table or row absent.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest: invalid role name, empty required list, mismatched
	// list lengths, malformed identifier, duplicate name inside a request.
	ErrBadRequest = errors.New("bad request")

	// ErrConflict: duplicate resource, a project still holding databases,
	// or a physical provisioning/privilege change that failed partway.
	ErrConflict = errors.New("conflict")

	// ErrConnectivity: the tenant server or object storage endpoint could
	// not be reached. Distinct from SQL errors so retry policy and
	// observability can tell them apart.
	ErrConnectivity = errors.New("connectivity failure")
)
