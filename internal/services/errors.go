package services

import "errors"

// Service-level outcomes the handlers translate into responses. Anything
// outside this set is a storage fault and propagates as-is.
var (
	// ErrDenied means the actor lacks the membership or role the operation
	// requires. The call had no side effects.
	ErrDenied = errors.New("operation not permitted")

	// ErrNotFound means a referenced user, project or task does not exist.
	// Treated the same as a denial by callers (fail closed).
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate means a uniqueness constraint already holds (username
	// taken, membership or assignment pair already present).
	ErrDuplicate = errors.New("record already exists")
)
