// File: internal/services/session/errors.go
package session

import "errors"

// ErrIdentityConflict is returned only when the allocation retry loop
// exhausts its cap. Ordinary id collisions are resolved transparently
// by re-allocation and never surface to callers.
var ErrIdentityConflict = errors.New("could not allocate a unique chat id")
