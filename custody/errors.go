package custody

import "errors"

// ErrAuthorityBinding means a supplied or stored account does not match
// its independently recomputed derivation or its expected (owner, mint)
// binding. Always fatal to the operation; never retried.
var ErrAuthorityBinding = errors.New("custody: authority binding violation")
