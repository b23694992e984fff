package sessions

import "errors"

// ErrNoSession indicates a handler ran without the session middleware.
var ErrNoSession = errors.New("no session bound to request")
