package auth

import "errors"

// ErrInvalidToken is returned for unusable tokens and for tokens whose
// subject is no longer an active account.
var ErrInvalidToken = errors.New("auth: invalid token")
