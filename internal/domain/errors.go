package domain

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrNotUnique = errors.New("record not unique")

// ErrInvalidCredentials is returned when the directory rejects an email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWrongAuthMethod is returned when an account exists but was provisioned through
// the other login path (password vs. OAuth). Callers should surface the correct path.
var ErrWrongAuthMethod = errors.New("wrong authentication method for this account")

var ErrNoPermission = errors.New("no permission")
