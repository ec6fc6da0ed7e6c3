package audit

// AuthEvent describes a login or logout attempt.
type AuthEvent struct {
	Email string
	Error string
}
