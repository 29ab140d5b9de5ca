package notice

// UserError is a failure whose message can be shown to the player as is.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a user-facing error wrapping err, which may be nil.
func NewUserError(msg string, err error) *UserError {
	return &UserError{Message: msg, Err: err}
}
