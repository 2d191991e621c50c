package usecase

// Error codes mapped to HTTP statuses by the handlers.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeExpired      = "EXPIRED"
	CodeMismatch     = "MISMATCH"
	CodePrecondition = "PRECONDITION"
	CodeSpawn        = "SPAWN_ERROR"
	CodeUpstream     = "UPSTREAM_FAILURE"
)

// DomainError is an expected failure: bad input, unauthorized identity,
// unmet stage precondition. Rejected with a 4xx and no side effects.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is an upstream failure: a script exited non-zero, could not
// be spawned, or the e-mail provider rejected a call. Reported with the
// captured output attached, never retried automatically.
type TechnicalError struct {
	Code    string
	Message string
	Details string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func NewTechnicalError(code, message, details string) *TechnicalError {
	return &TechnicalError{Code: code, Message: message, Details: details}
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
