package errs

// Error categories shared by every layer. Specific sentinels are created with
// NewKind so callers can branch on the category alone.
var (
	ErrNotFound        = New("not found")
	ErrInvalidState    = New("invalid state")
	ErrPolicyViolation = New("policy violation")
	ErrGatewayFailure  = New("gateway failure")
	ErrRetryExhausted  = New("retry exhausted")
	ErrUnauthorized    = New("unauthorized")
)

var categories = []error{
	ErrNotFound,
	ErrInvalidState,
	ErrPolicyViolation,
	ErrGatewayFailure,
	ErrRetryExhausted,
	ErrUnauthorized,
}

type kindError struct {
	msg      string
	category error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.category }

// NewKind creates a sentinel that satisfies Is for itself and for category.
// Messages must be unique: equality falls back to message comparison.
func NewKind(msg string, category error) error {
	return &kindError{msg: msg, category: category}
}

// Category returns the category err belongs to, or nil.
func Category(err error) error {
	for _, c := range categories {
		if Is(err, c) {
			return c
		}
	}
	return nil
}
