package otp

// Result is the outcome of a verification attempt. Only Success changes the
// user's verified state; the others are expected, user-facing outcomes.
type Result int

const (
	Success Result = iota
	Expired
	AttemptsExceeded
	InvalidCode
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Expired:
		return "expired"
	case AttemptsExceeded:
		return "attempts_exceeded"
	case InvalidCode:
		return "invalid_code"
	default:
		return "unknown"
	}
}

// Message is the text returned to API clients for r.
func (r Result) Message() string {
	switch r {
	case Success:
		return "Email verified successfully."
	case Expired:
		return "Code expired"
	case AttemptsExceeded:
		return "Maximum attempts exceeded. Please request a new code."
	default:
		return "Invalid code"
	}
}
