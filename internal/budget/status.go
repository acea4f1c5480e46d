package budget

import "fmt"

// Status is the outcome of classifying one category.
type Status int

const (
	Normal Status = iota
	NearLimit
	OverLimit
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case NearLimit:
		return "near_limit"
	case OverLimit:
		return "over_limit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Alerting reports whether the status produces a warning message.
func (s Status) Alerting() bool {
	return s == NearLimit || s == OverLimit
}
