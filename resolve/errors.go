package resolve

import "fmt"

// ArgumentError reports inconsistent caller input detected at construction
// time, e.g. max_depth < start_depth when both are nonzero.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}

func argErrorf(format string, args ...interface{}) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}
