package extract

import "fmt"

// Error wraps any transport, parse or remote-side failure of an AI call so
// callers can tell extraction failures apart from store failures. Either a
// fully validated candidate/answer is returned, or an *Error; there is no
// partial success. Retries, if any, belong to the caller.
type Error struct {
	Op  string // "image", "voice", "answer", "leaks"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
