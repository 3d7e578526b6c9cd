package pix

import "fmt"

// EncodingError reports a field that cannot be represented in the payload.
// No partial payload is ever returned alongside it.
type EncodingError struct {
	Tag    string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("pix: cannot encode tag %s: %s", e.Tag, e.Reason)
}
