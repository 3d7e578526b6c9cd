package pix

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxValueLength is the largest value a two-digit length prefix can describe.
const MaxValueLength = 99

// ErrMalformedPayload is returned by Parse when the input does not follow the TLV grammar.
var ErrMalformedPayload = errors.New("pix: malformed payload")

// Field is a single tag-length-value entry.
type Field struct {
	Tag   string
	Value string
}

// EncodeField renders tag + zero padded length + value.
// Every field passed here is mandatory, so an empty value is rejected too.
func EncodeField(tag, value string) (string, error) {
	if len(tag) != 2 || !isDigits(tag) {
		return "", &EncodingError{Tag: tag, Reason: "tag must be two digits"}
	}
	if value == "" {
		return "", &EncodingError{Tag: tag, Reason: "value is required"}
	}
	if len(value) > MaxValueLength {
		return "", &EncodingError{Tag: tag, Reason: fmt.Sprintf("value has %d characters, limit is %d", len(value), MaxValueLength)}
	}
	return fmt.Sprintf("%s%02d%s", tag, len(value), value), nil
}

// Parse splits a TLV string into its top level fields, in order.
// Nested templates (26, 62) come back as raw values and can be parsed again.
func Parse(payload string) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(payload); {
		if len(payload)-i < 4 {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformedPayload, i)
		}
		tag := payload[i : i+2]
		rawLen := payload[i+2 : i+4]
		if !isDigits(tag) || !isDigits(rawLen) {
			return nil, fmt.Errorf("%w: invalid header %q at offset %d", ErrMalformedPayload, payload[i:i+4], i)
		}
		n, _ := strconv.Atoi(rawLen)
		start := i + 4
		if start+n > len(payload) {
			return nil, fmt.Errorf("%w: tag %s declares %d characters, %d left", ErrMalformedPayload, tag, n, len(payload)-start)
		}
		fields = append(fields, Field{Tag: tag, Value: payload[start : start+n]})
		i = start + n
	}
	return fields, nil
}

// Lookup returns the value of the first field carrying tag.
func Lookup(fields []Field, tag string) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
