package ramdb

import (
	"github.com/IDSolutions/ramdb/lib/sqf"
)

// Result sentinels written by the extension.
const (
	ResultNotFound   = "NotFound"
	ResultEmptyArray = "[]"
	ResultChunked    = "OK"
)

// Kind classifies an extension response.
type Kind uint8

const (
	// KindNotFound means the key is absent. Data is empty.
	KindNotFound Kind = iota
	// KindChunked means the payload is delivered through the callback channel. Data is empty.
	KindChunked
	// KindInline means the result carried the payload. Data holds the decoded value.
	KindInline
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindChunked:
		return "chunked"
	case KindInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Outcome is the classified response of a single extension call.
type Outcome struct {
	Kind Kind
	// Raw is response[0] as received.
	Raw string
	// Data is the decoded value. It is an empty []any unless Kind is KindInline.
	Data any
}

// Classify inspects response[0] and decodes inline payloads.
//
// "NotFound" and "[]" map to KindNotFound, "OK" maps to KindChunked, every
// other string is parsed as a literal. Only exact string equality is used
// for the sentinels, so they are matched before any decoding happens.
// A literal that does not parse yields a *DecodeError.
func Classify(response []string) (Outcome, error) {
	if len(response) == 0 {
		return Outcome{}, &DecodeError{Err: ErrEmptyResponse}
	}

	raw := response[0]
	switch raw {
	case ResultNotFound, ResultEmptyArray:
		return Outcome{Kind: KindNotFound, Raw: raw, Data: []any{}}, nil
	case ResultChunked:
		return Outcome{Kind: KindChunked, Raw: raw, Data: []any{}}, nil
	}

	data, err := sqf.Parse(raw)
	if err != nil {
		return Outcome{}, &DecodeError{Raw: raw, Err: err}
	}
	return Outcome{Kind: KindInline, Raw: raw, Data: data}, nil
}
