package sqf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format encodes v in the literal syntax accepted by Parse.
// Supported inputs are nil, bool, string, all integer and float kinds,
// []any and []string. Other types are an error.
func Format(v any) (string, error) {
	var sb strings.Builder
	if err := write(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// MustFormat is like Format but panics on unsupported types.
// It is meant for values built from the supported types only.
func MustFormat(v any) string {
	s, err := Format(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Quote returns s as a double quoted string literal.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SerializeList joins already encoded elements into an array literal
// without re-quoting them, the way the extension renders its list results.
func SerializeList(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

// TypeName returns the engine type name of a decoded value.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NOTHING"
	case []any:
		return "ARRAY"
	case string:
		return "STRING"
	case float64:
		return "SCALAR"
	case bool:
		return "BOOL"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func write(sb *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case string:
		sb.WriteString(Quote(t))
	case float64:
		return writeFloat(sb, t)
	case float32:
		return writeFloat(sb, float64(t))
	case int:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case int8:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case int16:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(t, 10))
	case uint:
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint8:
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint16:
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint32:
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(t, 10))
	case []string:
		sb.WriteByte('[')
		for i, s := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(Quote(s))
		}
		sb.WriteByte(']')
	case []any:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := write(sb, e); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		return fmt.Errorf("sqf: cannot format value of type %T", v)
	}
	return nil
}

func writeFloat(sb *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("sqf: cannot format non-finite number %v", f)
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}
