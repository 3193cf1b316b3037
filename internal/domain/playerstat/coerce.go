package playerstat

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrCoercion = errors.New("value cannot be coerced")

// CoercionError describes a raw value that does not fit its canonical field.
type CoercionError struct {
	Field Field
	Kind  Kind
	Value any
	cause error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("field %s: cannot coerce %#v to %s", e.Field, e.Value, e.Kind)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrCoercion}
	}
	return []error{ErrCoercion, e.cause}
}

// Coerce converts a raw value into the Go type of field f: string, int64 or
// float64. It applies no sentinel substitution.
func Coerce(f Field, raw any) (any, error) {
	kind, ok := fieldKinds[f]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", f)
	}

	var (
		out any
		err error
	)
	switch kind {
	case KindString:
		out, err = coerceString(raw)
	case KindInt:
		out, err = coerceInt(raw)
	case KindFloat:
		out, err = coerceFloat(raw)
	}
	if err != nil {
		return nil, &CoercionError{Field: f, Kind: kind, Value: raw, cause: err}
	}
	return out, nil
}

func coerceString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("unsupported type %T", raw)
	}
}

func coerceInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.New("out of range")
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float32:
		return truncateFloat(float64(v))
	case float64:
		return truncateFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return truncateFloat(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errors.New("not an integer literal")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

// truncateFloat drops the fractional part toward zero.
func truncateFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, errors.New("out of range")
	}
	return int64(t), nil
}

func coerceFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.New("not a numeric literal")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}
