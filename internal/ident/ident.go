// Package ident converts the identifier shapes seen on the wire and in stored
// documents (numbers, numeric strings, objects carrying an "id") into the
// canonical int64 form used by the storage layer.
package ident

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a value cannot be coerced into a canonical identifier.
var ErrInvalid = errors.New("invalid identifier")

// maxExact is the largest integer a float64 carries without loss.
const maxExact = 1 << 53

// Normalize coerces v into a positive int64 identifier.
func Normalize(v any) (int64, error) {
	switch x := v.(type) {
	case Ref:
		return Normalize(x.v)
	case map[string]any:
		inner, ok := x["id"]
		if !ok {
			return 0, fmt.Errorf("%w: object without id", ErrInvalid)
		}
		if _, nested := inner.(map[string]any); nested {
			return 0, fmt.Errorf("%w: nested object id", ErrInvalid)
		}
		return Normalize(inner)
	case int:
		return positive(int64(x))
	case int32:
		return positive(int64(x))
	case int64:
		return positive(x)
	case uint32:
		return positive(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows", ErrInvalid, x)
		}
		return positive(int64(x))
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case json.Number:
		return parseString(string(x))
	case string:
		return parseString(x)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalid, v)
	}
}

// Key is the canonical string form of id, used wherever identifiers are
// compared as strings.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return positive(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalid, s)
	}
	return fromFloat(f)
}

func fromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExact {
		return 0, fmt.Errorf("%w: %v is not an integral id", ErrInvalid, f)
	}
	return positive(int64(f))
}

func positive(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalid, n)
	}
	return n, nil
}

// Ref is an identifier as it arrives in a payload or stored document: a JSON
// number, a string, or an object with an "id". Decoding never fails on shape;
// validity is decided by Int64.
type Ref struct {
	v any
}

// NewRef wraps a raw value.
func NewRef(v any) Ref {
	return Ref{v: v}
}

// RefOf wraps a canonical id.
func RefOf(id int64) Ref {
	return Ref{v: id}
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	r.v = v
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if id, err := r.Int64(); err == nil {
		return strconv.AppendInt(nil, id, 10), nil
	}
	return json.Marshal(r.v)
}

// Int64 returns the canonical id or an error wrapping ErrInvalid.
func (r Ref) Int64() (int64, error) {
	return Normalize(r.v)
}

// IsZero reports whether the reference is absent: null, missing or blank.
func (r Ref) IsZero() bool {
	switch x := r.v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// Key returns the canonical decimal form when the reference normalizes, and
// the raw text otherwise, so non-numeric references never collide with ids.
func (r Ref) Key() string {
	if id, err := r.Int64(); err == nil {
		return Key(id)
	}
	switch x := r.v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	b, err := json.Marshal(r.v)
	if err != nil {
		return fmt.Sprint(r.v)
	}
	return string(b)
}

func (r Ref) String() string {
	return r.Key()
}
