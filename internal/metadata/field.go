package metadata

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pushcola/coupon-indexer/internal/domain"
)

// FieldState classifies how a key appears in a loosely structured document
type FieldState int

const (
	// FieldAbsent means the key is not present
	FieldAbsent FieldState = iota
	// FieldNull means the key is present with a JSON null
	FieldNull
	// FieldTyped means the key holds a value of the expected JSON type
	FieldTyped
	// FieldMismatch means the key holds a value of another JSON type
	FieldMismatch
)

func (s FieldState) String() string {
	switch s {
	case FieldAbsent:
		return "absent"
	case FieldNull:
		return "null"
	case FieldTyped:
		return "typed"
	case FieldMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Field is one key of a document read against an expected JSON type
type Field struct {
	Key   string
	State FieldState
	Value gjson.Result
}

// Typed reports whether the field holds the expected type
func (f Field) Typed() bool {
	return f.State == FieldTyped
}

// String returns the string value without NUL characters, or nil unless the
// field is Typed
func (f Field) String() *string {
	if !f.Typed() {
		return nil
	}
	s := domain.StripNUL(f.Value.String())
	return &s
}

// Float returns the numeric value, or nil unless the field is Typed
func (f Field) Float() *float64 {
	if !f.Typed() {
		return nil
	}
	v := f.Value.Float()
	return &v
}

func readField(doc gjson.Result, key string, want gjson.Type) Field {
	v := doc.Get(gjson.Escape(key))
	switch {
	case !v.Exists():
		return Field{Key: key, State: FieldAbsent}
	case v.Type == gjson.Null:
		return Field{Key: key, State: FieldNull, Value: v}
	case v.Type == want:
		return Field{Key: key, State: FieldTyped, Value: v}
	default:
		return Field{Key: key, State: FieldMismatch, Value: v}
	}
}

// StringField reads key expecting a JSON string
func StringField(doc gjson.Result, key string) Field {
	return readField(doc, key, gjson.String)
}

// NumberField reads key expecting a JSON number
func NumberField(doc gjson.Result, key string) Field {
	return readField(doc, key, gjson.Number)
}

// ObjectField reads key expecting a JSON object
func ObjectField(doc gjson.Result, key string) Field {
	v := doc.Get(gjson.Escape(key))
	switch {
	case !v.Exists():
		return Field{Key: key, State: FieldAbsent}
	case v.Type == gjson.Null:
		return Field{Key: key, State: FieldNull, Value: v}
	case v.IsObject():
		return Field{Key: key, State: FieldTyped, Value: v}
	default:
		return Field{Key: key, State: FieldMismatch, Value: v}
	}
}

// ArrayField reads key expecting a JSON array
func ArrayField(doc gjson.Result, key string) Field {
	v := doc.Get(gjson.Escape(key))
	switch {
	case !v.Exists():
		return Field{Key: key, State: FieldAbsent}
	case v.Type == gjson.Null:
		return Field{Key: key, State: FieldNull, Value: v}
	case v.IsArray():
		return Field{Key: key, State: FieldTyped, Value: v}
	default:
		return Field{Key: key, State: FieldMismatch, Value: v}
	}
}

// containsNUL reports whether any string or key in r decodes to a NUL character
func containsNUL(r gjson.Result) bool {
	switch {
	case r.Type == gjson.String:
		return strings.ContainsRune(r.Str, 0)
	case r.IsObject(), r.IsArray():
		found := false
		r.ForEach(func(key, value gjson.Result) bool {
			found = strings.ContainsRune(key.Str, 0) || containsNUL(value)
			return !found
		})
		return found
	default:
		return false
	}
}
