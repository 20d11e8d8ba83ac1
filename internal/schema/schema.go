// Package schema provides strict shape validation for decoded JSON documents.
//
// Values are kept as json.RawMessage until a typed accessor asks for them, so
// every type mismatch can be reported with the field path, the expected kind
// and the kind actually found.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSON kinds as reported in validation errors.
const (
	KindNull    = "null"
	KindBool    = "boolean"
	KindNumber  = "number"
	KindInteger = "integer"
	KindString  = "string"
	KindArray   = "array"
	KindObject  = "object"
	KindMissing = "missing"
	KindInvalid = "invalid JSON"
)

// ValidationError reports a value whose shape does not match what was expected.
type ValidationError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	}

	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// KindOf returns the JSON kind of a raw value.
func KindOf(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return KindMissing
	}

	switch trimmed[0] {
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber
	}

	return KindInvalid
}

// Join builds a field path from a parent path and a key.
func Join(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

// Index builds a field path for an array element.
func Index(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func mismatch(field, expected string, raw json.RawMessage) error {
	return &ValidationError{Field: field, Expected: expected, Actual: KindOf(raw)}
}

// Object is a decoded JSON object whose members are validated lazily.
type Object struct {
	path   string
	fields map[string]json.RawMessage
}

// DecodeObject decodes raw as a JSON object located at path.
func DecodeObject(path string, raw json.RawMessage) (Object, error) {
	if KindOf(raw) != KindObject {
		return Object{}, mismatch(path, KindObject, raw)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Object{}, &ValidationError{Field: path, Expected: KindObject, Actual: KindInvalid}
	}

	return Object{path: path, fields: fields}, nil
}

// DecodeArray decodes raw as a JSON array located at path.
func DecodeArray(path string, raw json.RawMessage) ([]json.RawMessage, error) {
	if KindOf(raw) != KindArray {
		return nil, mismatch(path, KindArray, raw)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Field: path, Expected: KindArray, Actual: KindInvalid}
	}

	return items, nil
}

// Path returns the field path of the object.
func (o Object) Path() string {
	return o.path
}

// Has reports whether key is present, including explicit nulls.
func (o Object) Has(key string) bool {
	_, ok := o.fields[key]

	return ok
}

// Keys returns the object member names in unspecified order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}

	return keys
}

// Raw returns the raw member value.
func (o Object) Raw(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]

	return raw, ok
}

// lookup returns the value for key, with ok=false when the key is absent or null.
func (o Object) lookup(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]
	if !ok || KindOf(raw) == KindNull {
		return nil, false
	}

	return raw, true
}

func (o Object) required(key string) (json.RawMessage, error) {
	raw, ok := o.fields[key]
	if !ok {
		return nil, &ValidationError{Field: Join(o.path, key), Expected: "present", Actual: KindMissing}
	}

	return raw, nil
}

// String returns a required string member.
func (o Object) String(key string) (string, error) {
	raw, err := o.required(key)
	if err != nil {
		return "", err
	}

	return StringValue(Join(o.path, key), raw)
}

// NullableString returns a member that must be present but may be null.
func (o Object) NullableString(key string) (*string, error) {
	raw, err := o.required(key)
	if err != nil {
		return nil, err
	}

	if KindOf(raw) == KindNull {
		return nil, nil
	}

	s, err := StringValue(Join(o.path, key), raw)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// OptionalString returns nil when the member is absent or null.
func (o Object) OptionalString(key string) (*string, error) {
	raw, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}

	s, err := StringValue(Join(o.path, key), raw)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Int returns a required integer member.
func (o Object) Int(key string) (int, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}

	return IntValue(Join(o.path, key), raw)
}

// OptionalInt returns nil when the member is absent or null.
func (o Object) OptionalInt(key string) (*int, error) {
	raw, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}

	n, err := IntValue(Join(o.path, key), raw)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// IntOrString accepts an integer or a string holding a base-10 integer.
func (o Object) IntOrString(key string) (int, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}

	field := Join(o.path, key)
	if KindOf(raw) != KindString {
		return IntValue(field, raw)
	}

	s, err := StringValue(field, raw)
	if err != nil {
		return 0, err
	}

	n, convErr := strconv.Atoi(strings.TrimSpace(s))
	if convErr != nil {
		return 0, &ValidationError{Field: field, Expected: "numeric string", Actual: strconv.Quote(s)}
	}

	return n, nil
}

// OptionalBool returns nil when the member is absent or null.
func (o Object) OptionalBool(key string) (*bool, error) {
	raw, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}

	if KindOf(raw) != KindBool {
		return nil, mismatch(Join(o.path, key), KindBool, raw)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, &ValidationError{Field: Join(o.path, key), Expected: KindBool, Actual: KindInvalid}
	}

	return &b, nil
}

// StringList returns a required array of strings.
func (o Object) StringList(key string) ([]string, error) {
	raw, err := o.required(key)
	if err != nil {
		return nil, err
	}

	return StringListValue(Join(o.path, key), raw)
}

// OptionalStringList returns nil when the member is absent or null.
// A present empty array yields a non-nil empty slice.
func (o Object) OptionalStringList(key string) ([]string, error) {
	raw, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}

	return StringListValue(Join(o.path, key), raw)
}

// Object returns a required nested object.
func (o Object) Object(key string) (Object, error) {
	raw, err := o.required(key)
	if err != nil {
		return Object{}, err
	}

	return DecodeObject(Join(o.path, key), raw)
}

// StringMap returns a required object whose members are all strings.
func (o Object) StringMap(key string) (map[string]string, error) {
	nested, err := o.Object(key)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(nested.fields))

	for k, raw := range nested.fields {
		s, err := StringValue(Join(nested.path, k), raw)
		if err != nil {
			return nil, err
		}

		out[k] = s
	}

	return out, nil
}

// StringValue decodes raw as a JSON string.
func StringValue(field string, raw json.RawMessage) (string, error) {
	if KindOf(raw) != KindString {
		return "", mismatch(field, KindString, raw)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Field: field, Expected: KindString, Actual: KindInvalid}
	}

	return s, nil
}

// IntValue decodes raw as a JSON number without a fractional part or exponent.
func IntValue(field string, raw json.RawMessage) (int, error) {
	if KindOf(raw) != KindNumber {
		return 0, mismatch(field, KindInteger, raw)
	}

	n, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, &ValidationError{Field: field, Expected: KindInteger, Actual: KindNumber}
	}

	return n, nil
}

// StringListValue decodes raw as an array of strings.
func StringListValue(field string, raw json.RawMessage) ([]string, error) {
	items, err := DecodeArray(field, raw)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))

	for i, item := range items {
		s, err := StringValue(Index(field, i), item)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// IntListValue decodes raw as an array of integers.
func IntListValue(field string, raw json.RawMessage) ([]int, error) {
	items, err := DecodeArray(field, raw)
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(items))

	for i, item := range items {
		n, err := IntValue(Index(field, i), item)
		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, nil
}
