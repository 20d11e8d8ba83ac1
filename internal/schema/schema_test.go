package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"gotest.tools/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"x"`, KindString},
		{` {"a":1}`, KindObject},
		{`[1]`, KindArray},
		{`true`, KindBool},
		{`false`, KindBool},
		{`null`, KindNull},
		{`-1.5`, KindNumber},
		{``, KindMissing},
	}

	for _, tt := range tests {
		if got := KindOf(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestObjectAccessors(t *testing.T) {
	obj, err := DecodeObject("[0]", json.RawMessage(`{
		"name": "foo",
		"id": 7,
		"sid": "12",
		"nothing": null,
		"flag": true,
		"tags": ["a", "b"],
		"empty": [],
		"map": {"1": "x"}
	}`))
	assert.NilError(t, err)

	name, err := obj.String("name")
	assert.NilError(t, err)
	assert.Equal(t, name, "foo")

	id, err := obj.Int("id")
	assert.NilError(t, err)
	assert.Equal(t, id, 7)

	sid, err := obj.IntOrString("sid")
	assert.NilError(t, err)
	assert.Equal(t, sid, 12)

	nothing, err := obj.NullableString("nothing")
	assert.NilError(t, err)
	assert.Assert(t, nothing == nil)

	absent, err := obj.OptionalInt("absent")
	assert.NilError(t, err)
	assert.Assert(t, absent == nil)

	flag, err := obj.OptionalBool("flag")
	assert.NilError(t, err)
	assert.Equal(t, *flag, true)

	tags, err := obj.StringList("tags")
	assert.NilError(t, err)
	assert.DeepEqual(t, tags, []string{"a", "b"})

	empty, err := obj.OptionalStringList("empty")
	assert.NilError(t, err)
	assert.Assert(t, empty != nil)
	assert.Equal(t, len(empty), 0)

	m, err := obj.StringMap("map")
	assert.NilError(t, err)
	assert.DeepEqual(t, m, map[string]string{"1": "x"})
}

func TestValidationErrors(t *testing.T) {
	obj, err := DecodeObject("item", json.RawMessage(`{
		"title": 5,
		"count": 1.5,
		"truth": true,
		"tags": ["a", 2],
		"sid": "abc"
	}`))
	assert.NilError(t, err)

	tests := []struct {
		name     string
		call     func() error
		field    string
		expected string
		actual   string
	}{
		{
			name:     "string given number",
			call:     func() error { _, err := obj.String("title"); return err },
			field:    "item.title",
			expected: KindString,
			actual:   KindNumber,
		},
		{
			name:     "integer given fraction",
			call:     func() error { _, err := obj.Int("count"); return err },
			field:    "item.count",
			expected: KindInteger,
			actual:   KindNumber,
		},
		{
			name:     "integer given boolean",
			call:     func() error { _, err := obj.OptionalInt("truth"); return err },
			field:    "item.truth",
			expected: KindInteger,
			actual:   KindBool,
		},
		{
			name:     "list element",
			call:     func() error { _, err := obj.StringList("tags"); return err },
			field:    "item.tags[1]",
			expected: KindString,
			actual:   KindNumber,
		},
		{
			name:     "missing key",
			call:     func() error { _, err := obj.String("name"); return err },
			field:    "item.name",
			expected: "present",
			actual:   KindMissing,
		},
		{
			name:     "non-numeric string",
			call:     func() error { _, err := obj.IntOrString("sid"); return err },
			field:    "item.sid",
			expected: "numeric string",
			actual:   `"abc"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}

			assert.Equal(t, verr.Field, tt.field)
			assert.Equal(t, verr.Expected, tt.expected)
			assert.Equal(t, verr.Actual, tt.actual)
		})
	}
}

func TestDecodeArrayRejectsObject(t *testing.T) {
	_, err := DecodeArray("", json.RawMessage(`{"a": 1}`))

	var verr *ValidationError
	assert.Assert(t, errors.As(err, &verr))
	assert.Equal(t, verr.Expected, KindArray)
	assert.Equal(t, verr.Actual, KindObject)
	assert.Equal(t, err.Error(), "expected array, got object")
}
