package category

import (
	"errors"
	"strings"
	"testing"

	"gotest.tools/assert"

	"newsfetcher/internal/schema"
)

func TestBuild(t *testing.T) {
	fromJS := `[
		{"url": "/sport/football", "child": [
			{"url": "/sport/football/rpl"},
			{"child": [{"url": "/sport/football/cup"}]}
		]},
		{"name": "no url here"}
	]`
	bonus := `["basketball/euroleague", "football/cup"]`
	colors := `{"football": [1, 2], "hockey": [3]}`

	table, err := BuildFrom(strings.NewReader(fromJS), strings.NewReader(bonus), strings.NewReader(colors))
	assert.NilError(t, err)

	assert.DeepEqual(t, table.BySlug, map[string]string{
		"football":   "football",
		"rpl":        "football/rpl",
		"cup":        "football/cup",
		"euroleague": "basketball/euroleague",
	})
	assert.DeepEqual(t, table.ByID, map[int]string{1: "football", 2: "football", 3: "hockey"})
}

func TestBuildRejectsNonIntegerIDs(t *testing.T) {
	_, err := Build([]byte(`[]`), []byte(`[]`), []byte(`{"football": [1.5]}`))

	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	assert.Equal(t, verr.Field, "colors.football[0]")
}

func TestBuildRejectsNonStringURL(t *testing.T) {
	_, err := Build([]byte(`[{"url": 5}]`), []byte(`[]`), []byte(`{}`))

	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	assert.Equal(t, verr.Field, "from_js[0].url")
}
