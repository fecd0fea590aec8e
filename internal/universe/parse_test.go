package universe_test

import (
	"testing"

	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/stretchr/testify/assert"
)

func TestParseURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "http://a", expected: []string{"http://a"}},
		{name: "commas", input: "http://a,http://b", expected: []string{"http://a", "http://b"}},
		{name: "newlines", input: "http://a\nhttp://b\n", expected: []string{"http://a", "http://b"}},
		{
			name:     "mixed with empties",
			input:    "one,two\n\nthree\nfour,,five,",
			expected: []string{"one", "two", "three", "four", "five"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, universe.ParseURLs(tt.input))
		})
	}
}

func TestRepos_MergeAndNames(t *testing.T) {
	t.Parallel()

	a := universe.Repos{"b": "http://b", "a": "http://a"}
	merged := a.Merge(universe.Repos{"c": "http://c", "a": "http://a2"})

	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	assert.Equal(t, "http://a2", merged["a"])
	assert.Equal(t, "http://a", a["a"])
}

func TestRandomName(t *testing.T) {
	t.Parallel()

	name := universe.RandomName("testpkg")
	assert.Regexp(t, `^testpkg-[a-z0-9]{8}$`, name)
	assert.NotEqual(t, name, universe.RandomName("testpkg"))
}
