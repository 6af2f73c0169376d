package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTemplatesReferenceCount(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	names := []string{"comparative", "comparative-brief", "episode-breakdown", "character-arcs", "dialogue-craft"}
	templates := lib.Templates()
	require.Len(t, templates, len(names))

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tmpl, err := lib.Lookup(name)
			require.NoError(t, err)
			assert.NotEmpty(t, tmpl.Description)

			out, err := lib.Render(tmpl, 4)
			require.NoError(t, err)
			assert.Contains(t, out, "4")
			assert.NotContains(t, out, "{{")
		})
	}
}

func TestComposeScenario(t *testing.T) {
	lib, err := NewLibrary(WithTemplate("test", "Compare these {{ count }} scripts"))
	require.NoError(t, err)

	out, err := lib.Compose("test", "", []string{"Hello", "World"})
	require.NoError(t, err)

	assert.Contains(t, out, "Compare these 2 scripts")
	assert.Contains(t, out, "Script 1:\nHello")
	assert.Contains(t, out, "Script 2:\nWorld")
	assert.Contains(t, out, "Script 1:\nHello\n\n---\n\nScript 2:\nWorld")
	assert.NotContains(t, out, "ADDITIONAL INSTRUCTIONS")
}

func TestComposeCountMatchesScripts(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	for _, n := range []int{1, 3, 5} {
		scripts := make([]string, n)
		for i := range scripts {
			scripts[i] = "text"
		}
		out, err := lib.Compose("", "", scripts)
		require.NoError(t, err)

		comparative, err := lib.Lookup(DefaultTemplate)
		require.NoError(t, err)
		want, err := lib.Render(comparative, n)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, strings.TrimRight(want, "\n")))
		assert.Equal(t, n, strings.Count(out, "\n\n---\n\n")+1)
	}
}

func TestComposePreservesScriptOrder(t *testing.T) {
	lib, err := NewLibrary(WithTemplate("t", "Analyse {{ count }}"))
	require.NoError(t, err)

	out, err := lib.Compose("t", "", []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	i1 := strings.Index(out, "Script 1:\nalpha")
	i2 := strings.Index(out, "Script 2:\nbeta")
	i3 := strings.Index(out, "Script 3:\ngamma")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0, out)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestComposeAddendumIsDelimited(t *testing.T) {
	lib, err := NewLibrary(WithTemplate("t", "Compare these {{ count }} scripts"))
	require.NoError(t, err)

	out, err := lib.Compose("t", "  Focus on the mother-in-law subplot.  ", []string{"Hello"})
	require.NoError(t, err)

	want := "Compare these 1 scripts" +
		"\n\n### ADDITIONAL INSTRUCTIONS FROM THE USER\nFocus on the mother-in-law subplot." +
		"\n\nHere are the scripts:\n\nScript 1:\nHello"
	assert.Equal(t, want, out)
}

func TestComposeWhitespaceAddendumIsIgnored(t *testing.T) {
	lib, err := NewLibrary(WithTemplate("t", "x"))
	require.NoError(t, err)

	out, err := lib.Compose("t", " \n\t ", []string{"Hello"})
	require.NoError(t, err)
	assert.NotContains(t, out, "ADDITIONAL INSTRUCTIONS")
}

func TestComposeErrors(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	_, err = lib.Compose("", "", nil)
	assert.True(t, errors.Is(err, ErrNoScripts))

	_, err = lib.Compose("missing", "", []string{"x"})
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestNewLibraryRejectsMissingDefault(t *testing.T) {
	_, err := NewLibrary(WithDefault("nope"))
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	lib, err := NewLibrary(WithTemplate("custom", "{{ count }}"), WithDefault("custom"))
	require.NoError(t, err)
	assert.Equal(t, "custom", lib.Default())
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input string
		bpt   int
		want  int
	}{
		{"", 4, 0},
		{"abcd", 4, 1},
		{"abcde", 4, 2},
		{"abcde", 0, 2},
		{"abcdef", 3, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.input, tt.bpt), "input=%q bpt=%d", tt.input, tt.bpt)
	}
}

func TestCheckBudget(t *testing.T) {
	prompt := strings.Repeat("a", 400)

	tokens, err := CheckBudget(prompt, 100, 4)
	assert.NoError(t, err)
	assert.Equal(t, 100, tokens)

	tokens, err = CheckBudget(prompt, 99, 4)
	assert.ErrorIs(t, err, ErrPromptTooLarge)
	assert.Equal(t, 100, tokens)

	_, err = CheckBudget(prompt, 0, 4)
	assert.NoError(t, err)
}
