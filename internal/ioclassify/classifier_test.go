package ioclassify_test

import (
	"testing"

	"github.com/gnames/gnfacet/internal/ioclassify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyPlainJSON(t *testing.T) {
	p := ioclassify.ParseReply(`{
		"size": "small",
		"colors": ["brown", "gray"],
		"diet": "granivore"
	}`)
	require.NotNil(t, p)
	assert.Equal(t, "small", p.Size)
	assert.Equal(t, []string{"brown", "gray"}, p.Colors)
	assert.Equal(t, "granivore", p.Diet)
}

func TestParseReplyCodeFence(t *testing.T) {
	p := ioclassify.ParseReply("```json\n" +
		`{"size": "large", "habitats": ["coastal"]}` +
		"\n```")
	require.NotNil(t, p)
	assert.Equal(t, "large", p.Size)
	assert.Equal(t, []string{"coastal"}, p.Habitats)
}

func TestParseReplySurroundingProse(t *testing.T) {
	p := ioclassify.ParseReply(
		"Here is my classification:\n" +
			`{"pattern": "striped"}` +
			"\nLet me know if you need more.")
	require.NotNil(t, p)
	assert.Equal(t, "striped", p.Pattern)
}

func TestParseReplyBracesInsideStrings(t *testing.T) {
	p := ioclassify.ParseReply(`{"size": "sm{all}"}`)
	require.NotNil(t, p)
	assert.Equal(t, "sm{all}", p.Size)
}

func TestParseReplyGarbage(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot classify this organism.",
		`{"size": `,
		"```\nnot json\n```",
	} {
		assert.Nil(t, ioclassify.ParseReply(reply), reply)
	}
}
