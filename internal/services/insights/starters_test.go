package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStarters(t *testing.T) {
	text := "1. \"Let's talk about timeline\" - this opens the conversation\n2. \"What worries you most?\" - shows empathy"

	got := ParseStarters(text)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, "Let's talk about timeline", got[0].Phrase)
	assert.Equal(t, "this opens the conversation", got[0].Explanation)
	assert.Equal(t, TagOpener, got[0].SuggestedTag)

	assert.Equal(t, 2, got[1].Number)
	assert.Equal(t, "What worries you most?", got[1].Phrase)
	assert.Equal(t, "shows empathy", got[1].Explanation)
	assert.Equal(t, TagQuestion, got[1].SuggestedTag)
}

func TestParseStartersFormats(t *testing.T) {
	t.Run("bold markers and curly quotes", func(t *testing.T) {
		got := ParseStarters("**1.** “Thank you for your time” — wraps things up\n**2)** “I hear you, this is hard”: acknowledges their stress")
		require.Len(t, got, 2)
		assert.Equal(t, "Thank you for your time", got[0].Phrase)
		assert.Equal(t, "wraps things up", got[0].Explanation)
		assert.Equal(t, TagClosing, got[0].SuggestedTag)
		assert.Equal(t, "I hear you, this is hard", got[1].Phrase)
		assert.Equal(t, "acknowledges their stress", got[1].Explanation)
		assert.Equal(t, TagEmpathy, got[1].SuggestedTag)
	})

	t.Run("continuation lines", func(t *testing.T) {
		got := ParseStarters("Here are some ideas:\n\n1. \"We can revisit the rollout plan\"\n   Useful when the last meeting\n   went badly.\n")
		require.Len(t, got, 1)
		assert.Equal(t, "Useful when the last meeting went badly.", got[0].Explanation)
		assert.Equal(t, TagFollowUp, got[0].SuggestedTag)
	})

	t.Run("marker without quotes", func(t *testing.T) {
		got := ParseStarters("1) Share the growth numbers from the pilot")
		require.Len(t, got, 1)
		assert.Equal(t, "Share the growth numbers from the pilot", got[0].Phrase)
		assert.Empty(t, got[0].Explanation)
		assert.Equal(t, TagMotivation, got[0].SuggestedTag)
	})

	t.Run("empty marker is dropped", func(t *testing.T) {
		got := ParseStarters("1.\n2. \"Ok\"")
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Number)
		assert.Equal(t, "Ok", got[0].Phrase)
	})

	t.Run("empty quoted phrase is dropped", func(t *testing.T) {
		got := ParseStarters("1. \"\" text\n2. “ ” more\n3. \"Ok\"")
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Number)
		assert.Equal(t, "Ok", got[0].Phrase)
	})

	t.Run("no markers", func(t *testing.T) {
		got := ParseStarters("Just talk to them honestly.")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSuggestTag(t *testing.T) {
	tests := []struct {
		phrase      string
		explanation string
		want        string
	}{
		{"Let's kick off", "", TagOpener},
		{"I know you have concerns about the tool", "addresses pushback", TagObjection},
		{"How is the team coping", "", TagQuestion},
		{"Checking in since last time", "", TagFollowUp},
		{"I understand the pressure", "", TagEmpathy},
		{"This is a big opportunity for the team", "", TagMotivation},
		{"Can we agree on next steps?", "", TagQuestion},
		{"Agree on next steps", "", TagClosing},
		{"Good morning", "", TagOpener},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestTag(tt.phrase, tt.explanation), tt.phrase)
	}
}
