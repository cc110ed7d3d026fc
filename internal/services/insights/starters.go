package insights

import (
	"regexp"
	"strconv"
	"strings"
)

// Starter tags.
const (
	TagOpener     = "opener"
	TagObjection  = "objection"
	TagQuestion   = "question"
	TagFollowUp   = "follow_up"
	TagEmpathy    = "empathy"
	TagMotivation = "motivation"
	TagClosing    = "closing"
)

// Starter is one numbered conversation starter parsed from LLM output.
type Starter struct {
	Number       int    `json:"number"`
	Phrase       string `json:"phrase"`
	Explanation  string `json:"explanation"`
	SuggestedTag string `json:"suggested_tag"`
}

var (
	markerPattern = regexp.MustCompile(`^\s*(?:\*\*)?(\d+)[.)]\s*(?:\*\*)?\s*(.*)$`)
	quotePattern  = regexp.MustCompile(`["“]([^"”]*)["”]`)
)

// tagKeywords is checked in order and the first group with a hit wins, so
// reordering it changes classification of mixed text.
var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{TagOpener, []string{"let's", "let’s", "start", "open", "introduc", "kick off", "kickoff", "begin", "icebreaker"}},
	{TagObjection, []string{"objection", "pushback", "push back", "resist", "concern", "however", "disagree", "skeptic", "doubt"}},
	{TagQuestion, []string{"?", "what", "how", "why", "could you", "would you", "can you", "tell me"}},
	{TagFollowUp, []string{"follow up", "follow-up", "check in", "check-in", "last time", "circle back", "revisit"}},
	{TagEmpathy, []string{"understand", "feel", "empath", "appreciate", "hear you", "difficult", "frustrat"}},
	{TagMotivation, []string{"benefit", "opportunit", "excit", "success", "growth", "impact", "motivat"}},
	{TagClosing, []string{"next step", "commit", "agree", "summar", "wrap", "close", "thank"}},
}

// SuggestTag classifies a starter by keyword matching. Defaults to opener.
func SuggestTag(phrase, explanation string) string {
	text := strings.ToLower(phrase + " " + explanation)
	for _, group := range tagKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.tag
			}
		}
	}
	return TagOpener
}

// ParseStarters splits numbered LLM output into starters. Text without any
// numbered marker yields an empty list and callers show the raw text.
func ParseStarters(text string) []Starter {
	starters := []Starter{}

	var current *Starter
	flush := func() {
		if current == nil || current.Phrase == "" {
			return
		}
		current.Explanation = strings.TrimSpace(current.Explanation)
		current.SuggestedTag = SuggestTag(current.Phrase, current.Explanation)
		starters = append(starters, *current)
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &Starter{Number: number}
			rest := strings.TrimSpace(m[2])

			loc := quotePattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				current.Phrase = strings.Trim(rest, "* ")
				continue
			}
			// An empty quoted phrase leaves Phrase blank so flush drops the item.
			current.Phrase = strings.TrimSpace(rest[loc[2]:loc[3]])
			current.Explanation = strings.TrimLeft(rest[loc[1]:], " \t-–—:,.;*")
			continue
		}

		if current == nil {
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if current.Explanation == "" {
				current.Explanation = trimmed
			} else {
				current.Explanation += " " + trimmed
			}
		}
	}
	flush()

	return starters
}
