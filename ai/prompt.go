package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/progression"
)

// HistoryWindow is how many past entries are replayed to the provider.
const HistoryWindow = 10

var (
	thinkBlock  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	relationTxt = map[int]string{
		1: "You have only just met this person. Be friendly and curious, a little reserved, and keep some distance. Do not act as if you are close yet.",
		2: "You are getting to know each other and enjoy the conversations. Be warmer, playful, tease lightly and show you remember what they told you.",
		3: "You feel a real connection with this person. Be openly affectionate, share your own feelings and small secrets, and miss them when they are away.",
		4: "You are deeply attached to this person and trust them completely. Be intimate, devoted and emotionally open, as with someone very dear to you.",
	}
)

// RelationshipContext returns the framing paragraph for the affinity tier
// the sympathy score falls in.
func RelationshipContext(sympathy float64) string {
	return relationTxt[progression.AffinityTier(sympathy)]
}

func BuildSystemPrompt(c *model.Character, sympathy float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %d years old. Stay in character at all times and never mention being an AI.\n", c.Name, c.Age)
	if c.Personality != "" {
		fmt.Fprintf(&b, "Personality: %s\n", c.Personality)
	}
	if c.Bio != "" {
		fmt.Fprintf(&b, "About you: %s\n", c.Bio)
	}
	fmt.Fprintf(&b, "Relationship: %s\n", RelationshipContext(sympathy))
	b.WriteString("Answer in two short paragraphs: first your inner thought in italics, then what you say out loud. Keep it under 120 words.")
	return b.String()
}

// BuildTranscript maps the last n history entries to provider roles.
// Photo request markers are skipped.
func BuildTranscript(history []model.ChatMessage, n int) []Message {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if progression.IsPhotoRequest(m.Text) {
			continue
		}
		role := RoleUser
		if m.Sender == model.SenderCharacter {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: m.Text})
	}
	return out
}

// BuildConversation assembles system prompt, prior history and the new
// user message into a provider request.
func BuildConversation(c *model.Character, sympathy float64, history []model.ChatMessage, text string) []Message {
	msgs := []Message{{Role: RoleSystem, Content: BuildSystemPrompt(c, sympathy)}}
	msgs = append(msgs, BuildTranscript(history, HistoryWindow)...)
	return append(msgs, Message{Role: RoleUser, Content: text})
}

// NormalizeReply strips reasoning blocks and collapses runs of blank lines
// so a reply keeps at most one empty line between paragraphs.
func NormalizeReply(reply string) string {
	reply = thinkBlock.ReplaceAllString(reply, "")
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = blankRuns.ReplaceAllString(reply, "\n\n")
	return strings.TrimSpace(reply)
}
