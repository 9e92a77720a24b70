package question

import (
	"fmt"
	"strings"

	"github.com/mewong1/Divedeep/internal/domain"
)

// transcriptTail is how much of the transcript's end the prompt carries.
const transcriptTail = 500

// avoidRecent is how many of the most recent asked questions the prompt
// tells the service not to repeat.
const avoidRecent = 3

// systemPrompt instructs the service to return one question as strict JSON.
// Hardcoded alongside the analysis taxonomy; the two texts move together.
const systemPrompt = `You are a warm, perceptive conversation facilitator. Given an analysis of a
live conversation, produce EXACTLY ONE follow-up question that helps the
participants connect more deeply.

Rules:
- Match the requested vibe and target the suggested connection domain.
- Build on what was just said rather than changing the subject abruptly.
- Never repeat or lightly rephrase a question that was already asked.
- Keep it answerable by anyone present, in one or two sentences.

Respond with strict JSON only, matching:
{"question": string, "domain": string, "followUp": string, "reasoning": string}`

var vibeGuidance = map[domain.Vibe]string{
	domain.VibeFun:        "playful and light, an easy laugh",
	domain.VibeThoughtful: "reflective and curious, invites a considered answer",
	domain.VibeDeep:       "intimate and brave, invites vulnerability",
	domain.VibeMixed:      "warm and open, balances light and meaningful",
}

// SystemPrompt returns the fixed generation instructions.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt assembles the per-request prompt: vibe, suggested domain and
// depth from the analysis, the transcript tail, and the recent questions to
// avoid.
func UserPrompt(qctx domain.QuestionContext) string {
	vibe := qctx.Vibe.Canonical()

	var b strings.Builder
	fmt.Fprintf(&b, "Vibe: %s (%s)\n", vibe, vibeGuidance[vibe])

	if a := qctx.Analysis; a != nil {
		fmt.Fprintf(&b, "Suggested domain: %s\n", a.SuggestedDomain)
		fmt.Fprintf(&b, "Connection depth so far: %d/10\n", a.ConnectionDepth)
		if len(a.UnexploredDomains) > 0 {
			fmt.Fprintf(&b, "Unexplored domains: %s\n", joinDomains(a.UnexploredDomains))
		}
		if a.Reasoning != "" {
			fmt.Fprintf(&b, "Analysis reasoning: %s\n", a.Reasoning)
		}
	}

	if tail := Tail(qctx.RecentTranscript, transcriptTail); tail != "" {
		fmt.Fprintf(&b, "\nMost recent conversation:\n%s\n", tail)
	}

	if avoid := lastN(qctx.AskedQuestions, avoidRecent); len(avoid) > 0 {
		b.WriteString("\nDo not repeat these already-asked questions:\n")
		for _, q := range avoid {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	b.WriteString("\nReturn exactly one question as strict JSON.")
	return b.String()
}

// Tail returns the last n bytes of s on a rune boundary.
func Tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func joinDomains(domains []domain.ConnectionDomain) string {
	parts := make([]string, len(domains))
	for i, d := range domains {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
