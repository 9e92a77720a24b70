// Package domain defines the core value types shared by every Divedeep
// component: connection domains, conversation analyses, and generated
// questions. These are pure data shapes with no behavior beyond validation.
package domain

import "time"

// ConnectionDomain is one of the six thematic categories a facilitation
// question may target. The set is closed.
type ConnectionDomain string

const (
	DomainValuesBeliefs    ConnectionDomain = "values_beliefs"
	DomainPersonalHistory  ConnectionDomain = "personal_history"
	DomainAspirations      ConnectionDomain = "aspirations"
	DomainEmotions         ConnectionDomain = "emotions"
	DomainRelationalStyle  ConnectionDomain = "relational_style"
	DomainCurrentSituation ConnectionDomain = "current_situation"
)

// AllDomains returns every connection domain in declaration order.
// Callers must not mutate the returned slice's meaning; a fresh slice is
// returned on each call.
func AllDomains() []ConnectionDomain {
	return []ConnectionDomain{
		DomainValuesBeliefs,
		DomainPersonalHistory,
		DomainAspirations,
		DomainEmotions,
		DomainRelationalStyle,
		DomainCurrentSituation,
	}
}

// Valid reports whether d is a member of the closed domain set.
func (d ConnectionDomain) Valid() bool {
	switch d {
	case DomainValuesBeliefs, DomainPersonalHistory, DomainAspirations,
		DomainEmotions, DomainRelationalStyle, DomainCurrentSituation:
		return true
	}
	return false
}

// Vibe is the conversational tone selector. Unknown vibes degrade to
// VibeMixed wherever a vibe keys behavior.
type Vibe string

const (
	VibeFun        Vibe = "fun"
	VibeThoughtful Vibe = "thoughtful"
	VibeDeep       Vibe = "deep"
	VibeMixed      Vibe = "mixed"
)

// Valid reports whether v is one of the four enumerated vibes.
func (v Vibe) Valid() bool {
	switch v {
	case VibeFun, VibeThoughtful, VibeDeep, VibeMixed:
		return true
	}
	return false
}

// Canonical returns v if valid, VibeMixed otherwise.
func (v Vibe) Canonical() Vibe {
	if v.Valid() {
		return v
	}
	return VibeMixed
}

// ConversationAnalysis is the remote service's assessment of which domains
// the conversation has covered so far. It is replaced wholesale on each
// analysis, never merged. Explored and unexplored together usually cover the
// full enum, but the split is not enforced here: the remote service is
// authoritative, and a mismatched split is still a valid analysis.
type ConversationAnalysis struct {
	ExploredDomains   []ConnectionDomain `json:"exploredDomains"`
	UnexploredDomains []ConnectionDomain `json:"unexploredDomains"`
	ConnectionDepth   int                `json:"connectionDepth"`
	SuggestedDomain   ConnectionDomain   `json:"suggestedDomain"`
	Reasoning         string             `json:"reasoning"`
}

// ClampDepth bounds ConnectionDepth to the documented 0..10 range.
func (a *ConversationAnalysis) ClampDepth() {
	if a.ConnectionDepth < 0 {
		a.ConnectionDepth = 0
	}
	if a.ConnectionDepth > 10 {
		a.ConnectionDepth = 10
	}
}

// GeneratedQuestion is a single facilitation question produced by the remote
// service. Immutable once created; it remains the current question until
// dismissed, skipped, or replaced.
type GeneratedQuestion struct {
	Question  string           `json:"question"`
	Domain    ConnectionDomain `json:"domain"`
	FollowUp  string           `json:"followUp,omitempty"`
	Reasoning string           `json:"reasoning"`
}

// QuestionContext is the transient payload handed to question generation.
// It is assembled per request and never persisted.
type QuestionContext struct {
	Vibe             Vibe
	Analysis         *ConversationAnalysis
	RecentTranscript string
	AskedQuestions   []string
}

// SessionSnapshot is a point-in-time, caller-safe copy of the engine's
// session state. AskedQuestions is a defensive copy; mutating it does not
// affect the engine.
type SessionSnapshot struct {
	CurrentQuestion       *GeneratedQuestion    `json:"currentQuestion"`
	Analysis              *ConversationAnalysis `json:"analysis"`
	AskedQuestions        []string              `json:"askedQuestions"`
	IsAnalyzing           bool                  `json:"isAnalyzing"`
	IsGenerating          bool                  `json:"isGenerating"`
	HasShownFirstQuestion bool                  `json:"hasShownFirstQuestion"`
	LastQuestionTime      time.Time             `json:"lastQuestionTime"`
	LastAnalysisTime      time.Time             `json:"lastAnalysisTime"`
}
