package domain

// Source tells whether a client result came from the remote insight service
// or from the client's deterministic fallback. Fallback results are identical
// in shape to live ones; provenance exists so logs and tests can tell them
// apart without inspecting errors.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// FallbackReason tags why a fallback was served.
type FallbackReason string

const (
	FallbackNone      FallbackReason = ""
	FallbackTransport FallbackReason = "transport"
	FallbackMalformed FallbackReason = "malformed"
)
