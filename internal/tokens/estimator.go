// Package tokens estimates prompt sizes for insight-service interaction
// records. Counts use the cl100k_base tokenizer when available and degrade
// to a character-based estimate otherwise.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// charsPerToken is the rough chars-to-tokens ratio for English prose, used
// when the codec cannot be loaded.
const charsPerToken = 4

// Estimator counts tokens in prompt text.
type Estimator struct {
	once  sync.Once
	codec tokenizer.Codec
}

// NewEstimator creates a token estimator. Codec loading is deferred to the
// first Count call.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Count returns the token count for text. Never fails; falls back to a
// character-based estimate if the codec is unavailable.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}

	e.once.Do(func() {
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			e.codec = codec
		}
	})

	if e.codec != nil {
		if ids, _, err := e.codec.Encode(text); err == nil {
			return len(ids)
		}
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
