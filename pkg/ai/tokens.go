package ai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TruncateTokens cuts text down to at most maxTokens tokens under the
// named encoding. Text at or under the budget is returned unchanged.
// A non-positive maxTokens disables truncation.
func TruncateTokens(text string, encoder string, maxTokens int) (string, error) {
	if maxTokens <= 0 || text == "" {
		return text, nil
	}

	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return "", fmt.Errorf("failed to load token encoding %q: %w", encoder, err)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}
