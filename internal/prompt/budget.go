package prompt

import (
	"errors"
	"fmt"
)

// ErrPromptTooLarge is returned when a composed prompt exceeds the token limit.
var ErrPromptTooLarge = errors.New("prompt exceeds token limit")

const defaultBytesPerToken = 4

// EstimateTokens approximates the token count as ceil(len(bytes)/bytesPerToken).
// A bytesPerToken <= 0 uses 4.
func EstimateTokens(s string, bytesPerToken int) int {
	if bytesPerToken <= 0 {
		bytesPerToken = defaultBytesPerToken
	}
	n := len(s)
	if n == 0 {
		return 0
	}
	return (n + bytesPerToken - 1) / bytesPerToken
}

// CheckBudget returns the estimate and ErrPromptTooLarge when it is above
// limit. A limit <= 0 disables the check.
func CheckBudget(prompt string, limit, bytesPerToken int) (int, error) {
	tokens := EstimateTokens(prompt, bytesPerToken)
	if limit > 0 && tokens > limit {
		return tokens, fmt.Errorf("%w: ~%d tokens, limit %d", ErrPromptTooLarge, tokens, limit)
	}
	return tokens, nil
}
