// Package oracle is the boundary to the hosted language model. The rest of
// the system sees it as a plain text-in, text-out completion call.
package oracle

import (
	"context"
	"unicode/utf8"
)

// Completion is the model's reply plus the tokens billed for the call.
type Completion struct {
	Text   string
	Tokens int
}

// Oracle completes a prompt. Implementations do not retry.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// Func adapts a plain function to Oracle. Token usage is estimated.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete implements Oracle.
func (f Func) Complete(ctx context.Context, prompt string) (Completion, error) {
	text, err := f(ctx, prompt)
	if err != nil {
		return Completion{}, err
	}
	return Completion{Text: text, Tokens: EstimateTokens(prompt) + EstimateTokens(text)}, nil
}

// EstimateTokens approximates a token count at four characters per token.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// Static returns an Oracle that always answers text.
func Static(text string) Oracle {
	return Func(func(context.Context, string) (string, error) {
		return text, nil
	})
}
