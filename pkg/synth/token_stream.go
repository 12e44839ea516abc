package synth

import "google.golang.org/api/iterator"

// SliceTokenStream adapts a pre-collected slice of tokens into a
// TokenStream, for callers (tests, or a non-streaming chat reply) that
// already hold the complete output.
type SliceTokenStream struct {
	tokens []string
	pos    int
}

// NewSliceTokenStream wraps tokens as a TokenStream.
func NewSliceTokenStream(tokens []string) *SliceTokenStream {
	return &SliceTokenStream{tokens: tokens}
}

// Next returns the next token, or iterator.Done once exhausted.
func (s *SliceTokenStream) Next() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", iterator.Done
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}
