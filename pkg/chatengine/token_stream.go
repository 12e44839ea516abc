package chatengine

import (
	"errors"

	"github.com/aivox/dialoguecore/pkg/genx"

	"google.golang.org/api/iterator"
)

// TokenStream is the minimal shape pkg/synth.Synthesizer consumes
// (Next() (string, error), ending with iterator.Done). Declared locally
// rather than imported, matching pkg/synth's own TokenStream — each
// consumer names the interface it needs rather than depending on the
// producer's concrete type.
type TokenStream interface {
	Next() (string, error)
}

// sliceTokenStream adapts a small, already-known set of tokens (the
// degraded tool-calling reply, a single string) into a TokenStream.
type sliceTokenStream struct {
	tokens []string
	pos    int
}

func newSliceTokenStream(tokens []string) *sliceTokenStream {
	return &sliceTokenStream{tokens: tokens}
}

func (s *sliceTokenStream) Next() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", iterator.Done
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

// liveTokenStream adapts a genx.Stream into a TokenStream, accumulating
// the full reply so onDone can finalize the conversation once the model
// is done generating.
type liveTokenStream struct {
	stream genx.Stream
	onDone func(full string)

	buf    []byte
	closed bool
}

func (s *liveTokenStream) Next() (string, error) {
	for {
		chunk, err := s.stream.Next()
		if err != nil {
			if errors.Is(err, genx.ErrDone) {
				s.finish()
				return "", iterator.Done
			}
			s.finish()
			return "", err
		}
		if chunk.ToolCall != nil {
			// ChatStream never advertises tools, so this should not
			// happen; skip defensively rather than surface a confusing
			// empty token.
			continue
		}
		if t, ok := chunk.Part.(genx.Text); ok && t != "" {
			s.buf = append(s.buf, t...)
			return string(t), nil
		}
	}
}

func (s *liveTokenStream) finish() {
	if s.closed {
		return
	}
	s.closed = true
	if s.onDone != nil {
		s.onDone(string(s.buf))
	}
}
