// Package sentencer implements a streaming tokenizer that turns an LLM's
// incrementally-produced token sequence into speakable sentences for the
// TTS pipeline: end/pause/newline punctuation detection, decimal-number
// protection ("3.14" is never split on its period), a minimum sentence
// length, and kaomoji/emoji stripping with emoji mapped to moods that
// attach to the next emitted sentence.
package sentencer

import (
	"strings"
	"sync/atomic"
)

// MinSentenceLength is the fewest runes a sentence may contain before it
// is eligible for emission on any trigger (end punctuation, newline,
// pause, emoji or kaomoji). Flush emits the remainder regardless.
const MinSentenceLength = 5

// contextWindow bounds the lookback buffer used to detect a decimal
// number ("3.14") straddling the current rune.
const contextWindow = 20

// nextSeq assigns a process-wide, monotonically increasing sequence
// number to every emitted Sentence, mirroring pkg/memory's
// monotonic-clock pattern for ordering guarantees that must hold across
// every session in the process.
var nextSeq atomic.Int64

// Sentence is one speakable unit produced by a Sentencer.
type Sentence struct {
	// Seq is the process-wide monotonic sequence number.
	Seq int64

	// Text is the accumulated sentence, trimmed and with kaomoji
	// removed, but still carrying any emoji runes it contained.
	Text string

	// TextForSpeech is Text with emoji additionally stripped; each
	// stripped emoji is instead recorded in Moods.
	TextForSpeech string

	// Moods accumulates since the previous emitted sentence: an emoji
	// encountered while no sentence was ready to emit still contributes
	// its mood, carried forward onto whichever sentence emits next.
	Moods []string
}

// Sentencer is a streaming tokenizer. It is not safe for concurrent use;
// callers feed it tokens from one ordered stream.
type Sentencer struct {
	current []rune
	context []rune

	pendingMoods []string

	// pendingDot holds a decimal-guard decision open across one rune: a
	// "." preceded by a digit is not classified as an end or not until
	// the very next rune (same token or the next one) reveals whether a
	// digit follows it too, per the \d.\d straddle rule.
	pendingDot bool
}

// New returns an empty Sentencer.
func New() *Sentencer {
	return &Sentencer{}
}

// Manual builds a Sentence directly from already-complete text, for a
// caller (e.g. an error-fallback apology) that bypasses token-by-token
// accumulation but still needs a valid process-wide Seq.
func Manual(text string) Sentence {
	return Sentence{Seq: nextSeq.Add(1), Text: text, TextForSpeech: text}
}

// OnToken feeds one token (potentially several runes) into the
// tokenizer, returning zero or more sentences completed by it.
func (s *Sentencer) OnToken(token string) []Sentence {
	if token == "" {
		return nil
	}
	var out []Sentence
	for _, ch := range token {
		out = append(out, s.onRune(ch)...)
	}
	return out
}

// Flush completes the tokenizer, emitting any non-empty remainder. Call
// this once after the token stream ends.
func (s *Sentencer) Flush() []Sentence {
	s.pendingDot = false
	if len(s.current) == 0 {
		return nil
	}
	text := strings.TrimSpace(string(s.current))
	s.current = nil
	if text == "" {
		return nil
	}
	return []Sentence{s.finish(text)}
}

// onRune feeds one rune through the tokenizer, returning zero or more
// sentences: normally at most one, but a rune that both resolves a held
// decimal-guard decision and completes a new sentence of its own can
// yield two.
func (s *Sentencer) onRune(ch rune) []Sentence {
	var out []Sentence

	if s.pendingDot {
		s.pendingDot = false
		if !isDigitRune(ch) {
			// No digit followed the held "." after all: it was a
			// genuine sentence end, not a decimal point. Finish the
			// sentence through it before processing ch.
			if sent, ok := s.finishIfReady(true, false, false, false, false); ok {
				out = append(out, sent)
			}
		}
		// If ch is a digit, the held "." is confirmed a decimal point
		// ("3.14"); fall through and process ch normally.
	}

	s.context = append(s.context, ch)
	if len(s.context) > contextWindow {
		s.context = s.context[len(s.context)-contextWindow:]
	}
	s.current = append(s.current, ch)

	if isEmoji(ch) {
		s.pendingMoods = append(s.pendingMoods, "happy")
	}

	isEnd := endPunctuation(ch)
	if ch == '.' && isEnd && precededByDigit(s.context) {
		// A digit precedes the dot; whether it is a decimal point or a
		// sentence end depends on whether a digit follows too, which
		// isn't known yet. Hold the decision for the next rune.
		s.pendingDot = true
		return out
	}

	isNewline := ch == '\n' || ch == '\r'
	isPause := pausePunctuation(ch)
	isEmojiChar := isEmoji(ch)
	containsKao := len(s.current) >= 3 && containsKaomoji(string(s.current))

	if sent, ok := s.finishIfReady(isEnd, isNewline, isPause, isEmojiChar, containsKao); ok {
		out = append(out, sent)
	}
	return out
}

func (s *Sentencer) finishIfReady(isEnd, isNewline, isPause, isEmojiChar, containsKao bool) (Sentence, bool) {
	shouldSend := isEnd || isNewline
	if !shouldSend && (isPause || isEmojiChar || containsKao) && len(s.current) >= MinSentenceLength {
		shouldSend = true
	}
	if !shouldSend || len(s.current) < MinSentenceLength {
		return Sentence{}, false
	}

	raw := strings.TrimSpace(string(s.current))
	raw = filterKaomoji(raw)
	if !hasSubstantialContent(raw) {
		return Sentence{}, false
	}
	s.current = nil
	return s.finish(raw), true
}

// finish assembles a Sentence from raw text (already trimmed and
// kaomoji-filtered), stripping emoji into TextForSpeech and attaching
// pending moods.
func (s *Sentencer) finish(raw string) Sentence {
	moods := s.pendingMoods
	s.pendingMoods = nil

	var speech strings.Builder
	for _, ch := range raw {
		if isEmoji(ch) {
			continue
		}
		speech.WriteRune(ch)
	}

	seq := nextSeq.Add(1)
	return Sentence{
		Seq:           seq,
		Text:          raw,
		TextForSpeech: strings.TrimSpace(speech.String()),
		Moods:         moods,
	}
}

// precededByDigit reports whether the rune immediately before the last
// entry of context (the "." just appended) is a digit: the first half of
// the \d.\d straddle check that guards a decimal point such as "3.14"
// from being mistaken for a sentence end. The second half — whether a
// digit also follows — is resolved by the caller via pendingDot once the
// next rune arrives.
func precededByDigit(context []rune) bool {
	if len(context) < 2 {
		return false
	}
	prev := context[len(context)-2]
	return isDigitRune(prev)
}

func isDigitRune(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func endPunctuation(ch rune) bool {
	switch ch {
	case '。', '!', '?', '！', '？', '.':
		return true
	}
	return false
}

func pausePunctuation(ch rune) bool {
	switch ch {
	case ',', '、', '；', ';', '，':
		return true
	}
	return false
}
