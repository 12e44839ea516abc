// Package synth implements spec.md's Synthesizer: it feeds a streaming
// token sequence through a Sentencer, synthesizes each resulting sentence
// via a TTS adapter with bounded retries, and hands the result to a
// Player in order.
package synth

import (
	"context"
	"sync"
	"time"

	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/metrics"
	"github.com/aivox/dialoguecore/pkg/player"
	"github.com/aivox/dialoguecore/pkg/sentencer"
	"github.com/aivox/dialoguecore/pkg/tts"

	"google.golang.org/api/iterator"
)

// apologyText is the fallback sentence appended when the token stream
// itself fails (a non-aborted LLM/transport error mid-stream).
const apologyText = "抱歉，我在处理您的请求时遇到问题。"

// Config tunes the Synthesizer's retry behavior, normally sourced from
// pkg/config.TTSConfig.
type Config struct {
	MaxRetryCount int
	RetryDelayMs  int
}

// TokenStream is a streaming source of LLM output tokens. Next returns
// iterator.Done when the stream ends normally; any other error is a
// transient failure that still needs a terminal sentence.
type TokenStream interface {
	Next() (string, error)
}

// Emitter is the narrow slice of player.Emitter the Synthesizer uses
// directly, for the retry UX cue that happens outside the ordered
// playback queue.
type Emitter interface {
	SendEmotion(ctx context.Context, emotion string) error
}

// Synthesizer owns one turn's sentence queue, synthesizing each Sentence
// via tts and delivering it, in order, to a Player.
type Synthesizer struct {
	cfg       Config
	tts       *tts.Factory
	provider  string
	configID  string
	params    tts.Params
	player    *player.Player
	emitter   Emitter
	log       logging.Logger

	// StillCurrent reports whether this Synthesizer is still the
	// session's active one; if nil, it is always treated as current.
	// This guards against delivering a stale turn's audio after a newer
	// Synthesizer has replaced this one (spec.md §4.6: "atomically check
	// aborted && self is still session.synthesizer").
	StillCurrent func() bool

	// AssistantTimeMs anchors every sentence this Synthesizer produces
	// to one turn, for the Player's merged-audio filename.
	AssistantTimeMs int64

	sentencer *sentencer.Sentencer

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []sentencer.Sentence
	aborted bool
	isLast  bool
	running bool
}

// New builds a Synthesizer for one turn. provider/configID/params select
// the TTS voice via f; p is the Player sentences are delivered to once
// synthesized.
func New(cfg Config, f *tts.Factory, provider, configID string, params tts.Params, p *player.Player, emitter Emitter, assistantTimeMs int64, log logging.Logger) *Synthesizer {
	if log == nil {
		log = logging.Default("synth")
	}
	if cfg.MaxRetryCount == 0 && cfg.RetryDelayMs == 0 {
		cfg = Config{MaxRetryCount: 1, RetryDelayMs: 1000}
	}
	s := &Synthesizer{
		cfg:             cfg,
		tts:             f,
		provider:        provider,
		configID:        configID,
		params:          params,
		player:          p,
		emitter:         emitter,
		AssistantTimeMs: assistantTimeMs,
		sentencer:       sentencer.New(),
		log:             log,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// StillProducing implements player.Producer: the Player keeps waiting on
// an empty queue as long as this Synthesizer's worker is still running.
func (s *Synthesizer) StillProducing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// AppendSentence enqueues text directly, assigning it a fresh
// process-wide sequence number, bypassing the Sentencer. Used for
// complete, pre-chunked text (e.g. a non-streaming chat reply) and for
// the error-fallback apology.
func (s *Synthesizer) AppendSentence(text string) {
	s.enqueue(sentencer.Manual(text))
}

// SetLast marks the incoming stream terminal: once the queue drains, the
// worker loop exits instead of waiting for more.
func (s *Synthesizer) SetLast() {
	s.mu.Lock()
	s.isLast = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Cancel aborts this turn: no more sentences are enqueued or delivered.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	s.aborted = true
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Synthesizer) isAborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

func (s *Synthesizer) enqueue(sent sentencer.Sentence) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, sent)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// StartSynthesis spawns the worker that feeds the Sentencer from tokens
// and the worker that synthesizes and delivers queued sentences. Call it
// once per turn.
func (s *Synthesizer) StartSynthesis(ctx context.Context, tokens TokenStream) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go s.feedFromTokens(tokens)
	go s.workerLoop(ctx)
}

func (s *Synthesizer) feedFromTokens(tokens TokenStream) {
	for {
		tok, err := tokens.Next()
		if err != nil {
			if err != iterator.Done && !s.isAborted() {
				s.AppendSentence(apologyText)
			}
			break
		}
		for _, sent := range s.sentencer.OnToken(tok) {
			s.enqueue(sent)
		}
	}
	for _, sent := range s.sentencer.Flush() {
		s.enqueue(sent)
	}
	s.SetLast()
}

func (s *Synthesizer) popNext() (sentencer.Sentence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.aborted {
			return sentencer.Sentence{}, false
		}
		if len(s.queue) > 0 {
			sent := s.queue[0]
			s.queue = s.queue[1:]
			return sent, true
		}
		if s.isLast {
			return sentencer.Sentence{}, false
		}
		s.cond.Wait()
	}
}

func (s *Synthesizer) workerLoop(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		sent, ok := s.popNext()
		if !ok {
			return
		}
		s.synthesizeAndDeliver(ctx, sent)
	}
}

func (s *Synthesizer) synthesizeAndDeliver(ctx context.Context, sent sentencer.Sentence) {
	begin := time.Now()

	adapter := s.tts.Get(s.provider, s.configID, s.params)

	var audioPath string
	var err error
	var retries int

	for attempt := 0; ; attempt++ {
		audioPath, err = adapter.TextToSpeech(ctx, sent.TextForSpeech)
		if err == nil {
			break
		}
		retries = attempt + 1
		metrics.Default().RecordProviderError(ctx, s.provider, "tts")
		if attempt >= s.cfg.MaxRetryCount {
			break
		}
		s.log.WarnPrintf("synth: tts attempt %d failed for sentence %d: %v", attempt+1, sent.Seq, err)
		metrics.Default().RecordTTSRetry(ctx, s.provider)
		if s.emitter != nil {
			if emitErr := s.emitter.SendEmotion(ctx, "happy"); emitErr != nil {
				s.log.WarnPrintf("synth: send retry emotion: %v", emitErr)
			}
		}
		time.Sleep(time.Duration(s.cfg.RetryDelayMs) * time.Millisecond)
	}

	if err != nil {
		s.log.WarnPrintf("synth: sentence %d exhausted retries (%v), falling back to default provider", sent.Seq, err)
		audioPath, err = s.tts.Default().TextToSpeech(ctx, sent.TextForSpeech)
		if err != nil {
			s.log.ErrorPrintf("synth: default provider also failed for sentence %d: %v", sent.Seq, err)
			metrics.Default().RecordProviderError(ctx, "default", "tts")
			audioPath = ""
		}
	}

	end := time.Now()
	metrics.Default().RecordTTSDuration(ctx, s.provider, end.Sub(begin))

	if s.isAborted() || (s.StillCurrent != nil && !s.StillCurrent()) {
		return
	}

	emotion := ""
	if len(sent.Moods) > 0 {
		emotion = sent.Moods[0]
	}

	s.player.Append(&player.Sentence{
		Seq:                   sent.Seq,
		Text:                  sent.Text,
		AudioPath:             audioPath,
		ShouldMerge:           audioPath != "",
		RetryCount:            retries,
		BeginSynthesis:        begin,
		EndSynthesis:          end,
		ParentAssistantTimeMs: s.AssistantTimeMs,
		Emotion:               emotion,
	})
	s.player.Play()
}
