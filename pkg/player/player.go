// Package player implements spec.md's Player: a single-consumer, ordered
// playback queue that paces synthesized sentence audio out to a session's
// wire connection with absolute-timestamp drift correction, the same
// pattern pkg/chatgear/server_port.go's streamingOutputLoop uses for its
// own mixer-to-client audio path.
package player

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/opus"
)

// frameMs is the fixed per-frame playback advance spec.md §4.7 specifies.
const frameMs = 60

// interSentenceGapFrames is the inter-sentence pause, expressed in frames
// of frameMs each (≈300 ms total).
const interSentenceGapFrames = 5

// textOnlySleep is how long the Player holds a sentence that has text
// but no synthesized audio, so its caption has time to be read.
const textOnlySleep = 500 * time.Millisecond

// drainPause is how long the Player waits, once its queue is empty and
// the Synthesizer is done, before announcing the stop signal.
const drainPause = 500 * time.Millisecond

// Player drains an ordered Sentence queue for one synthesis turn. A new
// Player (or a fresh NewTurn) is needed per turn; it is not reusable
// concurrently across turns.
type Player struct {
	emitter  Emitter
	producer Producer
	format   pcm.Format
	mergeDir string
	log      logging.Logger

	// OnMerged is invoked once, after drain, if any sentence audio was
	// marked ShouldMerge; it receives the path of the concatenated
	// assistant recording.
	OnMerged func(path string)

	// OnDrained is invoked once the queue is fully drained and (unless
	// aborted) the stop signal has been sent. The caller uses this to
	// decide whether the session should now close.
	OnDrained func()

	mu             sync.Mutex
	cond           *sync.Cond
	queue          []*Sentence
	running        bool
	aborted        bool
	turnStart      time.Time
	playPositionMs int64
	mergeList      []string
	assistantTime  int64
	codec          *opus.Codec
}

// Close releases the Player's Opus encoder. Call once the Player is no
// longer needed.
func (p *Player) Close() {
	p.mu.Lock()
	c := p.codec
	p.codec = nil
	p.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

func (p *Player) codecFor() (*opus.Codec, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec != nil {
		return p.codec, nil
	}
	c, err := opus.New(p.format.SampleRate(), p.format.Channels(), frameMs)
	if err != nil {
		return nil, err
	}
	p.codec = c
	return c, nil
}

// New builds a Player sending to emitter, consulting producer to decide
// whether an empty queue means the turn is over, writing merged
// recordings as format-encoded WAV under mergeDir.
func New(emitter Emitter, producer Producer, format pcm.Format, mergeDir string, log logging.Logger) *Player {
	if log == nil {
		log = logging.Default("player")
	}
	p := &Player{emitter: emitter, producer: producer, format: format, mergeDir: mergeDir, log: log}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// NewTurn resets the Player for a new synthesis turn anchored to
// assistantTimeMs, the turn's frozen wall-clock anchor shared with the
// persisted assistant message.
func (p *Player) NewTurn(assistantTimeMs int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	p.running = false
	p.aborted = false
	p.turnStart = time.Time{}
	p.playPositionMs = 0
	p.mergeList = nil
	p.assistantTime = assistantTimeMs
}

// Append enqueues a Sentence, preserving ascending Seq order.
func (p *Player) Append(s *Sentence) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aborted {
		return
	}
	p.queue = append(p.queue, s)
	p.cond.Broadcast()
}

// Play ensures the drain loop is running. Calling it repeatedly is safe; a
// call on a running loop wakes it to re-check the queue and the producer.
func (p *Player) Play() {
	p.mu.Lock()
	if p.running {
		p.cond.Broadcast()
		p.mu.Unlock()
		return
	}
	p.running = true
	p.turnStart = time.Now()
	p.mu.Unlock()

	go p.drainLoop()
}

// Cancel aborts the current turn: no more sentences will be appended,
// playback of the in-flight frame finishes, but the remaining queue is
// dropped and no stop signal is sent (the caller is expected to send a
// fresh "tts stop" itself, per spec.md §4.12's abort_dialogue handling).
func (p *Player) Cancel() {
	p.mu.Lock()
	p.aborted = true
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *Player) popNext() (*Sentence, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.aborted {
			return nil, false
		}
		if len(p.queue) > 0 {
			s := p.queue[0]
			p.queue = p.queue[1:]
			return s, true
		}
		if p.producer == nil || !p.producer.StillProducing() {
			return nil, false
		}
		p.cond.Wait()
	}
}

func (p *Player) drainLoop() {
	ctx := context.Background()
	for {
		s, ok := p.popNext()
		if !ok {
			break
		}
		p.playSentence(ctx, s)
	}
	p.finalize(ctx)
}

func (p *Player) playSentence(ctx context.Context, s *Sentence) {
	if s.AudioPath == "" && s.Text != "" {
		if err := p.emitter.SendSentenceStart(ctx, s.Text); err != nil {
			p.log.WarnPrintf("player: send sentence_start: %v", err)
		}
		if s.Emotion != "" {
			if err := p.emitter.SendEmotion(ctx, s.Emotion); err != nil {
				p.log.WarnPrintf("player: send emotion: %v", err)
			}
		}
		time.Sleep(textOnlySleep)
		return
	}
	if s.AudioPath == "" {
		return
	}

	if s.ShouldMerge {
		p.mu.Lock()
		p.mergeList = append(p.mergeList, s.AudioPath)
		p.mu.Unlock()
	}

	if err := p.emitter.SendSentenceStart(ctx, s.Text); err != nil {
		p.log.WarnPrintf("player: send sentence_start: %v", err)
	}
	if s.Emotion != "" {
		if err := p.emitter.SendEmotion(ctx, s.Emotion); err != nil {
			p.log.WarnPrintf("player: send emotion: %v", err)
		}
	}

	if err := p.streamFrames(ctx, s.AudioPath); err != nil {
		p.log.WarnPrintf("player: stream %s: %v", s.AudioPath, err)
	}

	p.mu.Lock()
	p.playPositionMs += interSentenceGapFrames * frameMs
	p.mu.Unlock()
}

// streamFrames encodes audioPath's PCM payload into fixed frameMs Opus
// frames and paces them out by an absolute target_send_time derived from
// the turn's start and a continuously-advancing play position, so that
// per-frame scheduling jitter never accumulates into drift (spec.md
// §4.7: "MUST track wall-clock drift by using absolute target_send_time,
// not cumulative sleeps"), the same approach
// pkg/chatgear/server_port.go's streamingOutputLoop takes against its
// stamp variable.
func (p *Player) streamFrames(ctx context.Context, audioPath string) error {
	f, err := openPCM(audioPath)
	if err != nil {
		return err
	}
	defer f.Close()

	codec, err := p.codecFor()
	if err != nil {
		return fmt.Errorf("build opus codec: %w", err)
	}

	frameSamples := codec.FrameSamples() * p.format.Channels()
	buf := make([]byte, frameSamples*2)
	samples := make([]int16, frameSamples)

	for {
		n, rerr := io.ReadFull(f, buf)
		if n == 0 {
			break
		}
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}

		opusFrame, encErr := codec.EncodePCM(samples)
		if encErr != nil {
			return fmt.Errorf("encode pcm: %w", encErr)
		}

		p.mu.Lock()
		target := p.turnStart.Add(time.Duration(p.playPositionMs) * time.Millisecond)
		p.mu.Unlock()

		if d := time.Until(target); d > 0 {
			time.Sleep(d)
		}

		if sendErr := p.emitter.SendOpusFrame(ctx, opusrt.FromTime(target), opusrt.Frame(opusFrame)); sendErr != nil {
			return sendErr
		}
		p.advancePosition()

		if rerr != nil {
			break
		}
	}
	return nil
}

func (p *Player) advancePosition() {
	p.mu.Lock()
	p.playPositionMs += frameMs
	p.mu.Unlock()
}

func (p *Player) finalize(ctx context.Context) {
	p.mu.Lock()
	aborted := p.aborted
	mergeList := p.mergeList
	assistantTime := p.assistantTime
	p.running = false
	p.mu.Unlock()

	if !aborted {
		time.Sleep(drainPause)
		if err := p.emitter.SendStop(ctx); err != nil {
			p.log.WarnPrintf("player: send stop: %v", err)
		}
	}

	if len(mergeList) > 0 {
		path, err := mergeAudioFiles(mergeList, assistantTime, p.mergeDir, p.format)
		if err != nil {
			p.log.WarnPrintf("player: merge audio: %v", err)
		} else if p.OnMerged != nil {
			p.OnMerged(path)
		}
	}

	if p.OnDrained != nil {
		p.OnDrained()
	}
}
