package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aivox/dialoguecore/pkg/audio/codec/opus"
	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/dashscope"

	"google.golang.org/api/iterator"
)

// DashScopeRealtimeASRHandler drives a Qwen-Omni-Realtime session in
// transcription-only mode: it asks for the "text" modality and sets
// EnableInputAudioTranscription so the session's only job is turning the
// caller's PCM into conversation.item.input_audio_transcription.completed
// events instead of generating spoken replies. It implements
// StreamTranscriber the same way DoubaoSAUCASRHandler does.
type DashScopeRealtimeASRHandler struct {
	client     *dashscope.Client
	model      string
	asrModel   string
	sampleRate int
	channels   int
	vadMode    string
}

var _ StreamTranscriber = (*DashScopeRealtimeASRHandler)(nil)

// DashScopeRealtimeASROption is an option for configuring the handler.
type DashScopeRealtimeASROption func(*DashScopeRealtimeASRHandler)

// WithDashScopeRealtimeASRModel sets the realtime model ID.
func WithDashScopeRealtimeASRModel(model string) DashScopeRealtimeASROption {
	return func(h *DashScopeRealtimeASRHandler) {
		h.model = model
	}
}

// WithDashScopeRealtimeInputTranscriptionModel sets the model DashScope uses
// internally to transcribe input audio, as opposed to the realtime session
// model itself.
func WithDashScopeRealtimeInputTranscriptionModel(model string) DashScopeRealtimeASROption {
	return func(h *DashScopeRealtimeASRHandler) {
		h.asrModel = model
	}
}

// WithDashScopeRealtimeSampleRate sets the PCM sample rate fed to the
// session. DashScope expects 16-bit mono PCM.
func WithDashScopeRealtimeSampleRate(sampleRate int) DashScopeRealtimeASROption {
	return func(h *DashScopeRealtimeASRHandler) {
		h.sampleRate = sampleRate
	}
}

// NewDashScopeRealtimeASRHandler creates a new DashScope realtime ASR handler.
func NewDashScopeRealtimeASRHandler(client *dashscope.Client, opts ...DashScopeRealtimeASROption) *DashScopeRealtimeASRHandler {
	h := &DashScopeRealtimeASRHandler{
		client:     client,
		model:      dashscope.ModelQwenOmniTurboRealtimeLatest,
		sampleRate: 16000,
		channels:   1,
		vadMode:    dashscope.VADModeServerVAD,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TranscribeStream performs streaming transcription on an Opus audio stream.
func (h *DashScopeRealtimeASRHandler) TranscribeStream(ctx context.Context, model string, opusReader opusrt.FrameReader) (SpeechStream, error) {
	decoder, err := opus.NewDecoder(h.sampleRate, h.channels)
	if err != nil {
		return nil, err
	}

	realtimeModel := h.model
	if model != "" {
		realtimeModel = model
	}

	session, err := h.client.Realtime.Connect(ctx, &dashscope.RealtimeConfig{Model: realtimeModel})
	if err != nil {
		decoder.Close()
		return nil, err
	}

	if err := session.UpdateSession(&dashscope.SessionConfig{
		Modalities:                    []string{dashscope.ModalityText},
		InputAudioFormat:              dashscope.AudioFormatPCM16,
		EnableInputAudioTranscription: true,
		InputAudioTranscriptionModel:  h.asrModel,
		TurnDetection:                 &dashscope.TurnDetection{Type: h.vadMode},
	}); err != nil {
		session.Close()
		decoder.Close()
		return nil, err
	}

	format := sampleRateToFormat(h.sampleRate, h.channels)

	stream := &dashScopeRealtimeSpeechStream{
		ctx:        ctx,
		decoder:    decoder,
		opusReader: opusReader,
		session:    session,
		format:     format,
		resultCh:   make(chan string, 16),
		errCh:      make(chan error, 1),
		closeCh:    make(chan struct{}),
		sendDone:   make(chan struct{}),
	}

	go stream.sendLoop()
	go stream.recvLoop()

	return stream, nil
}

// dashScopeRealtimeSpeechStream implements the SpeechStream interface over a
// dashscope.RealtimeSession running in transcription-only mode.
type dashScopeRealtimeSpeechStream struct {
	ctx        context.Context
	decoder    *opus.Decoder
	opusReader opusrt.FrameReader
	session    *dashscope.RealtimeSession
	format     pcm.Format

	resultCh chan string
	errCh    chan error
	closeCh  chan struct{}
	sendDone chan struct{}

	closeOnce sync.Once
	closed    bool
	err       error
}

var _ SpeechStream = (*dashScopeRealtimeSpeechStream)(nil)

// sendLoop reads Opus frames, decodes to PCM, and appends them to the
// session's input audio buffer, committing once the device stops talking.
func (s *dashScopeRealtimeSpeechStream) sendLoop() {
	defer close(s.sendDone)

	for {
		select {
		case <-s.closeCh:
			return
		case <-s.ctx.Done():
			return
		default:
		}

		frame, loss, err := s.opusReader.Frame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if commitErr := s.session.CommitInput(); commitErr != nil {
					s.sendError(commitErr)
				}
				return
			}
			s.sendError(err)
			return
		}

		var pcmData []byte
		if loss > 0 {
			samples := int(loss.Seconds() * float64(s.format.SampleRate()))
			pcmData, err = s.decoder.DecodePLC(samples)
			if err != nil {
				s.sendError(err)
				return
			}
		} else {
			pcmData, err = s.decoder.Decode(opus.Frame(frame))
			if err != nil {
				s.sendError(err)
				return
			}
		}

		if err := s.session.AppendAudio(pcmData); err != nil {
			s.sendError(err)
			return
		}
	}
}

// recvLoop reads realtime events and forwards completed input-audio
// transcripts to resultCh. It ignores every other event type: in
// transcription-only mode the model's own text/audio response is unused.
func (s *dashScopeRealtimeSpeechStream) recvLoop() {
	defer close(s.resultCh)

	for event, err := range s.session.Events() {
		if err != nil {
			s.sendError(err)
			return
		}
		if event.Transcript == "" {
			continue
		}

		select {
		case s.resultCh <- event.Transcript:
		case <-s.closeCh:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *dashScopeRealtimeSpeechStream) sendError(err error) {
	select {
	case s.errCh <- err:
	default:
	}
}

// Next returns the next Speech from the stream. Each Speech represents one
// completed input-audio transcription turn.
func (s *dashScopeRealtimeSpeechStream) Next() (Speech, error) {
	if s.closed {
		if s.err != nil {
			return nil, s.err
		}
		return nil, iterator.Done
	}

	select {
	case text, ok := <-s.resultCh:
		if !ok {
			s.closed = true
			return nil, iterator.Done
		}
		return &singleSegmentSpeech{segment: &dashScopeRealtimeSpeechSegment{text: text, format: s.format}}, nil

	case err := <-s.errCh:
		s.err = err
		s.closed = true
		return nil, err

	case <-s.ctx.Done():
		s.err = s.ctx.Err()
		s.closed = true
		return nil, s.err
	}
}

// Close closes the speech stream.
func (s *dashScopeRealtimeSpeechStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		<-s.sendDone
		s.session.Close()
		s.decoder.Close()
		s.closed = true
	})
	return nil
}

// dashScopeRealtimeSpeechSegment implements the SpeechSegment interface.
type dashScopeRealtimeSpeechSegment struct {
	text   string
	format pcm.Format
}

var _ SpeechSegment = (*dashScopeRealtimeSpeechSegment)(nil)

func (seg *dashScopeRealtimeSpeechSegment) Decode(best pcm.Format) VoiceSegment {
	return &emptyVoiceSegment{format: seg.format}
}

func (seg *dashScopeRealtimeSpeechSegment) Transcribe() io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(seg.text)))
}

func (seg *dashScopeRealtimeSpeechSegment) Close() error {
	return nil
}
