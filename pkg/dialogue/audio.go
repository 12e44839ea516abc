package dialogue

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
)

const wavHeaderSize = 44

// saveUserWAV writes one trimmed user utterance (vad.Event.CapturedPCM) to
// {audioRoot}/{deviceID}/{roleID}/{assistantTimeMs}-user.wav, mirroring
// dialogue_service.py's _save_user_audio / session.get_audio_path("user", ...)
// + save_as_wav. assistantTimeMs both anchors the filename and, once
// persisted via chatengine.TurnMeta, ties the recording back to its turn.
func saveUserWAV(audioRoot, deviceID, roleID string, assistantTimeMs int64, samples []int16, format pcm.Format) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	dir := filepath.Join(audioRoot, deviceID, roleID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dialogue: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d-user.wav", assistantTimeMs))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("dialogue: create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeWAVHeader(f, format, len(samples)*2); err != nil {
		return "", fmt.Errorf("dialogue: write wav header: %w", err)
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := f.Write(buf); err != nil {
		return "", fmt.Errorf("dialogue: write pcm: %w", err)
	}
	return path, nil
}

func writeWAVHeader(f *os.File, format pcm.Format, dataLen int) error {
	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(format.Channels()))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(format.SampleRate()))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(format.BytesRate()))
	blockAlign := format.Channels() * format.Depth() / 8
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(format.Depth()))
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))
	_, err := f.Write(hdr[:])
	return err
}
