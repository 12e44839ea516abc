package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
)

const wavHeaderSize = 44

// openPCM opens a WAV file written by pkg/tts and returns a reader
// positioned at the start of its PCM data, skipping the 44-byte header
// pkg/tts always writes.
func openPCM(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(wavHeaderSize, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// mergeAudioFiles concatenates the PCM payload of each WAV file in paths
// (in order) into one new WAV file named by assistantTimeMs under dir, for
// the end-of-turn auditing recording spec.md §4.7 describes.
func mergeAudioFiles(paths []string, assistantTimeMs int64, dir string, format pcm.Format) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("player: mkdir %s: %w", dir, err)
	}
	outPath := filepath.Join(dir, fmt.Sprintf("%d.wav", assistantTimeMs))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("player: create %s: %w", outPath, err)
	}
	defer out.Close()

	if err := writeWAVHeaderPlaceholder(out, format); err != nil {
		return "", err
	}

	var total int64
	for _, p := range paths {
		in, err := openPCM(p)
		if err != nil {
			return "", fmt.Errorf("player: open %s: %w", p, err)
		}
		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			return "", fmt.Errorf("player: copy %s: %w", p, err)
		}
		total += n
	}

	if err := patchWAVHeader(out, total); err != nil {
		return "", err
	}
	return outPath, nil
}

func writeWAVHeaderPlaceholder(w io.Writer, format pcm.Format) error {
	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
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
	_, err := w.Write(hdr[:])
	return err
}

func patchWAVHeader(w io.WriteSeeker, dataLen int64) error {
	if _, err := w.Seek(4, io.SeekStart); err != nil {
		return err
	}
	var riffSize [4]byte
	binary.LittleEndian.PutUint32(riffSize[:], uint32(36+dataLen))
	if _, err := w.Write(riffSize[:]); err != nil {
		return err
	}
	if _, err := w.Seek(40, io.SeekStart); err != nil {
		return err
	}
	var dataSize [4]byte
	binary.LittleEndian.PutUint32(dataSize[:], uint32(dataLen))
	if _, err := w.Write(dataSize[:]); err != nil {
		return err
	}
	_, err := w.Seek(0, io.SeekEnd)
	return err
}
