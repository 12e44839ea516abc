package tts

import (
	"encoding/binary"
	"io"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
)

const wavHeaderSize = 44

// writeWAVHeaderPlaceholder writes a canonical 44-byte PCM WAV header with
// zeroed size fields, to be patched by patchWAVHeader once the data
// length is known.
func writeWAVHeaderPlaceholder(w io.Writer, format pcm.Format) error {
	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // PCM
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

// patchWAVHeader backfills the RIFF and data chunk sizes once dataLen
// bytes of PCM have been written after the header.
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
