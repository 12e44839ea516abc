// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: PCM (Pulse Code Modulation) audio format handling
//
// For buffer utilities, use the separate github.com/aivox/dialoguecore/pkg/buffer package.
//
// Example usage:
//
//	import (
//	    "github.com/aivox/dialoguecore/pkg/audio/pcm"
//	    "github.com/aivox/dialoguecore/pkg/buffer"
//	)
//
//	// Create a buffer for audio data
//	buf := buffer.Bytes16KB()
//
//	// Work with PCM format
//	format := pcm.L16Mono16K
//	chunk := format.DataChunk(audioData)
package audio
