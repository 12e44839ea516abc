// Command dialoguecored runs the dialogue-core websocket daemon: it accepts
// device/app connections, binds them to a conversational role, and drives
// the VAD -> STT -> ChatEngine -> TTS pipeline for each bound session.
//
// Usage:
//
//	dialoguecored serve --config /etc/dialoguecore/config.yaml
//	dialoguecored version
package main

import (
	"fmt"
	"os"

	"github.com/aivox/dialoguecore/cmd/dialoguecored/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
