package main

import (
	"fmt"

	"github.com/oceansize/webmidi/sdk/contracts"
	"github.com/oceansize/webmidi/sdk/webmidi"
)

func main() {
	input, err := webmidi.NewInput(
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithNrpnEvents(true),
	)
	if err != nil {
		fmt.Println("No MIDI input available:", err)
		return
	}
	defer input.Destroy()

	if err := input.Open(); err != nil {
		fmt.Println("Failed to open input:", err)
		return
	}

	_, err = input.AddChannelListener("noteon", func(e webmidi.Event) {
		fmt.Printf("noteon: %s%d velocity=%.2f channel=%d\n",
			e.Note.Name, e.Note.Octave, e.Value, e.Target.Number())
	})
	if err != nil {
		fmt.Println("Failed to add listener:", err)
		return
	}

	output, err := webmidi.NewOutput()
	if err != nil {
		fmt.Println("No MIDI output available:", err)
		return
	}
	defer output.Destroy()

	if err := output.Open(); err != nil {
		fmt.Println("Failed to open output:", err)
		return
	}

	// Play a short C major chord on channel 1, half a second long.
	_, err = output.PlayNote([]string{"C3", "E3", "G3"}, &webmidi.NoteOptions{
		Duration: 500,
		Velocity: webmidi.Float64(0.8),
	}, 1)
	if err != nil {
		fmt.Println("Failed to play:", err)
		return
	}

	fmt.Println("Listening for MIDI events... Press Ctrl+C to exit.")
	select {} // Run indefinitely
}
