// midiports is a small diagnostics tool for checking what the MIDI backend
// sees before pointing tinymid -play at a port.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "poll":
		pollPorts()
	case "probe":
		probe(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI port diagnostics")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  poll          - Poll for port changes")
	fmt.Println("  probe <name>  - Send a short note to a port")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func pollPorts() {
	fmt.Println("Polling for port changes every 2 seconds...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Port change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}

func probe(args []string) {
	if len(args) == 0 {
		fmt.Println("probe needs a port name substring")
		return
	}
	want := strings.ToLower(args[0])

	var outPort drivers.Out
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			outPort = p
			break
		}
	}
	if outPort == nil {
		fmt.Printf("No output port matching %q\n", want)
		return
	}
	fmt.Printf("Using output: %s\n", outPort.String())

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	// Middle C, half a second
	fmt.Println("Sending middle C...")
	send(midi.NoteOn(0, 60, 100))
	time.Sleep(500 * time.Millisecond)
	send(midi.NoteOff(0, 60))
	fmt.Println("Done")
}
