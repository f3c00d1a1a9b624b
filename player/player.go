// Package player streams a decoded MIDI file to a real output port.
package player

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"tinymid/debug"
	"tinymid/midi"
)

// portScanTimeout guards against a hung MIDI backend (CoreMIDI can hang).
const portScanTimeout = 3 * time.Second

// OutPorts returns the names of the available MIDI output ports, or an error
// if the backend does not answer in time.
func OutPorts() ([]string, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case ports := <-ch:
		names := make([]string, 0, len(ports))
		for _, p := range ports {
			names = append(names, p.String())
		}
		return names, nil
	case <-time.After(portScanTimeout):
		return nil, errors.New("MIDI backend did not answer; port scan timed out")
	}
}

// findOutPort matches a port by case-insensitive substring, which is how
// ports are usually addressed ("IAC", "fluid", ...). Empty name picks the
// first port.
func findOutPort(name string) (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, errors.New("no MIDI output ports available")
	}
	if name == "" {
		return outs[0], nil
	}
	want := strings.ToLower(name)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", name)
}

// Player sends a decoded file's channel voice events through one output port.
type Player struct {
	send func(gomidi.Message) error
	port string
}

// New opens the output port matching name (first port when empty).
func New(name string) (*Player, error) {
	port, err := findOutPort(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	return &Player{send: send, port: port.String()}, nil
}

// Port returns the name of the opened output port.
func (p *Player) Port() string {
	return p.port
}

// Play streams the file in real time. Blocking; cancel ctx to stop. All
// sounding notes are released on the way out.
func (p *Player) Play(ctx context.Context, f *midi.File) error {
	schedule := Schedule(f)
	debug.Status("playing %d events through %q", len(schedule), p.port)

	start := time.Now()
	defer p.allNotesOff()

	for _, tm := range schedule {
		wait := tm.At - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if err := p.send(tm.Msg); err != nil {
			return fmt.Errorf("send at %v: %w", tm.At, err)
		}
	}
	return nil
}

func (p *Player) allNotesOff() {
	for ch := uint8(0); ch < 16; ch++ {
		p.send(gomidi.ControlChange(ch, 123, 0)) // all notes off
	}
}

// TimedMessage is one wire message with its wall-clock offset from the start
// of playback.
type TimedMessage struct {
	At  time.Duration
	Msg gomidi.Message
}

// defaultTempo is 120 bpm in microseconds per quarter note, the SMF default
// before the first tempo event.
const defaultTempo = 500000

// Schedule merges every track's channel voice events into one wall-clock
// ordered message list, applying the file's tempo events at the ticks they
// occur. Pure; used by Play and directly testable.
func Schedule(f *midi.File) []TimedMessage {
	type tickEvent struct {
		tick  uint64
		track int
		seq   int
		ev    midi.Event
	}

	var all []tickEvent
	for ti, track := range f.Tracks {
		for si, ev := range track.Events {
			all = append(all, tickEvent{tick: ev.Time, track: ti, seq: si, ev: ev})
		}
	}
	// Stable merge across tracks: by tick, then track order, then position.
	sort.Slice(all, func(i, j int) bool {
		if all[i].tick != all[j].tick {
			return all[i].tick < all[j].tick
		}
		if all[i].track != all[j].track {
			return all[i].track < all[j].track
		}
		return all[i].seq < all[j].seq
	})

	division := int(f.Division)
	if division <= 0 {
		// SMPTE division is not worth modeling for preview playback.
		division = 96
	}

	var out []TimedMessage
	var elapsed time.Duration
	var lastTick uint64
	tempo := uint32(defaultTempo)

	for _, te := range all {
		elapsed += TickDuration(te.tick-lastTick, tempo, division)
		lastTick = te.tick

		if te.ev.Meta {
			if te.ev.Kind() == midi.KindTempo {
				tempo = te.ev.Tempo
			}
			continue
		}
		msg, ok := message(f, te.ev)
		if !ok {
			continue
		}
		out = append(out, TimedMessage{At: elapsed, Msg: msg})
	}
	return out
}

// TickDuration converts a tick delta to wall time under one tempo, for a
// ticks-per-beat division.
func TickDuration(ticks uint64, tempo uint32, division int) time.Duration {
	return time.Duration(ticks) * time.Duration(tempo) * time.Microsecond / time.Duration(division)
}

// message converts one channel voice event to its wire form. The data bytes
// come from the tail of the event's source window, which holds exactly the
// payload after the delta and optional status byte.
func message(f *midi.File, ev midi.Event) (gomidi.Message, bool) {
	kind := ev.Kind()
	n, ok := kind.FixedLength()
	if !ok {
		if kind != midi.KindNoteOn && kind != midi.KindNoteOff {
			return nil, false
		}
		n = 2
	}
	window := f.Window(ev.Offset, ev.Length)
	if len(window) < n {
		return nil, false
	}
	data := window[len(window)-n:]
	ch := ev.Channel()

	switch kind {
	case midi.KindNoteOn:
		return gomidi.NoteOn(ch, data[0], data[1]), true
	case midi.KindNoteOff:
		return gomidi.NoteOff(ch, data[0]), true
	case midi.KindKeyPressure:
		return gomidi.PolyAfterTouch(ch, data[0], data[1]), true
	case midi.KindControlChange:
		return gomidi.ControlChange(ch, data[0], data[1]), true
	case midi.KindProgramChange:
		return gomidi.ProgramChange(ch, data[0]), true
	case midi.KindChannelPressure:
		return gomidi.AfterTouch(ch, data[0]), true
	case midi.KindPitchWheelChange:
		bend := int16(uint16(data[1])<<7|uint16(data[0])) - 8192
		return gomidi.Pitchbend(ch, bend), true
	}
	return nil, false
}
