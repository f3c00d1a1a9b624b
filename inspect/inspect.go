// Package inspect renders decoded MIDI events as fixed-width diagnostic rows.
// It performs no I/O of its own: rows go out through an injected line sink.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"tinymid/midi"
)

// Columns holds the fixed column widths of a diagnostic row. Widths are
// padding contracts: non-hex columns are padded with trailing spaces, never
// truncated.
type Columns struct {
	Offset  int
	Hex     int
	Time    int
	Delta   int
	Name    int
	Channel int
	Note    int
}

// DefaultColumns is the row layout used by the CLI dump.
var DefaultColumns = Columns{
	Offset:  6,
	Hex:     39,
	Time:    6,
	Delta:   6,
	Name:    25,
	Channel: 10,
	Note:    9,
}

// hexPairWidth is the rendered width of one raw byte ("xx ").
const hexPairWidth = 3

// truncationMarker replaces the tail of a hex window that would overflow the
// hex column.
const truncationMarker = "[...]"

// Inspector formats events and emits them through a line sink.
type Inspector struct {
	cols Columns
	sink func(string)
}

// New returns an Inspector writing through sink with the given column layout.
func New(cols Columns, sink func(string)) *Inspector {
	return &Inspector{cols: cols, sink: sink}
}

// Print renders the event and sends the row to the sink.
func (ins *Inspector) Print(e midi.Event, window []byte) {
	ins.sink(ins.Row(e, window))
}

// Row builds one diagnostic row: offset, raw byte window as hex pairs,
// running time, delta, event name, channel (blank for meta events), and
// kind-specific detail for notes and tempo changes.
func (ins *Inspector) Row(e midi.Event, window []byte) string {
	var row strings.Builder

	row.WriteString(pad(fmt.Sprintf("0x%04x", e.Offset), ins.cols.Offset))
	row.WriteString(" | ")
	row.WriteString(pad(ins.hexWindow(window), ins.cols.Hex))
	row.WriteString("| ")
	row.WriteString(pad(strconv.FormatUint(e.Time, 10), ins.cols.Time))
	row.WriteString(" | ")
	row.WriteString(pad(strconv.FormatUint(uint64(e.Delta), 10), ins.cols.Delta))
	row.WriteString(" | ")

	kind := e.Kind()
	row.WriteString(pad(kind.String(), ins.cols.Name))
	row.WriteString(" | ")
	if e.Meta {
		row.WriteString(strings.Repeat(" ", ins.cols.Channel))
	} else {
		row.WriteString(pad("Channel "+strconv.Itoa(int(e.Channel())), ins.cols.Channel))
	}
	row.WriteString(" | ")

	switch kind {
	case midi.KindNoteOn, midi.KindNoteOff:
		name, err := midi.NoteName(e.Note)
		if err != nil {
			name = "?"
		}
		row.WriteString(pad("Note "+name, ins.cols.Note))
		row.WriteString("at velocity " + strconv.Itoa(int(e.Velocity)))
	case midi.KindTempo:
		row.WriteString(pad(strconv.FormatUint(uint64(e.Tempo), 10), ins.cols.Time))
		row.WriteString(" us per quarter note")
	}

	return row.String()
}

// hexWindow renders the raw bytes as space-separated hex pairs. When the full
// rendering would overflow the hex column, it keeps the first pairs that fit
// alongside the marker and appends the marker, so row width stays constant.
func (ins *Inspector) hexWindow(window []byte) string {
	full := len(window) * hexPairWidth
	keep := len(window)
	truncated := false
	if full > ins.cols.Hex {
		keep = (ins.cols.Hex - len(truncationMarker)) / hexPairWidth
		truncated = true
	}

	var b strings.Builder
	for _, raw := range window[:keep] {
		fmt.Fprintf(&b, "%02x ", raw)
	}
	if truncated {
		b.WriteString(truncationMarker)
	}
	return b.String()
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
