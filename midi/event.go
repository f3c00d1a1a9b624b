package midi

import (
	"errors"
	"strconv"
)

// Channel voice status bytes (channel-independent form, channel in low nibble)
const (
	NoteOff          uint8 = 0x80
	NoteOn           uint8 = 0x90
	KeyPressure      uint8 = 0xA0
	ControlChange    uint8 = 0xB0
	ProgramChange    uint8 = 0xC0
	ChannelPressure  uint8 = 0xD0
	PitchWheelChange uint8 = 0xE0
)

// Meta event sub-types (follow the 0xFF marker byte in the stream)
const (
	MetaSequenceNumber    uint8 = 0x00
	MetaTextEvent         uint8 = 0x01
	MetaCopyright         uint8 = 0x02
	MetaSequenceName      uint8 = 0x03
	MetaInstrument        uint8 = 0x04
	MetaLyric             uint8 = 0x05
	MetaMarkerText        uint8 = 0x06
	MetaCuePoint          uint8 = 0x07
	MetaChannelPrefix     uint8 = 0x20
	MetaEndOfTrack        uint8 = 0x2F
	MetaTempo             uint8 = 0x51
	MetaSmpteOffset       uint8 = 0x54
	MetaTimeSignature     uint8 = 0x58
	MetaKeySignature      uint8 = 0x59
	MetaSequencerSpecific uint8 = 0x7F
)

// Kind is the closed set of event classifications. Unknown is an explicit
// variant, not a fallthrough.
type Kind int

const (
	KindUnknown Kind = iota

	// Channel voice
	KindNoteOff
	KindNoteOn
	KindKeyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchWheelChange

	// Meta
	KindSequenceNumber
	KindTextEvent
	KindCopyright
	KindSequenceName
	KindInstrument
	KindLyric
	KindMarkerText
	KindCuePoint
	KindChannelPrefix
	KindEndOfTrack
	KindTempo
	KindSmpteOffset
	KindTimeSignature
	KindKeySignature
	KindSequencerSpecific

	// Anything else with the 0xF high nibble
	KindSystem
)

// Classify maps a status byte to its Kind. The system check comes first:
// 0xF0-0xFF never match the channel voice table, even though they are
// numerically adjacent to it. Accepts both stripped (0x90) and unstripped
// (0x91) channel voice bytes.
func Classify(status uint8) Kind {
	if status&0xF0 == 0xF0 {
		return KindSystem
	}
	switch status & 0xF0 {
	case NoteOff:
		return KindNoteOff
	case NoteOn:
		return KindNoteOn
	case KeyPressure:
		return KindKeyPressure
	case ControlChange:
		return KindControlChange
	case ProgramChange:
		return KindProgramChange
	case ChannelPressure:
		return KindChannelPressure
	case PitchWheelChange:
		return KindPitchWheelChange
	}
	return KindUnknown
}

// ClassifyMeta maps the sub-type byte following a 0xFF marker to its Kind.
func ClassifyMeta(metaType uint8) Kind {
	switch metaType {
	case MetaSequenceNumber:
		return KindSequenceNumber
	case MetaTextEvent:
		return KindTextEvent
	case MetaCopyright:
		return KindCopyright
	case MetaSequenceName:
		return KindSequenceName
	case MetaInstrument:
		return KindInstrument
	case MetaLyric:
		return KindLyric
	case MetaMarkerText:
		return KindMarkerText
	case MetaCuePoint:
		return KindCuePoint
	case MetaChannelPrefix:
		return KindChannelPrefix
	case MetaEndOfTrack:
		return KindEndOfTrack
	case MetaTempo:
		return KindTempo
	case MetaSmpteOffset:
		return KindSmpteOffset
	case MetaTimeSignature:
		return KindTimeSignature
	case MetaKeySignature:
		return KindKeySignature
	case MetaSequencerSpecific:
		return KindSequencerSpecific
	}
	return KindUnknown
}

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindNoteOff:
		return "Note off"
	case KindNoteOn:
		return "Note on"
	case KindKeyPressure:
		return "Polyphonic key pressure"
	case KindControlChange:
		return "Control change"
	case KindProgramChange:
		return "Program change"
	case KindChannelPressure:
		return "Channel pressure"
	case KindPitchWheelChange:
		return "Pitch wheel change"
	case KindSequenceNumber:
		return "Sequence number"
	case KindTextEvent:
		return "Text event"
	case KindCopyright:
		return "Copyright notice"
	case KindSequenceName:
		return "Sequence or track name"
	case KindInstrument:
		return "Instrument name"
	case KindLyric:
		return "Lyric text"
	case KindMarkerText:
		return "Marker text"
	case KindCuePoint:
		return "Cue point"
	case KindChannelPrefix:
		return "MIDI channel prefix assignment"
	case KindEndOfTrack:
		return "End of track"
	case KindTempo:
		return "Tempo setting"
	case KindSmpteOffset:
		return "SMPTE offset"
	case KindTimeSignature:
		return "Time signature"
	case KindKeySignature:
		return "Key signature"
	case KindSequencerSpecific:
		return "Sequencer specific event"
	case KindSystem:
		return "System message"
	}
	return "Unknown event type"
}

// FixedLength returns the exact trailing payload byte count for kinds with a
// fixed length. ok is false for variable-length kinds (text-bearing meta,
// sysex, system) whose true length comes from the stream's length prefix, and
// for unknown kinds. NoteOn/NoteOff are intentionally absent: the decoder
// supplies their length (2) itself.
func (k Kind) FixedLength() (n int, ok bool) {
	switch k {
	case KindKeyPressure:
		return 2, true
	case KindControlChange:
		return 2, true
	case KindProgramChange:
		return 1, true
	case KindChannelPressure:
		return 1, true
	case KindPitchWheelChange:
		return 2, true
	case KindSequenceNumber:
		return 2, true
	case KindChannelPrefix:
		return 1, true
	case KindEndOfTrack:
		return 0, true
	case KindTempo:
		return 3, true
	case KindSmpteOffset:
		return 5, true
	case KindTimeSignature:
		return 4, true
	case KindKeySignature:
		return 2, true
	}
	return 0, false
}

// ErrNoteRange reports a note value outside the MIDI range 0-127.
var ErrNoteRange = errors.New("note value out of range (0-127)")

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the human-readable name for a note value: pitch class plus
// octave, with note 60 = "C4" and note 0 = "C-1".
func NoteName(note uint8) (string, error) {
	if note > 127 {
		return "", ErrNoteRange
	}
	octave := int(note)/12 - 1
	return pitchClasses[note%12] + strconv.Itoa(octave), nil
}

// Channel extracts the channel from a channel voice status byte.
func Channel(status uint8) uint8 {
	return status & 0x0F
}

// StripChannel normalizes a channel voice status byte to its
// channel-independent form, for matching regardless of channel.
func StripChannel(status uint8) uint8 {
	return status & 0xF0
}

// Event is one decoded MIDI or meta event. Immutable once the decoder has
// built it; Note/Velocity/Tempo are only meaningful for the kinds that carry
// them and read as zero otherwise.
type Event struct {
	Type     uint8 // status byte (channel in low nibble) or meta sub-type
	Meta     bool  // Type is a meta sub-type following a 0xFF marker
	Note     uint8
	Velocity uint8
	Tempo    uint32 // microseconds per quarter note
	Delta    uint32 // ticks since the previous event in the track
	Time     uint64 // running sum of deltas from track start
	Offset   int    // byte window in the source buffer, for inspection
	Length   int
}

// Kind classifies the event, dispatching meta sub-types through the meta table.
func (e Event) Kind() Kind {
	if e.Meta {
		return ClassifyMeta(e.Type)
	}
	return Classify(e.Type)
}

// Channel returns the event's channel; meaningful only for channel voice events.
func (e Event) Channel() uint8 {
	return Channel(e.Type)
}
