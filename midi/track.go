package midi

import "fmt"

// Track is one decoded track chunk: an ordered, append-only event list.
type Track struct {
	Name   string // from the track's sequence/track name meta event, if any
	Events []Event
}

// Sysex stream markers. Both open a length-prefixed payload in SMF.
const (
	sysexStart    uint8 = 0xF0
	sysexContinue uint8 = 0xF7
)

// noteLength is the payload size of NoteOn/NoteOff. The fixed-length table
// deliberately omits the two, so the decoder supplies it.
const noteLength = 2

// DecodeTracks reads every track chunk announced by the header. Each event's
// running time is the prefix sum of the deltas before it in its track.
func (f *File) DecodeTracks() error {
	f.Tracks = make([]*Track, 0, f.NumTracks)
	for i := 0; i < int(f.NumTracks); i++ {
		track, err := f.decodeTrack()
		if err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		f.Tracks = append(f.Tracks, track)
	}
	return nil
}

func (f *File) decodeTrack() (*Track, error) {
	identifier, err := f.readString(4)
	if err != nil {
		return nil, err
	}
	if identifier != "MTrk" {
		return nil, fmt.Errorf("wrong identifier for track chunk: expected \"MTrk\" but got %q", identifier)
	}
	chunkLength, err := f.readDWord()
	if err != nil {
		return nil, err
	}
	end := f.pos + int(chunkLength)
	if end > len(f.buffer) {
		return nil, ErrUnexpectedEOF
	}

	track := &Track{}
	var totalTime uint64
	var runningStatus uint8

	for f.pos < end {
		start := f.pos
		delta, err := f.readVarint()
		if err != nil {
			return nil, err
		}
		totalTime += uint64(delta)

		status, err := f.readByte()
		if err != nil {
			return nil, err
		}
		// Running status: a data byte here means the previous status repeats
		// and the byte we just read is the first payload byte.
		if status < 0x80 {
			if runningStatus == 0 {
				return nil, fmt.Errorf("data byte %#02x without a status byte at offset %d", status, f.pos-1)
			}
			status = runningStatus
			f.pos--
		}

		ev := Event{
			Type:   status,
			Delta:  delta,
			Time:   totalTime,
			Offset: start,
		}

		switch {
		case status == 0xFF:
			if err := f.decodeMeta(&ev, track); err != nil {
				return nil, err
			}
			runningStatus = 0
		case status == sysexStart || status == sysexContinue:
			length, err := f.readVarint()
			if err != nil {
				return nil, err
			}
			if err := f.skip(int(length)); err != nil {
				return nil, err
			}
			runningStatus = 0
		case status&0xF0 == 0xF0:
			// Bare system messages carry no length information in SMF.
			return nil, fmt.Errorf("system message %#02x with indeterminate length at offset %d", status, start)
		default:
			if err := f.decodeChannelVoice(&ev); err != nil {
				return nil, err
			}
			runningStatus = status
		}

		ev.Length = f.pos - start
		track.Events = append(track.Events, ev)

		if ev.Meta && ev.Type == MetaEndOfTrack {
			break
		}
	}

	if f.pos < end {
		f.pos = end
	}
	return track, nil
}

func (f *File) decodeMeta(ev *Event, track *Track) error {
	metaType, err := f.readByte()
	if err != nil {
		return err
	}
	length, err := f.readVarint()
	if err != nil {
		return err
	}
	kind := ClassifyMeta(metaType)
	if want, ok := kind.FixedLength(); ok && int(length) != want {
		return fmt.Errorf("%v: expected %d payload bytes but length prefix says %d at offset %d",
			kind, want, length, f.pos)
	}

	payloadStart := f.pos
	if err := f.skip(int(length)); err != nil {
		return err
	}
	payload := f.buffer[payloadStart:f.pos]

	ev.Type = metaType
	ev.Meta = true
	switch kind {
	case KindTempo:
		ev.Tempo = uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
	case KindSequenceName:
		if track.Name == "" {
			track.Name = string(payload)
		}
	}
	return nil
}

func (f *File) decodeChannelVoice(ev *Event) error {
	kind := Classify(ev.Type)
	length, ok := kind.FixedLength()
	if !ok {
		switch kind {
		case KindNoteOn, KindNoteOff:
			length = noteLength
		default:
			return fmt.Errorf("event %#02x with indeterminate length at offset %d", ev.Type, ev.Offset)
		}
	}

	payloadStart := f.pos
	if err := f.skip(length); err != nil {
		return err
	}
	payload := f.buffer[payloadStart:f.pos]

	switch kind {
	case KindNoteOn, KindNoteOff, KindKeyPressure:
		ev.Note = payload[0]
		ev.Velocity = payload[1]
	}
	return nil
}
