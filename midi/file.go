package midi

import (
	"errors"
	"fmt"
	"os"
)

// Format is the SMF file format from the header chunk.
type Format uint16

const (
	SingleTrack   Format = 0
	MultipleTrack Format = 1
	MultipleSong  Format = 2
)

func (f Format) String() string {
	switch f {
	case SingleTrack:
		return "single track"
	case MultipleTrack:
		return "multiple track"
	case MultipleSong:
		return "multiple song"
	}
	return "unknown"
}

// ErrUnexpectedEOF reports a read past the end of the buffer.
var ErrUnexpectedEOF = errors.New("file ended unexpectedly")

// File is an in-memory SMF file: the raw buffer, a read position, and the
// decoded header fields. Tracks are filled in by DecodeTracks.
type File struct {
	buffer []byte
	pos    int

	Format    Format
	NumTracks uint16
	Division  int16 // positive: ticks per beat; negative: SMPTE
	Tracks    []*Track
}

// ReadFile loads and decodes a MIDI file from disk.
func ReadFile(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(buf)
}

// New decodes the header chunk of buffer and returns a File positioned at the
// first track chunk.
func New(buffer []byte) (*File, error) {
	f := &File{buffer: buffer}
	if err := f.readHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) readHeader() error {
	identifier, err := f.readString(4)
	if err != nil {
		return err
	}
	if identifier != "MThd" {
		return fmt.Errorf("wrong identifier for header chunk: expected \"MThd\" but got %q", identifier)
	}

	headerLength, err := f.readDWord()
	if err != nil {
		return err
	}
	if headerLength != 6 {
		return fmt.Errorf("wrong header chunk length: expected 0x06 but got %#06x", headerLength)
	}

	format, err := f.readWord()
	if err != nil {
		return err
	}
	if format > 2 {
		return fmt.Errorf("invalid file format: %d", format)
	}
	f.Format = Format(format)

	numTracks, err := f.readWord()
	if err != nil {
		return err
	}
	if numTracks == 0 {
		return errors.New("MIDI file must have at least one track chunk")
	}
	f.NumTracks = numTracks

	division, err := f.readWord()
	if err != nil {
		return err
	}
	if division == 0 {
		return errors.New("division cannot be zero")
	}
	f.Division = int16(division)

	return nil
}

func (f *File) readByte() (uint8, error) {
	if f.pos >= len(f.buffer) {
		return 0, ErrUnexpectedEOF
	}
	b := f.buffer[f.pos]
	f.pos++
	return b, nil
}

func (f *File) readString(n int) (string, error) {
	if f.pos+n > len(f.buffer) {
		return "", ErrUnexpectedEOF
	}
	s := string(f.buffer[f.pos : f.pos+n])
	f.pos += n
	return s, nil
}

func (f *File) readWord() (uint16, error) {
	hi, err := f.readByte()
	if err != nil {
		return 0, err
	}
	lo, err := f.readByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (f *File) readDWord() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := f.readByte()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// readVarint decodes a MIDI variable-length quantity: 7 value bits per byte,
// high bit set on every byte but the last, at most 4 bytes.
func (f *File) readVarint() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := f.readByte()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("variable-length quantity longer than 4 bytes at offset %d", f.pos)
}

// skip advances the read position by n bytes.
func (f *File) skip(n int) error {
	if f.pos+n > len(f.buffer) {
		return ErrUnexpectedEOF
	}
	f.pos += n
	return nil
}

// Window returns the raw bytes of an event's source window, for inspection.
func (f *File) Window(offset, length int) []byte {
	if offset < 0 || offset > len(f.buffer) {
		return nil
	}
	end := offset + length
	if end > len(f.buffer) {
		end = len(f.buffer)
	}
	return f.buffer[offset:end]
}
