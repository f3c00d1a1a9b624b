package midi

import (
	"errors"
	"strings"
	"testing"
)

// smfSpecData is the four-track example file given in the SMF section of the
// MIDI specification. It exercises meta events, running status, and a note
// off expressed as note on with velocity zero.
var smfSpecData = []byte{
	// MThd
	0x4d, 0x54, 0x68, 0x64,
	0, 0, 0, 6,
	0, 1, // format 1
	0, 4, // four tracks
	0, 0x60, // 96 ticks per quarter note

	// Tempo/time signature track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x14,
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8, // time signature
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20, // tempo 500000
	0x83, 0, 0xff, 0x2f, 0, // end of track at delta 384

	// First music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x10,
	0, 0xc0, 5, // program change
	0x81, 0x40, 0x90, 0x4c, 0x20, // note on at delta 192
	0x81, 0x40, 0x4c, 0, // running status, velocity 0
	0, 0xff, 0x2f, 0,

	// Second music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0xf,
	0, 0xc1, 0x2e,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x43, 0,
	0, 0xff, 0x2f, 0,

	// Third music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x15,
	0, 0xc2, 0x46,
	0, 0x92, 0x30, 0x60,
	0, 0x3c, 0x60, // running status
	0x83, 0, 0x30, 0, // running status at delta 384
	0, 0x3c, 0,
	0, 0xff, 0x2f, 0,
}

func TestHeaderDecode(t *testing.T) {
	f, err := New(smfSpecData)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Format != MultipleTrack {
		t.Errorf("Format = %v, want MultipleTrack", f.Format)
	}
	if f.NumTracks != 4 {
		t.Errorf("NumTracks = %d, want 4", f.NumTracks)
	}
	if f.Division != 96 {
		t.Errorf("Division = %d, want 96", f.Division)
	}
}

func TestHeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{
			"wrong identifier",
			[]byte{'M', 'T', 'r', 'k', 0, 0, 0, 6, 0, 1, 0, 1, 0, 0x60},
			"wrong identifier",
		},
		{
			"wrong header length",
			[]byte{'M', 'T', 'h', 'd', 0, 0, 0, 7, 0, 1, 0, 1, 0, 0x60},
			"wrong header chunk length",
		},
		{
			"invalid format",
			[]byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 3, 0, 1, 0, 0x60},
			"invalid file format",
		},
		{
			"zero tracks",
			[]byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 0, 0, 0x60},
			"at least one track",
		},
		{
			"zero division",
			[]byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 1, 0, 0},
			"division cannot be zero",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestHeaderTruncated(t *testing.T) {
	_, err := New([]byte{'M', 'T', 'h', 'd', 0, 0})
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeTracks(t *testing.T) {
	f, err := New(smfSpecData)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err != nil {
		t.Fatalf("DecodeTracks: %v", err)
	}
	if len(f.Tracks) != 4 {
		t.Fatalf("got %d tracks, want 4", len(f.Tracks))
	}

	// Tempo track: time signature, tempo, end of track.
	tempoTrack := f.Tracks[0]
	kinds := make([]Kind, 0, len(tempoTrack.Events))
	for _, ev := range tempoTrack.Events {
		kinds = append(kinds, ev.Kind())
	}
	wantKinds := []Kind{KindTimeSignature, KindTempo, KindEndOfTrack}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("tempo track kinds = %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("tempo track event %d = %v, want %v", i, kinds[i], wantKinds[i])
		}
	}
	if tempo := tempoTrack.Events[1].Tempo; tempo != 500000 {
		t.Errorf("Tempo = %d, want 500000", tempo)
	}
	if eot := tempoTrack.Events[2]; eot.Delta != 384 || eot.Time != 384 {
		t.Errorf("end of track delta/time = %d/%d, want 384/384", eot.Delta, eot.Time)
	}

	// First music track: program change, note on, note off via running
	// status with velocity zero.
	music := f.Tracks[1]
	if len(music.Events) != 4 {
		t.Fatalf("music track has %d events, want 4", len(music.Events))
	}
	if music.Events[0].Kind() != KindProgramChange {
		t.Errorf("event 0 = %v, want KindProgramChange", music.Events[0].Kind())
	}

	on := music.Events[1]
	if on.Kind() != KindNoteOn || on.Note != 0x4c || on.Velocity != 0x20 {
		t.Errorf("note on = %v note %#02x vel %d", on.Kind(), on.Note, on.Velocity)
	}
	if on.Delta != 192 || on.Time != 192 {
		t.Errorf("note on delta/time = %d/%d, want 192/192", on.Delta, on.Time)
	}

	off := music.Events[2]
	if off.Kind() != KindNoteOn || off.Velocity != 0 {
		t.Errorf("running status note off = %v vel %d, want KindNoteOn vel 0", off.Kind(), off.Velocity)
	}
	if off.Time != 384 {
		t.Errorf("running status note off time = %d, want 384", off.Time)
	}
	if off.Channel() != 0 {
		t.Errorf("running status channel = %d, want 0", off.Channel())
	}
}

// The running time of every event must equal the prefix sum of the deltas
// before it in its track.
func TestTotalTimeIsPrefixSum(t *testing.T) {
	f, err := New(smfSpecData)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err != nil {
		t.Fatalf("DecodeTracks: %v", err)
	}
	for ti, track := range f.Tracks {
		var sum uint64
		for i, ev := range track.Events {
			sum += uint64(ev.Delta)
			if ev.Time != sum {
				t.Errorf("track %d event %d: Time = %d, prefix sum = %d", ti, i, ev.Time, sum)
			}
		}
	}
}

func TestEventWindows(t *testing.T) {
	f, err := New(smfSpecData)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err != nil {
		t.Fatalf("DecodeTracks: %v", err)
	}
	for ti, track := range f.Tracks {
		for i, ev := range track.Events {
			window := f.Window(ev.Offset, ev.Length)
			if len(window) != ev.Length {
				t.Errorf("track %d event %d: window %d bytes, Length %d", ti, i, len(window), ev.Length)
			}
			if ev.Length == 0 {
				t.Errorf("track %d event %d: empty window", ti, i)
			}
		}
	}
}

func TestTrackErrors(t *testing.T) {
	header := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60}

	// Wrong track identifier
	data := append(append([]byte{}, header...), 'X', 'T', 'r', 'k', 0, 0, 0, 4, 0, 0xff, 0x2f, 0)
	f, err := New(data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err == nil || !strings.Contains(err.Error(), "wrong identifier for track chunk") {
		t.Errorf("err = %v, want wrong track identifier", err)
	}

	// Data byte with no status byte to repeat
	data = append(append([]byte{}, header...), 'M', 'T', 'r', 'k', 0, 0, 0, 3, 0, 0x40, 0x40)
	f, err = New(data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err == nil || !strings.Contains(err.Error(), "without a status byte") {
		t.Errorf("err = %v, want running status error", err)
	}

	// Fixed-length meta whose length prefix disagrees with the table
	data = append(append([]byte{}, header...), 'M', 'T', 'r', 'k', 0, 0, 0, 6, 0, 0xff, 0x51, 2, 7, 0xa1)
	f, err = New(data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.DecodeTracks(); err == nil || !strings.Contains(err.Error(), "expected 3 payload bytes") {
		t.Errorf("err = %v, want length mismatch", err)
	}
}
