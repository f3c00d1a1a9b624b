package midi

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: every byte with the 0xF high nibble classifies as a system
// message, never as a channel voice kind, even though those codes sit right
// next to the channel voice range.
func TestSystemPrecedenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("0xF0-0xFF always classify as system", prop.ForAll(
		func(low int) bool {
			status := uint8(0xF0 | low)
			return Classify(status) == KindSystem
		},
		gen.IntRange(0x0, 0xF),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(status int) bool {
			b := uint8(status)
			return Classify(b) == Classify(b)
		},
		gen.IntRange(0x00, 0xFF),
	))

	properties.TestingRun(t)
}

// Property: notes an octave apart share the pitch class and differ in the
// trailing octave number by exactly one.
func TestNoteNameOctaveProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("n and n+12 share pitch class, octaves differ by 1", prop.ForAll(
		func(n int) bool {
			lo, err := NoteName(uint8(n))
			if err != nil {
				return false
			}
			hi, err := NoteName(uint8(n + 12))
			if err != nil {
				return false
			}
			loClass := strings.TrimRight(lo, "-0123456789")
			hiClass := strings.TrimRight(hi, "-0123456789")
			if loClass != hiClass {
				return false
			}
			return octaveOf(hi) == octaveOf(lo)+1
		},
		gen.IntRange(0, 115),
	))

	properties.Property("every valid note has a name", prop.ForAll(
		func(n int) bool {
			name, err := NoteName(uint8(n))
			return err == nil && name != ""
		},
		gen.IntRange(0, 127),
	))

	properties.TestingRun(t)
}

func octaveOf(name string) int {
	class := strings.TrimRight(name, "-0123456789")
	oct := name[len(class):]
	n := 0
	neg := false
	for _, r := range oct {
		if r == '-' {
			neg = true
			continue
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}

// Property: FixedLength is pure and its two cases never blur. A kind either
// always reports the same length or always reports variable.
func TestFixedLengthPurityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("length result is stable per kind", prop.ForAll(
		func(status int) bool {
			k := Classify(uint8(status))
			n1, ok1 := k.FixedLength()
			n2, ok2 := k.FixedLength()
			return n1 == n2 && ok1 == ok2
		},
		gen.IntRange(0x00, 0xFF),
	))

	properties.Property("strip then classify matches direct classification", prop.ForAll(
		func(status int) bool {
			b := uint8(status)
			if b&0xF0 == 0xF0 {
				// stripping is only meaningful for channel voice bytes
				return true
			}
			return Classify(StripChannel(b)) == Classify(b)
		},
		gen.IntRange(0x00, 0xFF),
	))

	properties.TestingRun(t)
}
