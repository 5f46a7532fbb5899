package granular

import "fmt"

// Mode selects how grains are played back.
//
// Parameters only ever carry ModeGranular, ModeReverse and ModeShimmer; the
// spectral and Karplus-Strong variants are reachable by driving an [Engine]
// directly.
type Mode int

const (
	ModeGranular Mode = iota
	ModeReverse
	ModeShimmer
	ModeSpectral
	ModeKarplusStrong
)

var modeNames = [...]string{
	ModeGranular:      "granular",
	ModeReverse:       "reverse",
	ModeShimmer:       "shimmer",
	ModeSpectral:      "spectral",
	ModeKarplusStrong: "karplus-strong",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= ModeGranular && m <= ModeKarplusStrong
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("granular: invalid mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if name == string(text) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("granular: unknown mode %q", text)
}

// playback returns the grain direction and the pitch multiplier applied on
// top of the caller's pitch ratio.
func (m Mode) playback(pitchRatio float64) (reverse bool, multiplier float64) {
	switch m {
	case ModeGranular:
		return false, 1
	case ModeReverse:
		return true, 1
	case ModeShimmer:
		return false, 2
	case ModeSpectral:
		return false, 0.5
	case ModeKarplusStrong:
		return false, 1 + pitchRatio*0.5
	default:
		return false, 1
	}
}
