// Package quant classifies quantization configurations and validates
// group-size compatibility against weight tensor shapes.
package quant

// Mode is the closed set of recognized quantization schemes. Anything not
// listed here resolves to ModeAffine.
type Mode int

const (
	ModeAffine Mode = iota
	ModeMXFP4
	ModeMXFP8
	ModeNVFP4
)

func (m Mode) String() string {
	switch m {
	case ModeMXFP4:
		return "mxfp4"
	case ModeMXFP8:
		return "mxfp8"
	case ModeNVFP4:
		return "nvfp4"
	default:
		return "affine"
	}
}

// ParseMode maps a metadata mode tag to a Mode. Absent or unrecognized tags
// mean an affine scale/zero-point scheme.
func ParseMode(tag string) Mode {
	switch tag {
	case "mxfp4":
		return ModeMXFP4
	case "mxfp8":
		return ModeMXFP8
	case "nvfp4":
		return ModeNVFP4
	default:
		return ModeAffine
	}
}

// Config is the quantization configuration read from model metadata.
// It is read-only after loading.
type Config struct {
	// GroupSize is the number of contiguous weight elements sharing one scale.
	GroupSize int `json:"group_size"`
	// Bits is the quantization bit width.
	Bits int `json:"bits"`
	// Mode is the raw mode tag; empty means affine.
	Mode string `json:"mode,omitempty"`
}

// ResolvedMode returns the closed-enum mode for the config's tag.
func (c Config) ResolvedMode() Mode { return ParseMode(c.Mode) }

// NonAffine reports whether the config uses one of the block-scaled
// floating-point schemes rather than the default affine scheme.
func (c Config) NonAffine() bool { return c.ResolvedMode() != ModeAffine }

// CompatibleGroupSize reports whether a weight tensor whose trailing
// dimension is lastDim can be quantized with the given group size. Only the
// trailing dimension matters; a zero or non-divisor group size is
// incompatible.
func CompatibleGroupSize(lastDim, groupSize int) bool {
	if groupSize <= 0 {
		return false
	}
	return lastDim%groupSize == 0
}
