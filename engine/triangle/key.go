package triangle

import (
	"fmt"
	"strings"
)

// PipelineKey selects a variant of the triangle pipeline. The low bits hold feature flags
// and the top msaaWidth bits hold the multisample sample count minus one. The two ranges
// never overlap, so flags and a sample count merge with a plain OR.
type PipelineKey uint32

const (
	// KeyNone selects the default variant.
	KeyNone PipelineKey = 0

	// KeyColored enables per-vertex color.
	KeyColored PipelineKey = 1 << 0
)

const (
	msaaWidth     = 6
	msaaMaskBits  = 1<<msaaWidth - 1
	msaaShiftBits = 32 - msaaWidth

	// KeyMSAAReservedBits covers the bits holding the sample count.
	KeyMSAAReservedBits PipelineKey = msaaMaskBits << msaaShiftBits

	// MinSampleCount and MaxSampleCount bound the sample counts a key can hold.
	MinSampleCount = 1
	MaxSampleCount = msaaMaskBits + 1
)

// KeyFromSampleCount encodes a multisample sample count. Counts outside
// [MinSampleCount, MaxSampleCount] are clamped to the nearest bound.
//
// Parameters:
//   - samples: the sample count
//
// Returns:
//   - PipelineKey: a key with only the sample count set
func KeyFromSampleCount(samples uint32) PipelineKey {
	samples = min(max(samples, MinSampleCount), MaxSampleCount)
	return PipelineKey(((samples - 1) & msaaMaskBits) << msaaShiftBits)
}

// SampleCount decodes the multisample sample count.
func (k PipelineKey) SampleCount() uint32 {
	return (uint32(k)>>msaaShiftBits)&msaaMaskBits + 1
}

// Contains reports whether every bit of flag is set in k.
func (k PipelineKey) Contains(flag PipelineKey) bool {
	return k&flag == flag
}

// Flags returns k with the sample count bits cleared.
func (k PipelineKey) Flags() PipelineKey {
	return k &^ KeyMSAAReservedBits
}

func (k PipelineKey) String() string {
	parts := []string{fmt.Sprintf("msaa=%d", k.SampleCount())}
	if k.Contains(KeyColored) {
		parts = append(parts, "colored")
	}
	return strings.Join(parts, "|")
}
