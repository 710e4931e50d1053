package combfilter

// Parameter limits
const (
	// DefaultMaxDelaySeconds is the longest delay supported by InitDefault.
	DefaultMaxDelaySeconds = 10.0

	minGain = -1.0
	maxGain = 1.0

	minDelaySeconds = 0.0
)

// Delay line sizing
const (
	// maxDelayLineSamples caps the delay line allocation (about 6 hours at 96 kHz).
	maxDelayLineSamples = 1 << 31

	// delayLineGuardSamples is added to the rounded maximum delay so that the
	// maximum itself is a distinct cursor distance.
	delayLineGuardSamples = 1
)

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// DefaultBlockSize is the block length used by the offline file processor.
const DefaultBlockSize = 1023
