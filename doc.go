// Package combfilter provides feedforward (FIR) and feedback (IIR) comb
// filters for audio in pure Go.
//
// A comb filter adds a scaled, delayed copy of a signal to itself. The
// feedforward variant delays the input, the feedback variant delays its own
// output:
//
//	FIR: y[n] = x[n] + g * x[n-D]
//	IIR: y[n] = x[n] + g * y[n-D]
//
// The delay D is set in seconds and converted to samples by rounding to the
// nearest integer. The gain g is limited to [-1, 1].
//
// # Features
//
//   - Float32 and float64 processing through a single generic [Filter] type
//   - Circular delay line sized once at [Filter.Init], no allocation while processing
//   - Validated parameters with errors.Is-friendly sentinel errors
//   - Block-size invariant output: any split of a signal gives identical samples
//   - In-place processing (input and output may be the same slice)
//   - Multi-channel banks with optional parallel processing
//   - Optional SIMD helpers (AVX2/SSE/NEON) via github.com/tphakala/simd
//
// # Quick Start
//
// For one-shot filtering:
//
//	output, err := combfilter.ApplyMono(input, combfilter.FilterFIR, 44100, -1, 0.001)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming with a reusable filter:
//
//	f := combfilter.New[float32]()
//	if err := f.Init(combfilter.FilterIIR, 48000, 1.0); err != nil {
//	    log.Fatal(err)
//	}
//	_ = f.SetParam(combfilter.ParamGain, 0.7)
//	_ = f.SetParam(combfilter.ParamDelayInSec, 0.03)
//
//	for block := range blocks {
//	    if err := f.Process(block, block, len(block)); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Lifecycle
//
// A [Filter] is created uninitialized. [Filter.Init] allocates the delay line
// for a sample rate and maximum delay; [Filter.Reset] releases it and restores
// gain and delay to 0 and the type to [FilterFIR]. While uninitialized, every
// mutating call and [Filter.Process] return [ErrNotInitialized].
//
// Changing the delay while running keeps the delay line contents; only the
// write cursor moves. Switching between FIR and IIR with
// [Filter.SetFilterType] clears the delay line but keeps gain and delay.
//
// # Errors
//
// All failures wrap one of [ErrNotInitialized], [ErrInvalidArgument] or
// [ErrMemory]. [Code] maps an error to an [ErrorCode] for callers that need a
// status value, such as plugin hosts.
//
// # Thread Safety
//
// A [Filter] must not be used from several goroutines at once. A
// [MultiChannel] bank owns one filter per channel and may process channels
// concurrently when [Config.EnableParallel] is set.
package combfilter
