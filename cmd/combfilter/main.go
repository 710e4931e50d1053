// Command combfilter applies FIR and IIR comb filters to audio.
//
// Usage:
//
//	combfilter process -- input.wav output.wav fir -1 0.001
//	combfilter process --type iir --gain 0.7 --delay 0.03 input.wav output.wav
//	combfilter response --type fir --gain -1 --delay 0.001 --rate 48000
//	combfilter live --type iir --gain 0.5 --delay 0.05
//
// Settings may also come from a YAML file (--config) or from COMBFILTER_*
// environment variables, e.g. COMBFILTER_FILTER_GAIN=0.5.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	cmd := newRootCommand(viper.New())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
