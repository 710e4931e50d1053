package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/analysis"
)

const (
	keyResponseRate   = "response.rate"
	keyResponseLength = "response.length"
	keyResponsePoints = "response.points"

	defaultResponseLength = 8192
	defaultResponsePoints = 16
)

func newResponseCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "response",
		Short: "Print the magnitude response of a comb filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadFilterSettings(v)
			if err != nil {
				return err
			}
			points := v.GetInt(keyResponsePoints)
			if points < 1 {
				return fmt.Errorf("%w: points must be positive", combfilter.ErrInvalidArgument)
			}

			s := analysis.Settings{
				FilterType:   settings.Type,
				SampleRate:   v.GetFloat64(keyResponseRate),
				Gain:         settings.Gain,
				DelaySeconds: settings.DelaySeconds,
			}
			logger := newLogger(cmd.ErrOrStderr(), v.GetBool(keyVerbose))
			logger.Debug("measuring response", "filter", settings, "rate", s.SampleRate)

			r, err := analysis.Measure(s, v.GetInt(keyResponseLength))
			if err != nil {
				return err
			}
			printResponse(cmd.OutOrStdout(), s, r, points)
			return nil
		},
	}

	cmd.Flags().Float64("rate", combfilter.RateDAT, "Sample rate in Hz")
	cmd.Flags().Int("length", defaultResponseLength, "Impulse response length in samples (FFT size)")
	cmd.Flags().Int("points", defaultResponsePoints, "Number of frequencies to print")
	bindFlags(v, cmd, map[string]string{
		keyResponseRate:   "rate",
		keyResponseLength: "length",
		keyResponsePoints: "points",
	})

	return cmd
}

func printResponse(w io.Writer, s analysis.Settings, r analysis.Response, points int) {
	db := r.MagnitudeDB()

	_, _ = fmt.Fprintf(w, "%s comb, gain %.3f, delay %.4fs at %.0f Hz\n",
		s.FilterType, s.Gain, s.DelaySeconds, s.SampleRate)
	_, _ = fmt.Fprintf(w, "%12s %12s %12s\n", "freq (Hz)", "gain (dB)", "ideal (dB)")

	step := max(len(r.Frequencies)/points, 1)
	for i := 0; i < len(r.Frequencies); i += step {
		ideal := analysis.Theoretical(s, r.Frequencies[i])
		_, _ = fmt.Fprintf(w, "%12.1f %12.2f %12.2f\n", r.Frequencies[i], db[i], analysis.ToDB(ideal))
	}

	peakFreq, peakMag := r.Peak()
	notchFreq, notchMag := r.Notch()
	_, _ = fmt.Fprintf(w, "Peak:  %.2f dB at %.1f Hz\n", analysis.ToDB(peakMag), peakFreq)
	_, _ = fmt.Fprintf(w, "Notch: %.2f dB at %.1f Hz\n", analysis.ToDB(notchMag), notchFreq)
}
