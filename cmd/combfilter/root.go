package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	combfilter "github.com/tphakala/go-audio-combfilter"
)

const (
	envPrefix = "COMBFILTER"

	keyConfig   = "config"
	keyVerbose  = "verbose"
	keyType     = "filter.type"
	keyGain     = "filter.gain"
	keyDelay    = "filter.delay"
	keyMaxDelay = "filter.max_delay"
)

// newRootCommand builds the command tree. All settings resolve through v, so
// flags, environment variables and the config file share one namespace.
func newRootCommand(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "combfilter",
		Short:         "FIR and IIR comb filter for audio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("type", "fir", "Filter type: fir or iir")
	rootCmd.PersistentFlags().Float64("gain", 0, "Gain applied to the delayed signal, in [-1, 1]")
	rootCmd.PersistentFlags().Float64("delay", 0, "Delay in seconds")
	rootCmd.PersistentFlags().Float64("max-delay", combfilter.DefaultMaxDelaySeconds, "Maximum delay in seconds (sizes the delay line)")

	bindFlags(v, rootCmd, map[string]string{
		keyConfig:   "config",
		keyVerbose:  "verbose",
		keyType:     "type",
		keyGain:     "gain",
		keyDelay:    "delay",
		keyMaxDelay: "max-delay",
	})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfigFile(v)
	}

	rootCmd.AddCommand(
		newProcessCommand(v),
		newResponseCommand(v),
		newLiveCommand(v),
	)

	return rootCmd
}

// loadConfigFile reads the file named by the config setting, if any.
func loadConfigFile(v *viper.Viper) error {
	path := v.GetString(keyConfig)
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// newLogger returns a text logger writing to w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// filterSettings is the resolved filter configuration shared by subcommands.
type filterSettings struct {
	Type         combfilter.FilterType
	Gain         float64
	DelaySeconds float64
	MaxDelay     float64
}

// loadFilterSettings reads and validates the filter settings from v.
func loadFilterSettings(v *viper.Viper) (filterSettings, error) {
	ft, err := combfilter.ParseFilterType(v.GetString(keyType))
	if err != nil {
		return filterSettings{}, err
	}

	s := filterSettings{
		Type:         ft,
		Gain:         v.GetFloat64(keyGain),
		DelaySeconds: v.GetFloat64(keyDelay),
		MaxDelay:     v.GetFloat64(keyMaxDelay),
	}
	if s.MaxDelay == 0 {
		s.MaxDelay = combfilter.DefaultMaxDelaySeconds
	}

	if err := s.config(1, 1).Validate(); err != nil {
		return filterSettings{}, err
	}
	return s, nil
}

// config converts the settings into a multi-channel configuration.
func (s filterSettings) config(sampleRate float64, channels int) *combfilter.Config {
	return &combfilter.Config{
		SampleRate:      sampleRate,
		Channels:        channels,
		FilterType:      s.Type,
		Gain:            s.Gain,
		DelaySeconds:    s.DelaySeconds,
		MaxDelaySeconds: s.MaxDelay,
	}
}

// LogValue implements slog.LogValuer.
func (s filterSettings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", s.Type.String()),
		slog.Float64("gain", s.Gain),
		slog.Float64("delay", s.DelaySeconds),
		slog.Float64("max_delay", s.MaxDelay),
	)
}

// bindFlags binds viper keys to the named local or persistent flags of cmd.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(name)
		}
		if f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
