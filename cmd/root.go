package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CSVFEED"

var rootCmd = NewRootCommand(os.Stdout, os.Stderr)

// NewRootCommand builds a fresh csvfeed command tree writing to stdout and
// stderr. Execute runs the process-wide rootCmd; tests build their own.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "csvfeed",
		Short: "Feed comma-separated line files through pluggable consumers",
		Long: `csvfeed reads a line-oriented text resource, skips blank lines and
lines starting with '#', splits the rest on commas and hands each line
to a consumer (tally, records, sqlite, bitmap or bucket).

Flags may also be set through CSVFEED_* environment variables or a TOML
file given with --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newIngestCommand(stdout, stderr))
	rc.AddCommand(newInspectCommand(stdout, stderr))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig applies configuration to every flag in flags, in priority
// order: command line, then CSVFEED_<FLAG> environment variables, then the
// TOML file named by --config. Keys in the file that match no flag are an
// error.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		valid := make(map[string]bool)
		flags.VisitAll(func(f *pflag.Flag) {
			valid[f.Name] = true
		})
		for _, key := range v.AllKeys() {
			if !valid[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil {
			flagErr = fmt.Errorf("setting %s from configuration: %w", f.Name, err)
		}
	})
	return flagErr
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
