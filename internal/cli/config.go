package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicecorpus/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-voicecorpus/config.yaml.
Every key can also be set through an environment variable named
VOICECORPUS_<KEY>, e.g. VOICECORPUS_MIN_DURATION. Command-line flags
override both.

Supported settings:
  work-dir        Directory for the downloaded source audio
  qualified-dir   Directory for length-qualified clips
  filtered-dir    Directory for single-speaker clips
  prefix          File name prefix of exported clips
  min-duration    Shortest clip to keep (e.g. 6s)
  max-duration    Longest clip (e.g. 18s)
  silence-gap     Minimum pause between segments (e.g. 500ms)
  silence-thresh  Silence level in dBFS (e.g. -40)
  keep-silence    Silence kept around each segment (e.g. 100ms)
  diarizer        pyannote or openai
  diarizer-url    Base URL of the pyannote service
  vad             silero, energy or openai
  vad-model       Path to the Silero ONNX model`,
		Example: `  voicecorpus config set qualified-dir ~/corpus/qualified
  voicecorpus config get min-duration
  voicecorpus config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated before saving. Directories are created if they don't exist.`,
		Example: `  voicecorpus config set filtered-dir ~/corpus/single-speaker
  voicecorpus config set silence-thresh -35`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  voicecorpus config get qualified-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  voicecorpus config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.Validate(key, value); err != nil {
		return err
	}

	if config.IsDirKey(key) {
		// Store the expanded path for consistency.
		value = config.ExpandPath(value)
		if err := config.EnsureOutputDir(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvName(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys() {
		value, ok := data[key]
		if !ok || value == "" {
			envVal := env.Getenv(config.EnvName(key))
			if envVal == "" {
				continue
			}
			value = envVal + " (from env)"
		}
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}
