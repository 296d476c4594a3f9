package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/telcoscope/internal/model"
)

const redacted = "********"

const configHeader = `# telcoscope configuration
#
# Precedence: flags > TELCOSCOPE_* environment > this file > defaults.
# Nested keys map to env vars with "_" for ".", e.g. TELCOSCOPE_LLM_PROVIDER=anthropic.

`

const configFooter = `
# Provider credentials are best kept out of this file:
#   OPENAI_API_KEY  OPENAI_BASE_URL  ANTHROPIC_API_KEY  OLLAMA_BASE_URL
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "# loaded from %s\n", used)
		} else {
			fmt.Fprintln(os.Stderr, "# no config file found, showing defaults merged with environment")
		}

		data, err := redactedYAML(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration (default ~/.telcoscope/config.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := defaultConfigPath()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			path = args[0]
		}

		if err := writeDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ wrote %s\n  review it with: telcoscope config show\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".telcoscope", "config.yaml"), nil
}

// redactedYAML renders cfg with secrets masked
func redactedYAML(cfg *model.Config) ([]byte, error) {
	shown := *cfg
	for _, secret := range []*string{&shown.LLM.APIKey, &shown.Cache.RedisPassword} {
		if *secret != "" {
			*secret = redacted
		}
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// writeDefaultConfig writes the commented defaults to path and never overwrites an existing file
func writeDefaultConfig(path string) error {
	body, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.Write(body)
	buf.WriteString(configFooter)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists; remove it first to regenerate", path)
	}
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}
