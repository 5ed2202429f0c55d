package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/call-companion/internal/config"
	"github.com/nguyentantai21042004/call-companion/internal/credentials"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the Gemini API key in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readKey(cmd)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("empty API key")
		}

		if err := credentials.Store(keyringLookup(cfgFile), key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key stored in the system keyring.")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
}

// readKey prompts without echo on a terminal and reads one line otherwise.
func readKey(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.OutOrStdout(), "Gemini API key: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func lookupFor(cfg *config.Config) credentials.Lookup {
	return lookupFromInsight(cfg.Insight)
}

// keyringLookup uses the config at path when it loads, and the insight defaults
// otherwise, so a key can be stored before the rest of the config exists.
func keyringLookup(path string) credentials.Lookup {
	if cfg, err := config.Load(path); err == nil {
		return lookupFor(cfg)
	}

	insight := config.InsightConfig{}
	if data, err := os.ReadFile(path); err == nil {
		var partial config.Config
		if yaml.Unmarshal(data, &partial) == nil {
			insight = partial.Insight
		}
	}
	insight.SetDefaults()
	return lookupFromInsight(insight)
}

func lookupFromInsight(c config.InsightConfig) credentials.Lookup {
	return credentials.Lookup{
		EnvVar:         c.APIKeyEnv,
		KeyringService: c.KeyringService,
		KeyringUser:    c.KeyringUser,
	}
}
