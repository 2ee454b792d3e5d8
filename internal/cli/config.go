package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bwprot/bwprotanalyzer/pkg/color"
	"github.com/bwprot/bwprotanalyzer/pkg/config"
)

var forceInit bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
		Long: `Show the effective configuration or write a default configuration file.

Configuration is read from --config or $` + configEnv + `. Environment
variables (BWPROT_ENCODING, BWPROT_TIMEZONE, BWPROT_OUTPUT_FORMAT,
BWPROT_SKIP_MALFORMED, BWPROT_LOG_LEVEL, BWPROT_LOG_FORMAT) override the file,
flags override both.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(s.cfg)
			}
			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !forceInit {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", color.Success("Wrote"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
