package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwprot/bwprotanalyzer/internal/render"
	"github.com/bwprot/bwprotanalyzer/pkg/color"
)

type typeEntry struct {
	Code string `json:"code"`
	render.Template
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the record types with a dedicated message",
		Long: `List the record-type codes that are rendered with a dedicated
message, including overrides from the configuration file. Other record
types fall back to a message chosen by the event status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			rend, err := s.renderer(false)
			if err != nil {
				return err
			}

			entries := make([]typeEntry, 0, len(rend.Types()))
			for _, code := range rend.Types() {
				t, _ := rend.Template(code)
				entries = append(entries, typeEntry{Code: code, Template: t})
			}
			if jsonOutput {
				return outputJSON(entries)
			}
			for _, e := range entries {
				fmt.Printf("%s  %-8s %s\n", color.Header(e.Code), e.Keyword, e.Message)
			}
			return nil
		},
	}
}
