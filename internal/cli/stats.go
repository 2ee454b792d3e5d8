package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bwprot/bwprotanalyzer/internal/protocol"
	"github.com/bwprot/bwprotanalyzer/pkg/color"
	"github.com/bwprot/bwprotanalyzer/pkg/metrics"
)

type statsResult struct {
	Input  string          `json:"input"`
	Lines  int             `json:"lines"`
	Fields int             `json:"tracked_fields"`
	Stats  metrics.Summary `json:"summary"`
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <input>",
		Short: "Count the events of a protocol file",
		Long: `Parse a protocol file and print event counts per record type and
status, together with the number of events the log output would drop.`,
		Args: cobra.ExactArgs(1),
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := s.logger.WithFields(map[string]any{"input": args[0]})

	r, err := protocol.Open(args[0], s.readerOptions(log))
	if err != nil {
		return err
	}
	defer r.Close()

	rend, err := s.renderer(false)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	start := time.Now()
	dropped := 0
	for r.Next() {
		ev := r.Event()
		reg.RecordEvent(ev)
		if _, ok := rend.Render(ev); !ok {
			dropped++
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	ps := r.Stats()
	reg.RecordPass(time.Since(start), ps.Skipped, dropped, ps.DroppedTrailing)

	summary, err := reg.Summary()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	result := statsResult{Input: args[0], Lines: ps.Lines, Fields: ps.TrackedFields, Stats: summary}
	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Println(color.Header("Protocol: ") + result.Input)
	fmt.Printf("Lines:          %d\n", result.Lines)
	fmt.Printf("Events:         %d\n", summary.Events)
	fmt.Printf("Tracked fields: %d\n", result.Fields)
	fmt.Printf("Field changes:  %d (%d unchanged)\n", summary.FieldChanges, summary.SuppressedChanges)
	fmt.Printf("Dropped:        %d\n", summary.DroppedEvents)
	fmt.Printf("Skipped blocks: %d\n", summary.SkippedBlocks)
	if summary.DroppedTrailing {
		fmt.Println(color.Highlight("Last block not emitted (no following header)"))
	}

	if len(summary.ByStatus) > 0 {
		fmt.Println()
		fmt.Println(color.Header("By status:"))
		for _, c := range summary.ByStatus {
			fmt.Printf("  %-12s %d\n", c.Status, c.Events)
		}
	}
	if len(summary.ByType) > 0 {
		fmt.Println()
		fmt.Println(color.Header("By record type:"))
		for _, c := range summary.ByType {
			fmt.Printf("  %-4s %-12s %d\n", c.RecordType, c.Status, c.Events)
		}
	}
	return nil
}
