package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bwprot/bwprotanalyzer/internal/protocol"
	"github.com/bwprot/bwprotanalyzer/internal/sink"
	"github.com/bwprot/bwprotanalyzer/pkg/metrics"
	"github.com/bwprot/bwprotanalyzer/pkg/progress"
)

var (
	jsonOutput    bool
	configPath    string
	encodingName  string
	logLevel      string
	noColor       bool
	skipMalformed bool
	flushTrailing bool

	outputPath   string
	outputFormat string
	metricsFile  string
	showProgress bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bwprotanalyzer [flags] <input>",
		Short: "Analyze a BWPROT20.DAT audit protocol",
		Long: `bwprotanalyzer reads a BWPROT20.DAT protocol file, reconstructs the
recorded changes and prints them as a readable log.

Attribute lines only carry new values; the previous value of each field is
tracked across the file, so changes are shown as "old -> new". Fields seen
for the first time show "unbekannt" as previous value.

The last block of a file is only emitted once a following header line
exists. Use --flush-trailing to emit it anyway.

Examples:
  bwprotanalyzer BWPROT20.DAT
  bwprotanalyzer --output protokoll.log BWPROT20.DAT
  bwprotanalyzer --format jsonl BWPROT20.DAT | jq .
  bwprotanalyzer stats BWPROT20.DAT`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAnalyze,
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "output in JSON format (stats, types, config)")
	pf.StringVar(&configPath, "config", "", "configuration file (default $"+configEnv+")")
	pf.StringVar(&encodingName, "encoding", "", "code page of the protocol file (default cp1252)")
	pf.StringVar(&logLevel, "log-level", "", "diagnostics level: debug, info, warn, error")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&skipMalformed, "skip-malformed", false, "log and skip malformed blocks instead of aborting")
	pf.BoolVar(&flushTrailing, "flush-trailing", false, "emit the last block even if no header follows it")

	f := cmd.Flags()
	f.StringVarP(&outputPath, "output", "o", "", "write the log to this file instead of stdout")
	f.StringVar(&outputFormat, "format", "", "output format: text or jsonl")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	f.BoolVar(&showProgress, "progress", false, "show a running event count on stderr (with --output only)")

	cmd.AddCommand(newStatsCmd(), newTypesCmd(), newConfigCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmtErr("%v", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	rend, err := s.renderer(outputPath == "")
	if err != nil {
		return err
	}
	out, err := sink.Create(outputPath, s.format, s.encoding, rend)
	if err != nil {
		return err
	}
	defer out.Close()

	counter := progress.NewCounter("Analyzing", showProgress && outputPath != "")
	counter.SetOutput(cmd.ErrOrStderr())

	reg := metrics.NewRegistry()
	start := time.Now()
	for r.Next() {
		ev := r.Event()
		reg.RecordEvent(ev)
		if err := out.Write(ev); err != nil {
			return err
		}
		counter.Increment()
	}
	counter.Done("")

	stats := r.Stats()
	written := out.Stats()
	reg.RecordPass(time.Since(start), stats.Skipped, written.Dropped, stats.DroppedTrailing)
	if s.metricsFile != "" {
		if err := reg.WriteTextfile(s.metricsFile); err != nil {
			log.ErrorErr("write metrics", err, map[string]any{"path": s.metricsFile})
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	log.Info("analysis finished", map[string]any{
		"events":           stats.Events,
		"written":          written.Written,
		"dropped":          written.Dropped,
		"skipped_blocks":   stats.Skipped,
		"dropped_trailing": stats.DroppedTrailing,
	})
	return out.Close()
}

// outputJSON prints v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errPrefix()+format+"\n", args...)
}
