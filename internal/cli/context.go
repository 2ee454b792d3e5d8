package cli

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"

	"github.com/bwprot/bwprotanalyzer/internal/codepage"
	"github.com/bwprot/bwprotanalyzer/internal/protocol"
	"github.com/bwprot/bwprotanalyzer/internal/render"
	"github.com/bwprot/bwprotanalyzer/internal/sink"
	"github.com/bwprot/bwprotanalyzer/pkg/color"
	"github.com/bwprot/bwprotanalyzer/pkg/config"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/logging"
)

const configEnv = config.EnvPath

// settings is the effective configuration of one command run: file and
// environment values with explicitly set flags on top.
type settings struct {
	cfg         *config.Config
	encoding    encoding.Encoding
	location    *time.Location
	format      sink.Format
	metricsFile string
	logger      *logging.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	color.Init(noColor)
	if noColor {
		color.Disable()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg, metricsFile: cfg.MetricsFile}
	if s.encoding, err = codepage.Lookup(cfg.Encoding); err != nil {
		return nil, err
	}
	if s.location, err = cfg.Location(); err != nil {
		return nil, err
	}
	if s.format, err = sink.ParseFormat(cfg.OutputFormat); err != nil {
		return nil, errclass.ErrConfigInvalid.WithMessage(err.Error())
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, errclass.ErrConfigInvalid.WithMessage(err.Error())
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, errclass.ErrConfigInvalid.WithMessage(err.Error())
	}
	logger := logging.NewLogger(level)
	logger.SetFormat(format)
	logger.SetOutput(cmd.ErrOrStderr())
	s.logger = logger.WithFields(map[string]any{"run_id": uuid.NewString()})
	logging.SetGlobal(s.logger)
	return s, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Encoding = encodingName
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("skip-malformed") {
		cfg.SkipMalformed = skipMalformed
	}
	if flags.Changed("flush-trailing") {
		cfg.FlushTrailingBlock = flushTrailing
	}
	if flags.Changed("format") {
		cfg.OutputFormat = outputFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
}

func (s *settings) readerOptions(log *logging.Logger) protocol.Options {
	return protocol.Options{
		Encoding:      s.encoding,
		Location:      s.location,
		FlushTrailing: s.cfg.FlushTrailingBlock,
		SkipMalformed: s.cfg.SkipMalformed,
		Logger:        log,
	}
}

// renderer builds the renderer with configured template overrides. Keywords
// are colored only when writing to a terminal.
func (s *settings) renderer(toStdout bool) (*render.Renderer, error) {
	overrides := make(map[string]render.Template, len(s.cfg.Templates))
	for code, t := range s.cfg.Templates {
		overrides[code] = render.Template{Keyword: t.Keyword, Message: t.Message}
	}
	return render.New(render.Options{
		Overrides: overrides,
		Colorize:  toStdout && color.Enabled() && color.IsTerminal(os.Stdout),
	})
}

func errPrefix() string {
	if color.Enabled() {
		return color.Error("bwprotanalyzer:") + " "
	}
	return "bwprotanalyzer: "
}
