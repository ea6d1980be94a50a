// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package harness_cli implements the harness command line: the HTTP service
// and one-shot tap, scan and average runs.
package harness_cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/connectors"
	"github.com/rapidaai/harness/pkg/utils"
)

const usage = `usage: harness <command> [flags]

commands:
  serve     run the HTTP analysis service
  tap       measure tap-to-tone latency from a WAV capture or a synthetic one
  scan      search for DSP position errors against the simulated engine
  average   average round-trip latency against the simulated engine
`

type command struct {
	name string
	run  func(ctx context.Context, h *harness, args []string) error
}

var commands = []command{
	{name: "serve", run: runServe},
	{name: "tap", run: runTap},
	{name: "scan", run: runScan},
	{name: "average", run: runAverage},
}

// harness carries what every command needs.
type harness struct {
	cfg    *config.AppConfig
	logger commons.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run executes args (without the program name) and returns the exit code.
func Run(ctx context.Context, cfg *config.AppConfig, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		h := &harness{cfg: cfg, stdout: stdout, stderr: stderr}
		if err := cmd.run(ctx, h, args[1:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 2
			}
			fmt.Fprintf(stderr, "harness %s: %v\n", cmd.name, err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(stderr, "harness: unknown command %q\n\n%s", args[0], usage)
	return 2
}

func (h *harness) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("harness "+name, flag.ContinueOnError)
	fs.SetOutput(h.stderr)
	return fs
}

// initLogger logs to cfg.LogPath and, when verbose, to stderr. With neither
// the one-shot commands stay quiet.
func (h *harness) initLogger(verbose bool) error {
	if h.cfg.LogPath == "" && !verbose {
		h.logger = commons.NewNopLogger()
		return nil
	}
	logger, err := commons.NewApplicationLogger(
		commons.Name(h.cfg.Name),
		commons.Path(h.cfg.LogPath),
		commons.Level(h.cfg.LogLevel),
		commons.Console(verbose),
		commons.Production(utils.FromEnvironmentStr(h.cfg.Environment) == utils.PRODUCTION),
	)
	if err != nil {
		return err
	}
	h.logger = logger
	return nil
}

// openStore connects the report archive when it is enabled. The returned
// close function is never nil.
func (h *harness) openStore(ctx context.Context) (connectors.SqliteConnector, internal_report.Store, func(), error) {
	if !h.cfg.Report.Enabled {
		return nil, nil, func() {}, nil
	}
	if utils.IsEmpty(h.cfg.Report.Path) {
		return nil, nil, func() {}, errors.New("report archive enabled without a path")
	}
	sqlite := connectors.NewSqliteConnector(h.cfg.Report.Path, h.logger)
	if err := sqlite.Connect(ctx); err != nil {
		return nil, nil, func() {}, err
	}
	closeStore := func() {
		if err := sqlite.Disconnect(context.Background()); err != nil {
			h.logger.Warn("unable to close report archive", "error", err)
		}
	}
	store := internal_report.NewStore(sqlite, h.logger)
	if err := store.Migrate(ctx); err != nil {
		closeStore()
		return nil, nil, func() {}, err
	}
	return sqlite, store, closeStore, nil
}

// archive saves text when the archive is enabled and prints its id.
func (h *harness) archive(ctx context.Context, store internal_report.Store, kind, direction, status, text string, payload any) error {
	if store == nil {
		return nil
	}
	report, err := internal_report.NewReport(kind, direction, status, text, payload)
	if err != nil {
		return err
	}
	id, err := store.Save(ctx, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.stdout, "report.id = %s\n", id)
	return nil
}

// print frames a report with a title on a terminal; piped output gets the
// bare key = value lines.
func (h *harness) print(title, text string) {
	if !isTerminal(h.stdout) {
		fmt.Fprint(h.stdout, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(h.stdout)
		}
		return
	}
	rule := strings.Repeat("=", 8)
	fmt.Fprintf(h.stdout, "%s %s %s\n", rule, title, rule)
	fmt.Fprint(h.stdout, strings.TrimRight(text, "\n"))
	fmt.Fprintf(h.stdout, "\n%s\n", strings.Repeat("=", len(title)+2*len(rule)+2))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
