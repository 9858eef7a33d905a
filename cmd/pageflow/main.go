package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pageflow/pkg/config"
)

const appName = "pageflow"

// setup loads configuration and the logger once flags are parsed.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := envFromContext(ctx)

	cfg, err := config.LoadConfiguration(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Layout.Diagnostics = true
		cfg.Logging.ConsoleLogger.Level = "debug"
	}
	log, err := cfg.Logging.Prepare()
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.Cfg, env.Log = cfg, log
	env.redirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("config", cmd.String("config")),
		zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func teardown(ctx context.Context, _ *cli.Command) error {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()))
	env.restoreLog()
	return nil
}

// errLogged is set when the failure already reached the log, so main does
// not print it a second time.
var errLogged bool

func logExitError(ctx context.Context, _ *cli.Command, err error) {
	if env := envFromContext(ctx); env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errLogged = true
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "lays out styled document trees and cuts them into pages",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Writer:          out,
		Before:          setup,
		After:           teardown,
		ExitErrHandler:  logExitError,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable layout diagnostics and debug logging"},
		},
		Commands: subcommands(),
	}
}

func subcommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "layout",
			Usage:     "Lays out a styled tree and prints the fragment tree",
			ArgsUsage: "SOURCE",
			Action:    runLayout,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "records", Aliases: []string{"r"}, Usage: "print diagnostics records (needs diagnostics enabled)"},
			},
		},
		{
			Name:      "paginate",
			Usage:     "Lays out a styled tree, cuts it into pages and prints the pages",
			ArgsUsage: "SOURCE",
			Action:    runPaginate,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "png", Usage: "also render every page as PNG into `DIR`"},
			},
		},
		{
			Name:      "render",
			Usage:     "Renders every page of a styled tree as PNG",
			ArgsUsage: "SOURCE DESTINATION",
			Action:    runRender,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "compare", Usage: "compare pages with the PNGs in DESTINATION instead of writing them"},
				&cli.IntFlag{Name: "tolerance", Value: 2, Usage: "largest per channel difference still considered equal"},
				&cli.StringFlag{Name: "diff", Usage: "write images of differing pages into `DIR`"},
			},
		},
		{
			Name:        "config",
			Usage:       "Dumps either default or actual configuration (YAML)",
			Description: "Writes to DESTINATION when given, to STDOUT otherwise.",
			ArgsUsage:   "[DESTINATION]",
			Action:      outputConfiguration,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout).Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errLogged {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
