package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/tomasbasham/formjson/internal/config"
	"github.com/tomasbasham/formjson/internal/errors"
)

// Version information
const Version = "0.1.0"

// Globals are flags shared by every command
type Globals struct {
	Config  string           `help:"Path to a YAML config file. Defaults to the nearest .formjson.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Encode EncodeCmd `cmd:"" default:"withargs" help:"Encode form data as nested JSON."`
	Serve  ServeCmd  `cmd:"" help:"Serve an endpoint that echoes form posts as nested JSON."`
}

// App holds what commands need at run time
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args and executes the selected command, returning the process
// exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exited := -1
	parser, err := kong.New(&cli,
		kong.Name("formjson"),
		kong.Description("Encode HTML form submissions as nested JSON."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	ctx, err := parser.Parse(args)
	if exited >= 0 {
		// --help or --version
		return exited
	}
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	cfg, err := loadConfig(cli.Globals)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	app := &App{
		Config: cfg,
		Logger: newLogger(stderr, cfg, cli.Debug),
		Stdin:  stdin,
		Stdout: stdout,
	}
	if err := ctx.Run(app); err != nil {
		app.Logger.Debug("command failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: formjson --help\n")
		return 1
	}
	return 0
}

func loadConfig(g Globals) (*config.Config, error) {
	path := g.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return config.NewConfig(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), errors.ErrBadConfig)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config, debug bool) *slog.Logger {
	level, _ := cfg.LogLevel()
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
