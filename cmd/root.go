// Package cmd wires up the CLI flags and dispatches to the service, the
// command client and the bridge client.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"sysdvr/config"
	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X sysdvr/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// app is one CLI invocation.
type app struct {
	cfg    *config.Config
	logger *util.Logger
	stdout io.Writer
	tty    bool // stdout is a terminal; print for humans
}

// Execute parses args and runs the requested verb.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("sysdvr", flag.ContinueOnError)

	// ── service ──────────────────────────────────────────────────
	fs.StringVar(&cfg.SocketDir, "socket-dir", cfg.SocketDir, "Service socket directory")
	fs.StringVar(&cfg.InitialMode, "mode", cfg.InitialMode, "Mode to start the service in (off, usb, rtsp, tcp)")
	noPeerCheck := fs.Bool("no-peer-check", !cfg.PeerCheck, "Admit clients of any uid")

	// ── transports ───────────────────────────────────────────────
	fs.IntVar(&cfg.VideoPort, "video-port", cfg.VideoPort, "Raw TCP video port")
	fs.IntVar(&cfg.AudioPort, "audio-port", cfg.AudioPort, "Raw TCP audio port")
	fs.IntVar(&cfg.StreamPort, "stream-port", cfg.StreamPort, "Network stream port")
	fs.BoolVar(&cfg.LocalOnly, "local-only", cfg.LocalOnly, "Bind transports to 127.0.0.1")
	blocking := fs.Bool("blocking", !cfg.NonBlocking, "Skip the explicit non-blocking step (the Go poller still runs sockets non-blocking)")

	// ── listener bootstrap ───────────────────────────────────────
	fs.StringVar(&cfg.ListenerPolicy, "listener-policy", cfg.ListenerPolicy, "On listener failure: quiet (retry) or fatal (halt)")
	fs.DurationVar(&cfg.RetryDelay, "listener-delay", cfg.RetryDelay, "Delay between listener attempts")
	fs.Float64Var(&cfg.RetryMultiplier, "listener-backoff", cfg.RetryMultiplier, "Delay multiplier per attempt (1 = constant)")
	fs.DurationVar(&cfg.RetryMaxDelay, "listener-max-delay", cfg.RetryMaxDelay, "Upper bound on the listener delay")
	fs.IntVar(&cfg.RetryMax, "listener-max-attempts", cfg.RetryMax, "Give up after this many attempts (0 = never)")

	// ── client ───────────────────────────────────────────────────
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Connection and request timeout")
	fs.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "bridge: write streams to files in this directory")
	fs.BoolVar(&cfg.NoVideo, "no-video", cfg.NoVideo, "bridge: skip the video stream")
	fs.BoolVar(&cfg.NoAudio, "no-audio", cfg.NoAudio, "bridge: skip the audio stream")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}

	cfg.PeerCheck = !*noPeerCheck
	cfg.NonBlocking = !*blocking

	a := &app{
		cfg:    cfg,
		logger: util.NewLogger(cfg.Verbose + 1),
		stdout: stdout,
		tty:    isTerminal(stdout),
	}

	if showVersion {
		return a.version()
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	verb, rest := fs.Arg(0), fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}

	switch verb {
	case "serve":
		return a.serve(ctx)
	case "version":
		return a.version()
	case "mode", "status":
		return a.mode(ctx)
	case "set":
		if len(rest) != 1 {
			return fmt.Errorf("set requires one mode (off, usb, rtsp or tcp)")
		}
		return a.set(ctx, rest[0])
	case "bridge":
		if len(rest) != 1 {
			return fmt.Errorf("bridge requires the console address")
		}
		return a.bridge(ctx, rest[0])
	case "":
		return fmt.Errorf("command required (use --help for usage)")
	default:
		return &dvrerr.ConfigError{
			Field:   "command",
			Value:   verb,
			Message: "unknown command",
			Hint:    "use one of serve, version, mode, set, bridge",
		}
	}
}

// ── verbs ────────────────────────────────────────────────────────────

func (a *app) version() error {
	if a.tty {
		fmt.Fprintf(a.stdout, "sysdvr %s (protocol %d)\n", version, ipc.Version)
	} else {
		fmt.Fprintf(a.stdout, "version=%s protocol=%d\n", version, ipc.Version)
	}
	return nil
}

func (a *app) mode(ctx context.Context) error {
	h, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	v, err := h.GetVersion()
	if err != nil {
		return err
	}
	m, err := h.GetMode()
	if err != nil {
		return err
	}

	if a.tty {
		fmt.Fprintf(a.stdout, "mode:    %s\nversion: %d\n", m, v)
		if v != ipc.Version {
			fmt.Fprintf(a.stdout, "warning: service protocol %d, client %d\n", v, ipc.Version)
		}
	} else {
		fmt.Fprintf(a.stdout, "mode=%s version=%d\n", m, v)
	}
	return nil
}

func (a *app) set(ctx context.Context, name string) error {
	m, err := ipc.ParseMode(name)
	if err != nil {
		return err
	}

	h, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.SetMode(m); err != nil {
		if code, ok := dvrerr.ResultCode(err); ok {
			return fmt.Errorf("set %s: service returned %s", m, ipc.Result(code))
		}
		return err
	}
	a.logger.Verbose("mode set to %s", m)
	if a.tty {
		fmt.Fprintf(a.stdout, "mode set to %s\n", m)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) timeout() time.Duration {
	if a.cfg.Timeout > 0 {
		return a.cfg.Timeout
	}
	return config.DefaultConnTimeout
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `sysdvr – capture mode service v%s

Usage:
  sysdvr serve [options]                      Run the service
  sysdvr mode                                 Show the active mode
  sysdvr set <off|usb|rtsp|tcp>               Switch the capture mode
  sysdvr bridge [options] <host>              Receive raw TCP streams
  sysdvr version                              Print the version

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  sysdvr serve -v --mode=tcp                  Start streaming over TCP
  sysdvr serve --listener-policy=fatal        Halt if a port is taken
  sysdvr set rtsp                             Switch to the network stream
  sysdvr bridge -o /tmp/cap 192.168.1.20      Save both streams to files
  sysdvr bridge --no-audio 10.0.0.5 | mpv -   Play the video stream

Environment variables use the SYSDVR_ prefix, e.g. SYSDVR_SOCKET_DIR.
`)
}
