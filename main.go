package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/prospector/agent"
	"github.com/nstehr/prospector/ipc"
	"github.com/nstehr/prospector/observer"
	"github.com/nstehr/prospector/replay"
	"github.com/nstehr/prospector/rules"
)

const banner = `
 ___  ___  ___  ___  ___  ___  ___  ___  ___  ___
| _ \| _ \/ _ \/ __|| _ \| __|/ __||_ _|/ _ \| _ \
|  _/|   / (_) \__ \|  _/| _|| (__  | || (_) |   /
|_|  |_|_\\___/|___/|_|  |___|\___| |_| \___/|_|_\

Rule-Driven Resource Collection`

type config struct {
	socket     string
	tuningPath string
	observe    string
	recordDir  string
	logLevel   string
	turnBudget time.Duration
}

func parseFlags() config {
	var c config
	flag.StringVar(&c.socket, "socket", "/tmp/prospector.sock", "unix socket the game host connects to")
	flag.StringVar(&c.tuningPath, "tuning", "", "YAML tuning file (defaults when empty)")
	flag.StringVar(&c.observe, "observe", "", "address for the websocket observer feed, e.g. 127.0.0.1:8088")
	flag.StringVar(&c.recordDir, "record", "", "directory for zstd replay files")
	flag.StringVar(&c.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.DurationVar(&c.turnBudget, "turn-budget", 1500*time.Millisecond, "planning deadline per turn (0 disables)")
	flag.Parse()
	return c
}

func main() {
	cfg := parseFlags()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level %q\n", cfg.logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting prospector")

	tuning := rules.DefaultTuning()
	if cfg.tuningPath != "" {
		t, err := rules.LoadTuning(cfg.tuningPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", cfg.tuningPath, "error", err)
			os.Exit(1)
		}
		tuning = t
		slog.Info("tuning loaded", "path", cfg.tuningPath)
	}
	// Compile once up front so a bad tuning file fails fast.
	if _, err := rules.NewDefaultEngine(tuning); err != nil {
		slog.Error("failed to compile rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hub *observer.Hub
	if cfg.observe != "" {
		hub = observer.NewHub()
		srv := &http.Server{Addr: cfg.observe, Handler: hub.Mux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("observer listening", "addr", cfg.observe)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("observer server failed", "error", err)
			}
		}()
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.socket); err != nil {
		slog.Error("failed to clean up socket", "path", cfg.socket, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", cfg.socket)
	if err != nil {
		slog.Error("failed to listen on socket", "path", cfg.socket, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(cfg.socket)

	slog.Info("listening on domain socket", "path", cfg.socket)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(conn, cfg, tuning, hub)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

// handleConn gives each match its own engine, world and replay file.
func handleConn(conn net.Conn, cfg config, tuning rules.Tuning, hub *observer.Hub) {
	engine, err := rules.NewDefaultEngine(tuning)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		conn.Close()
		return
	}

	c := ipc.NewConnection(conn, nil)
	a := agent.New(c.Session, engine)
	a.TurnBudget = cfg.turnBudget
	if hub != nil {
		a.Observer = hub
	}
	if cfg.recordDir != "" {
		rec := replay.NewRecorder(cfg.recordDir, c.Session)
		defer func() {
			if err := rec.Close(); err != nil {
				slog.Error("failed to close replay", "path", rec.Path(), "error", err)
			}
		}()
		a.Recorder = rec
	}

	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeTurn, a.HandleTurn)
	c.ReadLoop()
}
