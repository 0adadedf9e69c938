// uihook - cross-platform global keyboard and mouse hook
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	"uihook/internal/config"
	"uihook/internal/event"
	"uihook/internal/hook"
	"uihook/internal/logging"
	"uihook/internal/tray"
)

var version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "uihook",
		Usage:   "observe global keyboard and mouse events",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (trace, debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			watchCommand,
			diagnoseCommand,
			trayCommand,
		},
		DefaultCommand: "watch",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, text.FgRed.Sprintf("error: %v", err))
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration from the config file and the
// global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	mgr, err := config.NewManager(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := mgr.Get()
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "print events as they happen",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "keyboard",
			Usage: "only keyboard events",
		},
		&cli.BoolFlag{
			Name:  "mouse",
			Usage: "only mouse button and motion events",
		},
		&cli.BoolFlag{
			Name:  "wheel",
			Usage: "only wheel events",
		},
		&cli.DurationFlag{
			Name:  "duration",
			Usage: "stop after this long (0 = until interrupted)",
		},
	},
	Action: runWatch,
}

func runWatch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	filter := watchFilter(c)
	counts := make(map[event.Type]int)
	var countsMu sync.Mutex

	h := hook.New(cfg.HookOptions())
	h.Register(hook.HandlerFunc(func(ev event.Event) {
		countsMu.Lock()
		counts[ev.Type]++
		countsMu.Unlock()

		if !filter(ev.Type) {
			return
		}
		fmt.Println(colorize(ev))
	}))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
		case <-expiry(c.Duration("duration")):
		}
		if err := h.Stop(); err != nil {
			logging.Logger.Debug().Err(err).Msg("stop after signal")
		}
	}()

	logging.Logger.Info().Msg("watching input events, press Ctrl+C to stop")
	err = h.Run()

	countsMu.Lock()
	printSummary(counts)
	countsMu.Unlock()
	return err
}

// expiry returns a channel that fires after d, or never for d <= 0.
func expiry(d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return time.After(d)
}

func watchFilter(c *cli.Context) func(event.Type) bool {
	keyboard := c.Bool("keyboard")
	mouse := c.Bool("mouse")
	wheel := c.Bool("wheel")
	if !keyboard && !mouse && !wheel {
		return func(event.Type) bool { return true }
	}
	return func(t event.Type) bool {
		switch {
		case t.IsKeyboard():
			return keyboard
		case t == event.MouseWheel:
			return wheel
		case t.IsMouse():
			return mouse
		}
		return true
	}
}

func colorize(ev event.Event) string {
	switch {
	case ev.Type.IsKeyboard():
		return text.FgGreen.Sprint(ev.String())
	case ev.Type == event.MouseWheel:
		return text.FgMagenta.Sprint(ev.String())
	case ev.Type == event.MouseMoved, ev.Type == event.MouseDragged:
		return text.Faint.Sprint(ev.String())
	case ev.Type.IsMouse():
		return text.FgCyan.Sprint(ev.String())
	}
	return ev.String()
}

func printSummary(counts map[event.Type]int) {
	if len(counts) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Event", "Count"})

	total := 0
	for typ := event.HookEnabled; typ <= event.MouseWheel; typ++ {
		if n, ok := counts[typ]; ok {
			t.AppendRow(table.Row{typ.String(), n})
			total += n
		}
	}
	t.AppendFooter(table.Row{"Total", total})
	t.SetStyle(table.StyleLight)
	t.Render()
}

var diagnoseCommand = &cli.Command{
	Name:  "diagnose",
	Usage: "check permissions and devices without installing the hook",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		report, err := hook.New(cfg.HookOptions()).Diagnose()
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

var trayCommand = &cli.Command{
	Name:  "tray",
	Usage: "run in the system tray with a capture toggle",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		h := hook.New(cfg.HookOptions())
		h.Register(hook.HandlerFunc(func(ev event.Event) {
			logging.Logger.Debug().Stringer("event", ev.Type).Msg("input event")
		}))

		t := tray.New("uihook - input event hook")

		var captureID int
		captureID = t.AddMenuItem("Capture events", func() {
			if state, _ := h.Status(); state == hook.Running {
				if err := h.Stop(); err != nil {
					logging.Logger.Error().Err(err).Msg("stop capture")
					return
				}
				t.SetItemChecked(captureID, false)
				return
			}
			if err := h.Start(); err != nil {
				logging.Logger.Error().Err(err).Msg("start capture")
				return
			}
			t.SetItemChecked(captureID, true)
		})

		t.AddSeparator()
		t.AddMenuItem("Quit", func() {
			t.Stop()
		})

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			t.Stop()
		}()

		t.Run()

		if state, _ := h.Status(); state == hook.Running {
			return h.Stop()
		}
		return nil
	},
}
