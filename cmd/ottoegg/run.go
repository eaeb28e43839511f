package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hammamikhairi/ottoegg/internal/config"
	"github.com/hammamikhairi/ottoegg/internal/display"
	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/notify"
	"github.com/hammamikhairi/ottoegg/internal/preset"
	"github.com/hammamikhairi/ottoegg/internal/timer"
	"github.com/hammamikhairi/ottoegg/internal/units"
	"github.com/hammamikhairi/ottoegg/internal/web"
)

// completion closes Done the first time the timer completes.
type completion struct {
	once sync.Once
	Done chan struct{}
}

func newCompletion() *completion { return &completion{Done: make(chan struct{})} }

func (c *completion) OnTimerEvent(_ context.Context, ev domain.TimerEvent) {
	if ev.Type == domain.TimerCompleted {
		c.once.Do(func() { close(c.Done) })
	}
}

func timerCommand() *cli.Command {
	return &cli.Command{
		Name:  "timer",
		Usage: "Run the egg timer without a UI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seconds", Usage: "countdown length (default: the calculated cooking time)"},
			&cli.StringFlag{Name: "label", Usage: "name shown in notifications (default: the consistency)"},
			&cli.BoolFlag{Name: "no-wait", Usage: "exit as soon as the timer completes instead of waiting for Enter"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			s, err := rt.engine.Settings(c.Context)
			if err != nil {
				return err
			}

			d := time.Duration(c.Int("seconds")) * time.Second
			if !c.IsSet("seconds") {
				est, err := rt.engine.Calculate(c.Context)
				if err != nil {
					return err
				}
				if !est.OK() {
					return domain.ErrNoResult
				}
				d = est.Duration()
			}
			label := c.String("label")
			if label == "" {
				label = consistencyLabel(rt, s.Consistency)
			}

			done := newCompletion()
			sup := rt.newTimer(notify.NewCLINotifier(rt.log.Named("notify"), notify.WithWriter(rt.out)), done)
			sup.Start(c.Context)
			defer sup.Stop()

			if _, err := sup.Begin(c.Context, d, label); err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "%s: %s (%s)\n", rt.tr.T("timerRunning"), label,
				units.FormatCountdown(int(d/time.Second)))

			select {
			case <-c.Context.Done():
				sup.Cancel(context.WithoutCancel(c.Context))
				return nil
			case <-done.Done:
			}

			if c.Bool("no-wait") {
				return nil
			}
			fmt.Fprintf(rt.out, "%s [Enter]\n", rt.tr.T("timerDismiss"))
			waitForEnter(c.Context)
			_, err = sup.Dismiss(context.WithoutCancel(c.Context))
			return err
		},
	}
}

func consistencyLabel(rt *runtime, id string) string {
	if c, err := preset.Consistency(id); err == nil {
		return rt.tr.T(c.NameKey)
	}
	return rt.tr.T("timerRunning")
}

// waitForEnter blocks until a line is read from stdin or ctx is done.
func waitForEnter(ctx context.Context) {
	line := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(line)
	}()
	select {
	case <-ctx.Done():
	case <-line:
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API, the timer websocket and metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides http.addr)", EnvVars: []string{"OTTOEGG_ADDR"}},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := c.Context
			cfg := rt.cfg
			addr := cfg.HTTP.Addr
			if c.IsSet("addr") {
				addr = c.String("addr")
			}

			var sup *timer.Supervisor
			hub := web.NewHub(func() domain.TimerSnapshot { return sup.Snapshot() },
				cfg.HTTP.Broadcast, rt.log.Named("ws"))
			recorder := notify.NewRecorder(50)
			notifier := notify.NewFanout(
				notify.NewCLINotifier(rt.log.Named("notify"), notify.WithWriter(rt.out), notify.WithColor(false)),
				recorder,
			)
			sup = rt.newTimer(notifier, hub)
			sup.Start(ctx)
			defer sup.Stop()

			go hub.Run(ctx)

			if !c.Bool("verbose") && !c.Bool("quiet") {
				if _, err := os.Stat(rt.cfgPath); err == nil {
					go func() {
						if err := config.Watch(ctx, rt.cfgPath, rt.log.Named("config"), rt.reloadLogLevel); err != nil {
							rt.log.Warn("config watch: %v", err)
						}
					}()
				}
			}

			srv := web.New(rt.engine, sup, rt.log.Named("http"),
				web.WithAddr(addr),
				web.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
				web.WithMetrics(rt.metrics),
				web.WithHub(hub),
				web.WithRecorder(recorder),
			)
			return srv.Serve(ctx)
		},
	}
}

// reloadLogLevel applies the log level of a reloaded config. Other
// changes need a restart.
func (rt *runtime) reloadLogLevel(cfg *config.Config) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		rt.log.Warn("ignoring log level: %v", err)
		return
	}
	if level != rt.log.GetLevel() {
		rt.log.SetLevel(level)
		rt.log.Info("log level is now %s", level)
	}
}

func runTUI(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Print(display.Banner(display.TermWidth(), rt.tr.T("subtitle")))

	// The notifier prints through the UI, which needs the timer first.
	var ui *display.UI
	printer := func(format string, a ...any) { ui.Printf(format, a...) }

	sup := rt.newTimer(notify.NewCLINotifier(rt.log.Named("notify"), notify.WithPrinter(printer)))
	ui = display.New(rt.engine, sup, rt.tr, rt.log.Named("display"))

	sup.Start(c.Context)
	defer sup.Stop()

	return ui.Run(c.Context)
}
