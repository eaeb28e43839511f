package main

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/hammamikhairi/ottoegg/internal/alarm"
	"github.com/hammamikhairi/ottoegg/internal/config"
	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/geocode"
	"github.com/hammamikhairi/ottoegg/internal/i18n"
	"github.com/hammamikhairi/ottoegg/internal/location"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/meteo"
	"github.com/hammamikhairi/ottoegg/internal/metrics"
	"github.com/hammamikhairi/ottoegg/internal/mqtt"
	"github.com/hammamikhairi/ottoegg/internal/settings"
	"github.com/hammamikhairi/ottoegg/internal/timer"
)

// runtime holds the wired dependencies shared by every command.
type runtime struct {
	cfg     *config.Config
	cfgPath string
	log     *logger.Logger
	engine  *engine.Engine
	metrics *metrics.Registry
	tr      i18n.Translator
	out     io.Writer

	closers []func() error
}

// setup loads the config and wires logging, settings storage and the
// engine. Callers must Close the result.
func setup(c *cli.Context) (*runtime, error) {
	rt := &runtime{cfgPath: c.String("config"), out: c.App.Writer}
	if rt.out == nil {
		rt.out = os.Stdout
	}

	cfg, err := config.LoadOrDefault(rt.cfgPath)
	if err != nil {
		return nil, err
	}
	rt.cfg = cfg

	if err := rt.setupLogging(c); err != nil {
		return nil, err
	}

	store, err := rt.openStore(c)
	if err != nil {
		rt.Close()
		return nil, err
	}

	weather := meteo.New(rt.log.Named("meteo"),
		meteo.WithEndpoint(cfg.Weather.Endpoint),
		meteo.WithTimeout(cfg.Weather.Timeout),
	)
	places := geocode.New(rt.log.Named("geocode"),
		geocode.WithEndpoint(cfg.Geocoding.Endpoint),
		geocode.WithUserAgent(cfg.Geocoding.UserAgent),
		geocode.WithTimeout(cfg.Geocoding.Timeout),
	)

	rt.metrics = metrics.New()
	rt.engine = engine.New(store, location.New(weather, places, rt.log.Named("location")),
		rt.log.Named("engine"), engine.WithMetrics(rt.metrics))
	if err := rt.engine.Init(c.Context); err != nil {
		rt.Close()
		return nil, err
	}

	lang := c.String("lang")
	if lang == "" {
		lang = cfg.Language
	}
	if lang == "" {
		rt.tr = i18n.New(i18n.FromEnv())
	} else {
		rt.tr = i18n.New(i18n.Detect(lang))
	}

	rt.log.Debug("config=%s settings=%s lang=%s", rt.cfgPath, cfg.Settings.Backend, rt.tr.Lang())
	return rt, nil
}

func (rt *runtime) setupLogging(c *cli.Context) error {
	level, err := logger.ParseLevel(rt.cfg.Log.Level)
	if err != nil {
		return err
	}
	if c.Bool("verbose") {
		level = logger.LevelVerbose
	}
	if c.Bool("quiet") {
		level = logger.LevelOff
	}

	logFile := rt.cfg.Log.File
	if c.IsSet("log-file") {
		logFile = c.String("log-file")
	}

	// Logs go to a file by default so the terminal stays clean.
	var logOut io.Writer = os.Stderr
	if logFile != "" && logFile != "stderr" {
		if dir := filepath.Dir(logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", logFile, err)
		} else {
			logOut = f
			rt.closers = append(rt.closers, f.Close)
		}
	}

	// Third-party libraries using the standard logger end up in the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	rt.log = logger.New(level, logOut)
	return nil
}

func (rt *runtime) openStore(c *cli.Context) (domain.SettingsStore, error) {
	log := rt.log.Named("settings")
	switch rt.cfg.Settings.Backend {
	case "memory":
		return settings.NewMemoryStore(log), nil
	case "postgres":
		dsn := rt.cfg.Settings.DSN()
		if dsn == "" {
			return nil, fmt.Errorf("settings: $%s is empty", rt.cfg.Settings.DSNEnv)
		}
		pg, err := settings.OpenPostgres(c.Context, dsn, log)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pg.Close)
		return pg, nil
	default:
		return settings.NewFileStore(rt.cfg.Settings.Path, log), nil
	}
}

// newTimer builds the timer supervisor from the config: alarm sound,
// metrics and, when a broker is configured, MQTT publishing.
func (rt *runtime) newTimer(notifier domain.Notifier, observers ...domain.TimerObserver) *timer.Supervisor {
	tc := rt.cfg.Timer
	opts := []timer.Option{
		timer.WithTickInterval(tc.Tick),
		timer.WithNotifyCooldown(tc.Cooldown),
		timer.WithMaxEscalation(tc.MaxEscalation),
		timer.WithAlmostDoneThreshold(tc.AlmostDone),
		timer.WithAlarm(rt.newAlarm()),
		timer.WithObserver(rt.metrics),
	}
	for _, o := range observers {
		opts = append(opts, timer.WithObserver(o))
	}

	if rt.cfg.MQTT.Enabled() {
		pub, err := mqtt.NewRealPublisher(rt.cfg.MQTT)
		if err != nil {
			rt.log.Error("mqtt disabled: %v", err)
		} else {
			rt.closers = append(rt.closers, pub.Close)
			opts = append(opts, timer.WithObserver(mqtt.NewObserver(pub, rt.log.Named("mqtt"))))
			rt.log.Info("publishing timer events to %s", rt.cfg.MQTT.Broker)
		}
	}

	return timer.New(notifier, rt.log.Named("timer"), opts...)
}

func (rt *runtime) newAlarm() domain.Alarm {
	log := rt.log.Named("alarm")
	if !rt.cfg.Timer.Sound {
		return alarm.NewNoOp(log)
	}
	var opts []alarm.Option
	if rt.cfg.Timer.SoundFile != "" {
		opts = append(opts, alarm.WithSoundFile(rt.cfg.Timer.SoundFile))
	}
	p, err := alarm.NewPlayer(log, opts...)
	if err != nil {
		log.Warn("no audio, alarm is silent: %v", err)
		return alarm.NewNoOp(log)
	}
	return p
}

// Close releases everything setup opened, newest first.
func (rt *runtime) Close() {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	if err := errors.Join(errs...); err != nil && rt.log != nil {
		rt.log.Warn("shutdown: %v", err)
	}
}
