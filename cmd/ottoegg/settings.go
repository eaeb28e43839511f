package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/settings"
	"github.com/hammamikhairi/ottoegg/internal/web"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the stored household settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print every setting",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print as a JSON object"},
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
					values := settings.Map(s)
					if c.Bool("json") {
						return printJSON(rt.out, values)
					}
					width := 0
					for _, k := range settings.Keys() {
						width = max(width, len(k))
					}
					for _, k := range settings.Keys() {
						fmt.Fprintf(rt.out, "%-*s  %s\n", width, k, values[k])
					}
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: settings get <key>")
					}
					rt, err := setup(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					s, err := rt.engine.Settings(c.Context)
					if err != nil {
						return err
					}
					v, err := settings.Get(s, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(rt.out, v)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Change one setting",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("usage: settings set <key> <value>")
					}
					rt, err := setup(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					key := c.Args().Get(0)
					s, err := rt.engine.Set(c.Context, key, c.Args().Get(1))
					if err != nil {
						return err
					}
					v, _ := settings.Get(s, key)
					fmt.Fprintf(rt.out, "%s = %s\n", key, v)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Restore the factory settings",
				Action: func(c *cli.Context) error {
					rt, err := setup(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					if _, err := rt.engine.Reset(c.Context); err != nil {
						return err
					}
					fmt.Fprintln(rt.out, "settings reset to defaults")
					return nil
				},
			},
		},
	}
}

func atmosphereCommand() *cli.Command {
	return &cli.Command{
		Name:  "atmosphere",
		Usage: "Convert between air pressure, boiling point and altitude",
		Description: "With no flag, prints the stored atmosphere. Otherwise exactly one\n" +
			"of --pressure, --boiling-point or --altitude is converted.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "pressure", Usage: "air pressure in hPa"},
			&cli.Float64Flag{Name: "boiling-point", Usage: "boiling point in °C"},
			&cli.Float64Flag{Name: "altitude", Usage: "altitude in metres (standard atmosphere)"},
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			set := 0
			for _, name := range []string{"pressure", "boiling-point", "altitude"} {
				if c.IsSet(name) {
					set++
				}
			}
			if set > 1 {
				return fmt.Errorf("use only one of --pressure, --boiling-point, --altitude")
			}

			st := rt.engine.Atmosphere()
			switch {
			case c.IsSet("pressure"):
				st = fromPressure(c.Float64("pressure"))
			case c.IsSet("boiling-point"):
				st = fromPressure(physics.PressureFromBoilingPoint(c.Float64("boiling-point")))
				st.BoilingPointC = c.Float64("boiling-point")
			case c.IsSet("altitude"):
				st = fromPressure(physics.PressureFromAltitude(c.Float64("altitude")))
			}
			if !finite(st.PressureHPa) || !finite(st.BoilingPointC) || st.PressureHPa <= 0 {
				return fmt.Errorf("pressure %g hPa: %w", st.PressureHPa, domain.ErrInvalidValue)
			}

			if c.Bool("json") {
				return printJSON(rt.out, web.AtmosphereView{
					PressureHPa:   st.PressureHPa,
					BoilingPointC: st.BoilingPointC,
					AltitudeM:     st.AltitudeMeters,
				})
			}
			printAtmosphere(rt.out, rt.tr, st, domain.Celsius, domain.HectoPascal)
			return nil
		},
	}
}

func fromPressure(p float64) domain.AtmosphericState {
	return domain.AtmosphericState{
		PressureHPa:    p,
		BoilingPointC:  physics.BoilingPointFromPressure(p),
		AltitudeMeters: physics.AltitudeFromPressure(p),
		Source:         domain.PressureManual,
	}
}

func locateCommand() *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "Look up the air pressure at a position and store it",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat", Usage: "latitude in degrees", Required: true},
			&cli.Float64Flag{Name: "lon", Usage: "longitude in degrees", Required: true},
			&cli.Float64Flag{Name: "altitude", Usage: "device altitude in metres, if known"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			coords := domain.Coordinates{Latitude: c.Float64("lat"), Longitude: c.Float64("lon")}
			if c.IsSet("altitude") {
				alt := c.Float64("altitude")
				coords.Altitude = &alt
			}

			fmt.Fprintln(rt.out, rt.tr.T("detectingLocation"))
			st, err := rt.engine.DetectLocation(c.Context, coords)
			if err != nil {
				return err
			}
			s, err := rt.engine.Settings(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out, rt.tr.T("currentPressureSource"))
			printAtmosphere(rt.out, rt.tr, st, s.TempUnit, s.PressureUnit)
			return nil
		},
	}
}
