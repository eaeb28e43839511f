package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/urfave/cli/v2"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/i18n"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/settings"
	"github.com/hammamikhairi/ottoegg/internal/units"
	"github.com/hammamikhairi/ottoegg/internal/web"
)

// calcFlags maps each calc flag to the setting it overrides. Order matters:
// a stove type resets the power and a consistency resets the target, so
// the explicit values must come after them.
var calcFlags = []struct {
	flag, key, usage string
}{
	{"consistency", "consistency", "soft | medium | hard-medium | hard"},
	{"target-temp", "targetTemp", "yolk target temperature in °C"},
	{"weight", "weight", "egg weight in grams"},
	{"start-temp", "startTemp", "egg temperature before cooking in °C"},
	{"eggs", "eggCount", "number of eggs"},
	{"water", "waterVolume", "water volume in litres"},
	{"stove", "stoveType", "induction | ceramic | electric | gas | camping"},
	{"power", "stovePower", "stove power in watts"},
	{"efficiency", "stoveEfficiency", "stove efficiency (0-1]"},
	{"pot-weight", "potWeight", "pot weight in kg"},
	{"pot-material", "potMaterial", "steel | aluminum | cast_iron | copper | ceramic"},
	{"water-temp", "waterStartTemp", "tap water temperature in °C"},
	{"ambient", "ambientTemp", "room temperature in °C"},
}

func calcCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.Float64Flag{Name: "pressure", Usage: "air pressure in hPa (derives the boiling point)"},
		&cli.Float64Flag{Name: "boiling-point", Usage: "boiling point in °C (derives the pressure)"},
		&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
		&cli.BoolFlag{Name: "save", Usage: "store the overrides as the new settings"},
	}
	for _, f := range calcFlags {
		flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: f.usage})
	}

	return &cli.Command{
		Name:  "calc",
		Usage: "Calculate the cooking time once, from stored settings and flag overrides",
		Flags: flags,
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
			if err := applyOverrides(c, s); err != nil {
				return err
			}
			if c.Bool("save") {
				if _, err := rt.engine.Update(c.Context, func(st *domain.Settings) error {
					*st = *s
					return nil
				}); err != nil {
					return err
				}
			}

			est := rt.engine.Evaluate(engine.Params(s))
			if c.Bool("json") {
				if err := printJSON(rt.out, web.NewCalculateResponse(est, s)); err != nil {
					return err
				}
			} else {
				printEstimate(rt.out, rt.tr, s, est.Result, est.TempDropWarning, est.ColdWeatherWarning)
			}
			if !est.OK() {
				return domain.ErrNoResult
			}
			return nil
		},
	}
}

// applyOverrides writes the flags the user set into s.
func applyOverrides(c *cli.Context, s *domain.Settings) error {
	for _, f := range calcFlags {
		if !c.IsSet(f.flag) {
			continue
		}
		if err := settings.Set(s, f.key, c.String(f.flag)); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}

	switch {
	case c.IsSet("pressure"):
		p := c.Float64("pressure")
		if !finite(p) || p <= 0 {
			return fmt.Errorf("--pressure %g: %w", p, domain.ErrInvalidValue)
		}
		s.SetAtmosphere(domain.AtmosphericState{
			PressureHPa:    p,
			BoilingPointC:  physics.BoilingPointFromPressure(p),
			AltitudeMeters: physics.AltitudeFromPressure(p),
			Source:         domain.PressureManual,
		})
	case c.IsSet("boiling-point"):
		bp := c.Float64("boiling-point")
		p := physics.PressureFromBoilingPoint(bp)
		if !finite(bp) || p <= 0 {
			return fmt.Errorf("--boiling-point %g: %w", bp, domain.ErrInvalidValue)
		}
		s.SetAtmosphere(domain.AtmosphericState{
			PressureHPa:    p,
			BoilingPointC:  bp,
			AltitudeMeters: physics.AltitudeFromPressure(p),
			Source:         domain.PressureManual,
		})
	}
	return nil
}

func printEstimate(w io.Writer, tr i18n.Translator, s *domain.Settings, r *physics.Result, drop, cold bool) {
	if r == nil {
		fmt.Fprintf(w, "%s: %s\n", tr.T("cookingTime"), units.NoTime)
		printAtmosphere(w, tr, s.Atmosphere(), s.TempUnit, s.PressureUnit)
		return
	}

	fmt.Fprintf(w, "%s: %s min\n", tr.T("cookingTime"), units.FormatMinutes(r.CookingTimeMinutes))
	fmt.Fprintf(w, "%s: %s min\n", tr.T("idealCase"), units.FormatMinutes(r.IdealTimeMinutes))
	if drop {
		fmt.Fprintf(w, "%s %s %s (%s: %s)\n", tr.T("tempDropWarning"),
			units.FormatTemp(r.TempDropC, domain.Celsius), tr.T("tempDropUnit"),
			tr.T("effectiveTemp"), units.FormatTemp(r.EffectiveTempC, s.TempUnit))
	}
	if cold {
		fmt.Fprintln(w, tr.T("coldWeatherWarning"))
	}
	printAtmosphere(w, tr, s.Atmosphere(), s.TempUnit, s.PressureUnit)
	fmt.Fprintf(w, "%s: %s min · %s: %d kJ\n", tr.T("heatingPhase"),
		units.FormatMinutes(r.HeatingTimeMinutes), tr.T("totalEnergy"), r.TotalEnergyKJ)
}

func printAtmosphere(w io.Writer, tr i18n.Translator, a domain.AtmosphericState, tu domain.TempUnit, pu domain.PressureUnit) {
	fmt.Fprintf(w, "%s: %s · %s: %s · %s: %d m",
		tr.T("boilingPoint"), units.FormatTemp(a.BoilingPointC, tu),
		tr.T("airPressure"), units.FormatPressure(a.PressureHPa, pu),
		tr.T("altitudeApprox"), a.AltitudeMeters)
	if a.PlaceName != "" {
		fmt.Fprintf(w, " · %s", a.PlaceName)
	}
	fmt.Fprintln(w)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
