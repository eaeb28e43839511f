package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/preset"
	"github.com/hammamikhairi/ottoegg/internal/units"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.tr.T("title")))
	b.WriteString("  ")
	b.WriteString(secondaryStyle.Render(m.tr.T("subtitle")))
	b.WriteString("\n\n")

	b.WriteString(m.renderForm())
	b.WriteByte('\n')
	b.WriteString(panelStyle.Render(m.renderResult()))
	b.WriteByte('\n')

	if bar := m.renderBar(); bar != "" {
		b.WriteString(bar)
		b.WriteByte('\n')
	}
	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
		b.WriteByte('\n')
	}
	b.WriteString(secondaryStyle.Render(m.tr.T("keyHelp")))
	return b.String()
}

func (m model) renderForm() string {
	labels := make([]string, len(fields))
	width := 0
	for i, f := range fields {
		labels[i] = m.tr.T(f.label)
		width = max(width, len([]rune(labels[i])))
	}

	var b strings.Builder
	for i, f := range fields {
		pad := strings.Repeat(" ", width-len([]rune(labels[i])))
		value := f.show(&m.settings, m.prefs, m.tr.T)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + labels[i] + pad + "  ‹ " + value + " ›"))
		} else {
			b.WriteString(labelStyle.Render("  "+labels[i]+pad+"    ") + valueStyle.Render(value))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m model) renderResult() string {
	var lines []string
	s, p := m.settings, m.prefs

	if !m.est.OK() {
		lines = append(lines, m.tr.T("cookingTime")+": "+resultStyle.Render(units.NoTime))
		return strings.Join(append(lines, m.renderAtmosphere()), "\n")
	}

	r := m.est.Result
	lines = append(lines,
		m.tr.T("cookingTime")+": "+resultStyle.Render(units.FormatMinutes(r.CookingTimeMinutes)+" min"),
		secondaryStyle.Render(m.tr.T("idealCase")+": "+units.FormatMinutes(r.IdealTimeMinutes)+" min"),
	)

	if m.est.TempDropWarning {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%s %s %s · %s: %s",
			m.tr.T("tempDropWarning"),
			units.FormatTemp(r.TempDropC, domain.Celsius),
			m.tr.T("tempDropUnit"),
			m.tr.T("effectiveTemp"),
			units.FormatTemp(r.EffectiveTempC, p.Temp))))
	}
	if m.est.ColdWeatherWarning {
		lines = append(lines, warnStyle.Render(m.tr.T("coldWeatherWarning")))
	}

	lines = append(lines, m.renderAtmosphere())

	if m.showEnergy {
		lines = append(lines,
			"",
			m.tr.T("energyTitle"),
			fmt.Sprintf("  %s: %s min %s %.0f W", m.tr.T("heatingPhase"),
				units.FormatMinutes(r.HeatingTimeMinutes), m.tr.T("atPower"), s.StovePower),
			fmt.Sprintf("  %s: %d kJ (%.0f Wh)", m.tr.T("totalEnergy"), r.TotalEnergyKJ, float64(r.TotalEnergyKJ)/3.6),
		)
	}
	return strings.Join(lines, "\n")
}

func (m model) renderAtmosphere() string {
	s, p := m.settings, m.prefs
	line := fmt.Sprintf("%s: %s · %s: %s · %s: %d m",
		m.tr.T("boilingPoint"), units.FormatTemp(s.BoilingPoint, p.Temp),
		m.tr.T("airPressure"), units.FormatPressure(s.Pressure, p.Pressure),
		m.tr.T("altitudeApprox"), s.Altitude)
	if s.LocationName != "" {
		line += " · " + s.LocationName
	}
	return secondaryStyle.Render(line)
}

func (m model) renderBar() string {
	var content string
	switch m.snap.Status {
	case domain.TimerRunning:
		content = labelStyle.Render(m.snap.Label+": ") + timerRunStyle.Render(fmtRemaining(m.snap.Remaining)) +
			"  " + m.progress.ViewAs(elapsed(m.snap))
	case domain.TimerPaused:
		content = timerPausedStyle.Render(m.snap.Label+": "+fmtRemaining(m.snap.Remaining)+" · "+m.tr.T("timerPause")) +
			"  " + m.progress.ViewAs(elapsed(m.snap))
	case domain.TimerComplete:
		content = timerDoneStyle.Render(m.snap.Label + ": " + m.tr.T("timerComplete"))
	default:
		return ""
	}

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(" " + content + " ")
}

// ── Helpers ──────────────────────────────────────────────────────

// elapsed is the share of the countdown already done, in [0, 1].
func elapsed(s domain.TimerSnapshot) float64 {
	if s.Duration <= 0 {
		return 1
	}
	return min(1, max(0, 1-float64(s.Remaining)/float64(s.Duration)))
}

// fmtRemaining rounds up so the bar never shows 00:00 while running.
func fmtRemaining(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return units.FormatCountdown(secs)
}

func consistencyKey(id string) string {
	c, err := preset.Consistency(id)
	if err != nil {
		return "timerRunning"
	}
	return c.NameKey
}
