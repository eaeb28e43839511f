package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/ottoegg/internal/alarm"
	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/i18n"
	"github.com/hammamikhairi/ottoegg/internal/metrics"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/preset"
)

const maxBody = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeDomainError maps domain errors onto status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSetting), errors.Is(err, domain.ErrUnknownPreset):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, "invalid_value", err.Error())
	case errors.Is(err, domain.ErrTimerNotRunning),
		errors.Is(err, domain.ErrTimerNotPaused),
		errors.Is(err, domain.ErrTimerNotComplete):
		writeError(w, http.StatusConflict, "timer_state", err.Error())
	case errors.Is(err, domain.ErrWeatherUnavailable), errors.Is(err, domain.ErrPlaceUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "canceled", err.Error())
	default:
		s.log.Error("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ottoegg",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", metrics.ContentType())
	if err := s.metrics.WriteText(w); err != nil {
		s.log.Error("write metrics: %v", err)
	}
}

type presetsResponse struct {
	Language      string          `json:"language"`
	Stoves        []stoveView     `json:"stoves"`
	PotMaterials  []materialView  `json:"potMaterials"`
	Consistencies []consistView   `json:"consistencies"`
	EggSizes      []eggView       `json:"eggSizes"`
	StartTemps    []startTempView `json:"startTemps"`
	Altitudes     []altitudeView  `json:"altitudes"`
}

type stoveView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Efficiency    float64 `json:"efficiency"`
	DefaultPowerW float64 `json:"defaultPower"`
}

type materialView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	HeatCapacity float64 `json:"heatCapacity"`
}

type consistView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TargetTempC float64 `json:"targetTemp"`
	Color       string  `json:"color"`
}

type eggView struct {
	Name        string  `json:"name"`
	WeightGrams float64 `json:"weight"`
}

type startTempView struct {
	Name  string  `json:"name"`
	TempC float64 `json:"temp"`
}

type altitudeView struct {
	Name          string  `json:"name"`
	AltitudeM     int     `json:"altitude"`
	BoilingPointC float64 `json:"boilingPoint"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = i18n.Detect(r.Header.Get("Accept-Language"))
	}
	tr := i18n.New(lang)

	resp := presetsResponse{Language: tr.Lang()}
	for _, st := range preset.Stoves() {
		resp.Stoves = append(resp.Stoves, stoveView{st.ID, tr.T(st.NameKey), st.Efficiency, st.DefaultPowerW})
	}
	for _, m := range preset.PotMaterials() {
		resp.PotMaterials = append(resp.PotMaterials, materialView{m.ID, tr.T(m.NameKey), m.HeatCapacity})
	}
	for _, c := range preset.Consistencies() {
		resp.Consistencies = append(resp.Consistencies, consistView{c.ID, tr.T(c.NameKey), c.TargetTempC, c.Color})
	}
	for _, e := range preset.EggSizes() {
		resp.EggSizes = append(resp.EggSizes, eggView{e.Name, e.WeightGrams})
	}
	for _, t := range preset.StartTemps() {
		resp.StartTemps = append(resp.StartTemps, startTempView{tr.T(t.NameKey), t.TempC})
	}
	for _, a := range preset.Altitudes() {
		resp.Altitudes = append(resp.Altitudes, altitudeView{tr.T(a.NameKey), a.AltitudeMeters, a.BoilingPointC})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, i18n.Languages)
}

// handleCalculate runs the model on raw parameters. Inputs the model
// cannot answer are not an error: the reply is 200 with valid=false.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var p physics.Params
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewCalculateResponse(s.engine.Evaluate(p), nil))
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Settings(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	est := s.engine.Evaluate(engine.Params(st))
	writeJSON(w, http.StatusOK, NewCalculateResponse(est, st))
}

// handleAtmosphere converts between pressure and boiling point. Without a
// query it reports the current state.
func (s *Server) handleAtmosphere(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var pressure float64
	switch {
	case q.Has("pressure"):
		p, err := strconv.ParseFloat(q.Get("pressure"), 64)
		if err != nil || !finite(p) || p <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_value", "pressure must be a positive number")
			return
		}
		pressure = p
	case q.Has("boiling_point"):
		bp, err := strconv.ParseFloat(q.Get("boiling_point"), 64)
		if err != nil || !finite(bp) {
			writeError(w, http.StatusBadRequest, "invalid_value", "boiling_point must be a number")
			return
		}
		pressure = physics.PressureFromBoilingPoint(bp)
		if pressure <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_value", "boiling point too low")
			return
		}
	default:
		writeJSON(w, http.StatusOK, s.engine.Atmosphere())
		return
	}
	writeJSON(w, http.StatusOK, AtmosphereView{
		PressureHPa:   pressure,
		BoilingPointC: physics.BoilingPointFromPressure(pressure),
		AltitudeM:     physics.AltitudeFromPressure(pressure),
	})
}

func (s *Server) handleAlarmSound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(alarm.EncodeWAV(alarm.Chime(alarm.SampleRate), alarm.SampleRate)) //nolint:errcheck
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Settings(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Reset(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// valueRequest carries one value; numbers and strings are both accepted.
type valueRequest struct {
	Value json.RawMessage `json:"value"`
}

func (v valueRequest) String() (string, error) {
	if len(v.Value) == 0 {
		return "", fmt.Errorf("missing value: %w", domain.ErrInvalidValue)
	}
	var str string
	if err := json.Unmarshal(v.Value, &str); err == nil {
		return str, nil
	}
	return string(v.Value), nil
}

func (v valueRequest) Float() (float64, error) {
	raw, err := v.String()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", raw, domain.ErrInvalidValue)
	}
	return f, nil
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	raw, err := req.String()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	st, err := s.engine.Set(r.Context(), chi.URLParam(r, "key"), raw)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Atmosphere())
}

type coordsRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

func (s *Server) handleDetectLocation(w http.ResponseWriter, r *http.Request) {
	var req coordsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "latitude and longitude are required")
		return
	}
	st, err := s.engine.DetectLocation(r.Context(), domain.Coordinates{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Altitude:  req.Altitude,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSetPressure(w http.ResponseWriter, r *http.Request) {
	s.setAtmosphere(w, r, s.engine.SetPressure)
}

func (s *Server) handleSetBoilingPoint(w http.ResponseWriter, r *http.Request) {
	s.setAtmosphere(w, r, s.engine.SetBoilingPoint)
}

func (s *Server) setAtmosphere(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, float64) (domain.AtmosphericState, error)) {
	var req valueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	v, err := req.Float()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	st, err := fn(r.Context(), v)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewTimerView(s.timer.Snapshot()))
}

// maxTimerSeconds caps an explicit timer length at one day.
const maxTimerSeconds = 24 * 60 * 60

type startRequest struct {
	Seconds float64 `json:"seconds"`
	Label   string  `json:"label"`
}

// handleStartTimer starts the countdown. Without an explicit duration (or
// with zero) it uses the cooking time of the stored settings.
func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if !finite(req.Seconds) || req.Seconds < 0 || req.Seconds > maxTimerSeconds {
		writeError(w, http.StatusBadRequest, "invalid_value",
			fmt.Sprintf("seconds must be between 0 and %d", maxTimerSeconds))
		return
	}

	d := time.Duration(req.Seconds * float64(time.Second))
	if req.Seconds == 0 {
		est, err := s.engine.Calculate(r.Context())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if est.Duration() <= 0 {
			writeError(w, http.StatusConflict, "no_estimate", "current settings give no cooking time")
			return
		}
		d = est.Duration()
	}

	// The countdown outlives the request.
	snap, err := s.timer.Begin(context.WithoutCancel(r.Context()), d, req.Label)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewTimerView(snap))
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewTimerView(s.timer.Cancel(r.Context())))
}

func (s *Server) timerAction(fn func(context.Context) (domain.TimerSnapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := fn(r.Context())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NewTimerView(snap))
	}
}

type noteView struct {
	Text   string `json:"text"`
	Urgent bool   `json:"urgent"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	msgs := s.notes.Messages()
	out := make([]noteView, len(msgs))
	for i, m := range msgs {
		out[i] = noteView{Text: m.Text, Urgent: m.Urgent}
	}
	writeJSON(w, http.StatusOK, out)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
