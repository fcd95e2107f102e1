package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/auroralabs/heliowatch/sonify"
	"github.com/auroralabs/heliowatch/telemetry"
)

// Config controls the dashboard loop
type Config struct {
	PollInterval time.Duration // telemetry refresh cadence
	HistoryLimit int           // chart window, in samples
}

// DefaultConfig returns dashboard defaults
func DefaultConfig() Config {
	return Config{
		PollInterval: 60 * time.Second,
		HistoryLimit: 120,
	}
}

// Dashboard is the terminal UI: telemetry panels, history charts, the
// sonification controls, and the visualizer band. It owns the screen; the
// engine and telemetry client are collaborators.
type Dashboard struct {
	screen tcell.Screen
	ctrl   *sonify.Controller
	client *telemetry.Client
	store  *telemetry.Store // optional, nil disables history persistence
	logger *slog.Logger
	cfg    Config

	width, height int
	current       telemetry.Snapshot
	history       []telemetry.Snapshot
	statusMsg     string
	statusTime    time.Time
	frame         int
}

// New creates the dashboard and initializes the terminal screen
func New(ctrl *sonify.Controller, client *telemetry.Client, store *telemetry.Store, logger *slog.Logger, cfg Config) (*Dashboard, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}

	d := &Dashboard{
		screen: screen,
		ctrl:   ctrl,
		client: client,
		store:  store,
		logger: logger,
		cfg:    cfg,
	}
	d.width, d.height = screen.Size()

	// Seed the charts from stored history
	if store != nil {
		if recent, err := store.Recent(context.Background(), cfg.HistoryLimit); err == nil {
			d.history = recent
			if len(recent) > 0 {
				d.current = recent[len(recent)-1]
			}
		}
	}

	return d, nil
}

// Run drives the event loop until quit or context cancellation
func (d *Dashboard) Run(ctx context.Context) error {
	defer d.screen.Fini()

	frameTicker := time.NewTicker(50 * time.Millisecond)
	defer frameTicker.Stop()
	pollTicker := time.NewTicker(d.cfg.PollInterval)
	defer pollTicker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	snapChan := make(chan telemetry.Snapshot, 1)
	d.fetchAsync(ctx, snapChan) // first reading immediately

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return nil
			}

		case snap := <-snapChan:
			d.applySnapshot(ctx, snap)

		case <-pollTicker.C:
			d.fetchAsync(ctx, snapChan)

		case <-frameTicker.C:
			d.frame++
			d.draw()
		}
	}
}

// fetchAsync fetches off the loop goroutine; the result lands on snapChan
func (d *Dashboard) fetchAsync(ctx context.Context, snapChan chan<- telemetry.Snapshot) {
	go func() {
		snap, err := d.client.Fetch(ctx)
		if err != nil {
			d.logger.Warn("telemetry fetch failed", "error", err)
			return
		}
		select {
		case snapChan <- snap:
		default:
		}
	}()
}

// applySnapshot records a fresh reading: charts, persistence, and the
// engine's telemetry for its next graph build
func (d *Dashboard) applySnapshot(ctx context.Context, snap telemetry.Snapshot) {
	d.current = snap
	d.history = append(d.history, snap)
	if len(d.history) > d.cfg.HistoryLimit {
		d.history = d.history[len(d.history)-d.cfg.HistoryLimit:]
	}

	d.ctrl.UpdateTelemetry(toEngine(snap))

	if d.store != nil {
		if err := d.store.Append(ctx, snap); err != nil {
			d.logger.Warn("history append failed", "error", err)
		}
	}
}

// toEngine converts a telemetry snapshot to the engine's input
func toEngine(snap telemetry.Snapshot) sonify.Telemetry {
	return sonify.Telemetry{
		WindSpeed:   snap.WindSpeed,
		WindDensity: snap.WindDensity,
		KpIndex:     snap.KpIndex,
		FlareClass:  snap.FlareClass,
		FlareFlux:   snap.FlareFlux,
	}
}

// handleInput processes one event; false means quit
func (d *Dashboard) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}

		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if err := d.ctrl.Toggle(); err != nil {
				d.setStatus("audio unavailable on this host")
			} else if d.ctrl.IsPlaying() {
				d.setStatus("sonification on")
			} else {
				d.setStatus("sonification off")
			}
		case 'm':
			next := sonify.ModeSun
			if d.ctrl.Mode() == sonify.ModeSun {
				next = sonify.ModeMagnetosphere
			}
			d.ctrl.SwitchMode(next)
			d.setStatus("mode: " + next.String())
		case '+', '=':
			d.ctrl.SetVolume(d.ctrl.Volume() + 0.05)
		case '-', '_':
			d.ctrl.SetVolume(d.ctrl.Volume() - 0.05)
		}

	case *tcell.EventResize:
		d.width, d.height = d.screen.Size()
		d.screen.Sync()
	}

	return true
}

func (d *Dashboard) setStatus(msg string) {
	d.statusMsg = msg
	d.statusTime = time.Now()
}

func (d *Dashboard) draw() {
	d.screen.Clear()

	d.drawHeader()
	d.drawReadings(2)
	d.drawCharts(8)
	d.drawVisualizer(2, d.height-7, d.width-4, 4)
	d.drawStatusLine()

	d.screen.Show()
}

func (d *Dashboard) drawHeader() {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	drawText(d.screen, 2, 0, style, "heliowatch — live space weather")

	age := "no data yet"
	if !d.current.TakenAt.IsZero() {
		age = fmt.Sprintf("updated %s ago", time.Since(d.current.TakenAt).Round(time.Second))
	}
	drawText(d.screen, 2, 1, tcell.StyleDefault.Foreground(tcell.ColorGray), age)
}

func (d *Dashboard) drawReadings(y int) {
	label := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	value := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)

	rows := []struct {
		name string
		text string
	}{
		{"wind speed", fmt.Sprintf("%.1f km/s", d.current.WindSpeed)},
		{"density", fmt.Sprintf("%.2f p/cm³", d.current.WindDensity)},
		{"kp index", fmt.Sprintf("%.2f  %s", d.current.KpIndex, kpGauge(d.current.KpIndex))},
		{"x-ray", fmt.Sprintf("%s  (%.2e W/m²)", orDash(d.current.FlareClass), d.current.FlareFlux)},
	}

	for i, row := range rows {
		drawText(d.screen, 2, y+i, label, fmt.Sprintf("%-11s", row.name))
		drawText(d.screen, 14, y+i, value, row.text)
	}
}

func (d *Dashboard) drawCharts(y int) {
	width := d.width - 16
	if width < 10 || len(d.history) == 0 {
		return
	}

	speeds := make([]float64, len(d.history))
	kps := make([]float64, len(d.history))
	densities := make([]float64, len(d.history))
	for i, snap := range d.history {
		speeds[i] = snap.WindSpeed
		kps[i] = snap.KpIndex
		densities[i] = snap.WindDensity
	}

	label := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	drawText(d.screen, 2, y, label, "speed")
	drawSparkline(d.screen, 14, y, width, speeds, tcell.ColorGreen)
	drawText(d.screen, 2, y+1, label, "density")
	drawSparkline(d.screen, 14, y+1, width, densities, tcell.ColorBlue)
	drawText(d.screen, 2, y+2, label, "kp")
	drawSparkline(d.screen, 14, y+2, width, kps, kpColor(d.current.KpIndex))
}

func (d *Dashboard) drawStatusLine() {
	state := d.ctrl.State()

	playing := "□ stopped"
	if state.IsPlaying {
		playing = "▶ playing"
	}
	line := fmt.Sprintf("%s  mode:%s  vol:%3.0f%%   [space] sound  [m] mode  [+/-] volume  [q] quit",
		playing, state.Mode, state.Volume*100)
	drawText(d.screen, 2, d.height-2, tcell.StyleDefault.Foreground(tcell.ColorGray), line)

	if d.statusMsg != "" && time.Since(d.statusTime) < 3*time.Second {
		drawText(d.screen, 2, d.height-3, tcell.StyleDefault.Foreground(tcell.ColorYellow), d.statusMsg)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
