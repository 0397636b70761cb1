package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/logger"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
	"github.com/tejashwikalptaru/spectrotune/internal/service"
)

type staticCatalog []domain.Track

func (c staticCatalog) Location() string { return "static" }

func (c staticCatalog) Tracks(context.Context) ([]domain.Track, error) { return c, nil }

type harness struct {
	view          *View
	model         *model
	audio         *mock.Context
	playback      *service.PlaybackService
	visualization *service.VisualizationService
	catalog       *service.CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	audio := mock.NewContext(log)

	cfg := service.DefaultPlaybackConfig()
	cfg.PollInterval = time.Hour
	cfg.ProgressInterval = time.Hour
	playback, err := service.NewPlaybackService(log, audio, bus, cfg)
	require.NoError(t, err)
	visualization, err := service.NewVisualizationService(log, bus, series.StyleBars)
	require.NoError(t, err)
	catalog := service.NewCatalogService(log, staticCatalog{
		{ID: "a", Artist: "Alpha", Song: "First", Source: "a.mp3", Duration: 2 * time.Minute},
		{ID: "b", Artist: "Beta", Song: "Second", Source: "b.mp3"},
		{ID: "c", Artist: "Gamma", Song: "Third", Source: "c.mp3"},
	}, bus)

	view := NewView(log)
	presenter := ui.NewPresenter(log, playback, visualization, catalog, bus, view)
	view.SetPresenter(presenter)
	visualization.Attach(view)

	t.Cleanup(func() {
		presenter.Shutdown()
		visualization.Close()
		catalog.Close()
		_ = playback.Shutdown()
		_ = audio.Close()
		_ = bus.Close()
	})
	return &harness{
		view:          view,
		model:         newModel(view, presenter),
		audio:         audio,
		playback:      playback,
		visualization: visualization,
		catalog:       catalog,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) press(t *testing.T, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := h.model.Update(msg)
	return cmd
}

func TestModel_InitialState(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, series.StyleBars, h.model.state.style)
	assert.InDelta(t, 0.8, h.model.state.volume, 1e-9)

	out := h.model.View()
	assert.Contains(t, out, appName)
	assert.Contains(t, out, "style: bars")
	assert.Contains(t, out, "volume: 80%")
	assert.Contains(t, out, "No catalog")
	assert.Contains(t, out, "No tracks")
}

func TestModel_TickRefreshesState(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)

	_, cmd := h.model.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	out := h.model.View()
	assert.Contains(t, out, "Tracks (3)")
	assert.Contains(t, out, "Alpha - First  [02:00]")
	assert.Contains(t, out, "Catalog ready")
}

func TestModel_SelectWithCursor(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)
	h.model.refresh()

	h.press(t, tea.KeyMsg{Type: tea.KeyDown})
	h.press(t, runes("j"))
	h.press(t, runes("j"))
	assert.Equal(t, 2, h.model.cursor, "cursor is clamped to the list")
	h.press(t, runes("k"))

	cmd := h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	h.audio.RunPending()
	h.model.refresh()

	assert.Equal(t, "b", h.model.state.track.ID)
	assert.True(t, h.model.state.playing)
	assert.Contains(t, h.model.View(), "▶ Beta - Second")

	h.press(t, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, h.playback.State().IsPaused())
	assert.False(t, h.model.state.playing)

	h.press(t, runes("s"))
	assert.Equal(t, domain.StatusStopped, h.playback.State().Status)
}

func TestModel_NextPrev(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)

	h.press(t, runes("n"))()
	h.model.refresh()
	assert.Equal(t, "a", h.model.state.track.ID)

	h.press(t, runes("p"))()
	h.model.refresh()
	assert.Equal(t, "c", h.model.state.track.ID)
}

func TestModel_VolumeStyleAndSeek(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)
	h.press(t, runes("n"))()
	h.audio.RunPending()

	h.press(t, runes("-"))
	assert.InDelta(t, 0.75, h.playback.Volume(), 1e-9)
	h.press(t, runes("+"))
	assert.InDelta(t, 0.8, h.playback.Volume(), 1e-9)

	styles := series.PresetNames()
	h.press(t, runes("v"))
	assert.NotEqual(t, series.StyleBars, h.visualization.Style())
	h.press(t, runes("V"))
	assert.Equal(t, series.StyleBars, h.visualization.Style())
	assert.Len(t, styles, len(h.visualization.Styles()))

	h.press(t, tea.KeyMsg{Type: tea.KeyRight})
	assert.InDelta(t, 5.0, h.model.state.current, 1e-9)
	h.press(t, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Zero(t, h.model.state.current)
}

func TestModel_ErrorShownUntilKey(t *testing.T) {
	h := newHarness(t)

	h.press(t, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Contains(t, h.model.View(), "Nothing to play")

	h.press(t, runes("x"))
	assert.NotContains(t, h.model.View(), "Nothing to play")
}

func TestModel_RendersFrames(t *testing.T) {
	h := newHarness(t)

	loud := make([]byte, 2048)
	for i := range loud {
		loud[i] = 255
	}
	h.visualization.Process(domain.FrequencySnapshot{Left: loud, Right: loud})
	h.model.refresh()
	require.True(t, h.model.state.hasFrame)
	assert.Contains(t, h.model.View(), "█")

	h.view.Reset()
	h.model.refresh()
	assert.False(t, h.model.state.hasFrame)
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)

	cmd := h.press(t, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	h.view.Quit()
	_, cmd = h.model.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_RunStopsOnQuit(t *testing.T) {
	view := NewView(logger.NewTestLogger(), tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer())

	done := make(chan error, 1)
	go func() { done <- view.Run() }()

	view.Quit()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("program did not stop")
	}
}

func TestView_Name(t *testing.T) {
	assert.Equal(t, "tui", NewView(logger.NewTestLogger()).Name())
}
