package fyne

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/fyne/widgets/visualizer"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/logger"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
	"github.com/tejashwikalptaru/spectrotune/internal/service"
)

type staticCatalog []domain.Track

func (c staticCatalog) Location() string { return "static" }

func (c staticCatalog) Tracks(context.Context) ([]domain.Track, error) { return c, nil }

type harness struct {
	window        *MainWindow
	audio         *mock.Context
	playback      *service.PlaybackService
	visualization *service.VisualizationService
	catalog       *service.CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	app := test.NewTempApp(t)
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
	}, bus)

	w := NewMainWindow(app, log)
	presenter := ui.NewPresenter(log, playback, visualization, catalog, bus, w)
	w.SetPresenter(presenter)
	visualization.Attach(w)

	t.Cleanup(func() {
		presenter.Shutdown()
		visualization.Close()
		catalog.Close()
		_ = playback.Shutdown()
		_ = audio.Close()
		_ = bus.Close()
	})
	return &harness{window: w, audio: audio, playback: playback, visualization: visualization, catalog: catalog}
}

func TestMainWindow_InitialState(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, AppName, h.window.Window().Title())
	assert.Equal(t, series.StyleBars, h.window.styleSelect.Selected)
	assert.Len(t, h.window.styleSelect.Options, len(series.PresetNames()))
	assert.InDelta(t, 80.0, h.window.volumeSlider.Value, 1e-9)
	assert.Equal(t, "No catalog", h.window.statusLabel.Text)
	assert.True(t, h.window.visualizers[visualizer.KindBars].Visible())
	assert.False(t, h.window.visualizers[visualizer.KindDots].Visible())
}

func TestMainWindow_CatalogAndSelection(t *testing.T) {
	h := newHarness(t)

	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, h.window.trackList.Len())
	assert.Equal(t, "Catalog ready", h.window.statusLabel.Text)
	assert.Equal(t, "Tracks (2)", h.window.trackList.header.Text)

	h.window.trackList.onCellDoubleTapped("b")
	h.audio.RunPending()

	assert.Equal(t, "Beta - Second", h.window.songInfo.Text)
	assert.Equal(t, AppName+" - Beta - Second", h.window.Window().Title())
	assert.Equal(t, theme.MediaPauseIcon().Name(), h.window.playButton.Icon.Name())

	test.Tap(h.window.playButton)
	assert.True(t, h.playback.State().IsPaused())
	assert.Equal(t, theme.MediaPlayIcon().Name(), h.window.playButton.Icon.Name())
}

func TestMainWindow_Search(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Load(context.Background())
	require.NoError(t, err)

	h.window.trackList.searchEntry.SetText("alpha")
	assert.Equal(t, 1, h.window.trackList.Len())

	h.window.trackList.searchEntry.SetText("")
	assert.Equal(t, 2, h.window.trackList.Len())
}

func TestMainWindow_Progress(t *testing.T) {
	h := newHarness(t)

	h.window.SetProgress(65, 200)
	assert.Equal(t, "01:05", h.window.currentTime.Text)
	assert.Equal(t, "03:20", h.window.endTime.Text)
	assert.Equal(t, 200.0, h.window.progressSlider.Max)
	assert.Equal(t, 65.0, h.window.progressSlider.Value)

	h.window.SetProgress(0, 0)
	assert.Equal(t, 1.0, h.window.progressSlider.Max)
}

func TestMainWindow_StyleSwitchRoutesFrames(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.visualization.SetStyle(series.StyleScape))
	assert.Equal(t, series.StyleScape, h.window.styleSelect.Selected)
	assert.True(t, h.window.visualizers[visualizer.KindCircular].Visible())
	assert.False(t, h.window.visualizers[visualizer.KindBars].Visible())

	left := make([]byte, 2048)
	for i := range left {
		left[i] = 200
	}
	h.visualization.Process(domain.FrequencySnapshot{Left: left, Right: left})

	circular := h.window.visualizers[visualizer.KindCircular].(*visualizer.Circular)
	frame, ok := circular.CurrentFrame()
	require.True(t, ok)
	assert.Equal(t, series.StyleScape, frame.Style)

	bars := h.window.visualizers[visualizer.KindBars].(*visualizer.Bars)
	_, ok = bars.CurrentFrame()
	assert.False(t, ok)

	h.window.Reset()
	_, ok = circular.CurrentFrame()
	assert.False(t, ok)
}

func TestMainWindow_StyleSelectDrivesService(t *testing.T) {
	h := newHarness(t)

	h.window.styleSelect.SetSelected(series.StyleLines)
	assert.Equal(t, series.StyleLines, h.visualization.Style())
}

func TestMainWindow_VisualizerTapCyclesStyle(t *testing.T) {
	h := newHarness(t)

	test.Tap(h.window.visualStack)
	assert.Equal(t, series.StyleDots, h.visualization.Style())
	assert.True(t, h.window.visualizers[visualizer.KindDots].Visible())
}

func TestMainWindow_VolumeSlider(t *testing.T) {
	h := newHarness(t)

	h.window.volumeSlider.SetValue(25)
	assert.InDelta(t, 0.25, h.playback.Volume(), 1e-9)
}

func TestMainWindow_ShowError(t *testing.T) {
	h := newHarness(t)

	h.window.ShowError("Playback Error", "boom")
	assert.NotEmpty(t, h.window.Window().Canvas().Overlays().List())
}
