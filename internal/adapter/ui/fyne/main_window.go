// Package fyne provides the Fyne desktop front end.
// MainWindow implements ports.UI for the shared presenter and routes
// visualization frames to the raster visualizers.
package fyne

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/fyne/widgets/visualizer"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
	"github.com/tejashwikalptaru/spectrotune/res"
)

// Window geometry and behavior.
const (
	AppName      = "Spectrotune"
	windowWidth  = 960
	windowHeight = 600
	marqueeWidth = 40
	marqueeTick  = 300 * time.Millisecond
	seekStep     = 5 * time.Second
	volumeStep   = 0.05
)

// MainWindow is the main UI window implementing ports.UI.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// ports.UI methods may be called from any goroutine; they are marshaled onto
// the fyne thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	prevButton     *widget.Button
	playButton     *widget.Button
	stopButton     *widget.Button
	nextButton     *widget.Button
	styleSelect    *widget.Select
	songInfo       *widget.Label
	statusLabel    *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider
	trackList      *TrackList
	visualStack    *widgets.TappableStack

	// Visualizers by kind; the map is fixed after construction
	visualizers map[visualizer.Kind]visualizer.MusicVisualizer
	activeKind  visualizer.Kind

	// State (fyne thread only)
	rotator      *widgets.Rotator
	syncingStyle bool

	// Lifecycle management
	stopScroll chan struct{}
	scrollWG   sync.WaitGroup
	closeOnce  sync.Once

	// Presenter (set after construction)
	presenter *ui.Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:        app,
		logger:     logger.With(slog.String("adapter", "fyne")),
		rotator:    widgets.NewRotator(AppName, marqueeWidth),
		stopScroll: make(chan struct{}),
		activeKind: visualizer.KindBars,
	}

	w.window = app.NewWindow(AppName)

	w.buildUI()

	w.window.Resize(fyneapp.NewSize(windowWidth, windowHeight))
	w.window.SetOnClosed(w.stopScrollInfoRoutine)

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *ui.Presenter) {
	w.presenter = presenter
	w.styleSelect.Options = presenter.Styles()
	w.styleSelect.Refresh()
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Visualizers, only the active one is visible
	w.visualizers = make(map[visualizer.Kind]visualizer.MusicVisualizer)
	objects := make([]fyneapp.CanvasObject, 0, len(visualizer.GetKinds()))
	for _, info := range visualizer.GetKinds() {
		v := visualizer.Factory(info.Kind)
		if info.Kind != w.activeKind {
			v.Hide()
		}
		w.visualizers[info.Kind] = v
		objects = append(objects, v)
	}
	w.visualStack = widgets.NewTappableStack(container.NewStack(objects...), func() {
		if w.presenter != nil {
			w.presenter.OnStyleStep(1)
		}
	}, w.showStyleMenu)

	// Control buttons
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)

	w.styleSelect = widget.NewSelect(series.PresetNames(), nil)
	w.styleSelect.PlaceHolder = "Style"

	// Song info label
	w.songInfo = widget.NewLabel(AppName)
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}

	w.statusLabel = widget.NewLabel(catalogStatusText(domain.CatalogIdle))

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)

	buttonsHBox := container.NewHBox(w.prevButton, w.playButton, w.stopButton, w.nextButton, w.styleSelect)
	buttonsHolder := container.NewBorder(nil, nil, buttonsHBox, container.NewGridWrap(fyneapp.NewSize(160, 36), volumeHolder), w.songInfo)

	// Progress slider
	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.1
	w.currentTime = widget.NewLabel(domain.FormatDuration(0))
	w.endTime = widget.NewLabel(domain.FormatDuration(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	// Catalog panel
	w.trackList = NewTrackList(func(id string) {
		if w.presenter != nil {
			_ = w.presenter.OnTrackSelected(id)
		}
	})
	side := container.NewBorder(nil, w.statusLabel, nil, nil, w.trackList.Content())

	split := container.NewHSplit(side, w.visualStack)
	split.Offset = 0.3

	controls := container.NewVBox(sliderHolder, buttonsHolder)
	w.window.SetContent(container.NewPadded(container.NewBorder(nil, controls, nil, nil, split)))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.stopButton.OnTapped = w.presenter.OnStopClicked
	w.nextButton.OnTapped = func() { _ = w.presenter.OnTrackStep(1) }
	w.prevButton.OnTapped = func() { _ = w.presenter.OnTrackStep(-1) }

	w.styleSelect.OnChanged = func(style string) {
		if !w.syncingStyle {
			w.presenter.OnStyleSelected(style)
		}
	}

	w.volumeSlider.OnChanged = func(value float64) {
		w.presenter.OnVolumeChanged(value / 100.0)
	}

	// Only user drags seek; programmatic progress updates set Value directly.
	w.progressSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnSeekRequested(value)
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open File...", w.handleOpenFile)
	reload := fyneapp.NewMenuItem("Reload Catalog", func() {
		if w.presenter != nil {
			w.presenter.OnReloadRequested()
		}
	})
	exitMenu := fyneapp.NewMenuItem("Exit", w.Quit)

	about := fyneapp.NewMenuItem("About", w.showAbout)

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openFile, reload, separator, exitMenu),
		fyneapp.NewMenu("Help", about),
	}
}

// showStyleMenu pops up the style list over the visualizer.
func (w *MainWindow) showStyleMenu(pe *fyneapp.PointEvent) {
	if w.presenter == nil {
		return
	}

	items := make([]*fyneapp.MenuItem, 0, len(w.styleSelect.Options))
	for _, style := range w.styleSelect.Options {
		item := fyneapp.NewMenuItem(style, func() { w.presenter.OnStyleSelected(style) })
		item.Checked = style == w.styleSelect.Selected
		items = append(items, item)
	}
	widget.ShowPopUpMenuAtPosition(fyneapp.NewMenu("Style", items...), w.window.Canvas(), pe.AbsolutePosition)
}

// handleOpenFile handles the "Open File" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, func(filePath string) {
		_ = w.presenter.OnFileOpened(filePath)
	}, w.logger).Show()
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(res.AboutContent)
	content.Wrapping = fyneapp.TextWrapWord
	d := dialog.NewCustom("About "+AppName, "Close", content, w.window)
	d.Resize(fyneapp.NewSize(420, 260))
	d.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()

	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyneapp.KeyUp, Modifier: fyneapp.KeyModifierAlt},
		func(fyneapp.Shortcut) { w.presenter.OnVolumeStep(volumeStep) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyneapp.KeyDown, Modifier: fyneapp.KeyModifierAlt},
		func(fyneapp.Shortcut) { w.presenter.OnVolumeStep(-volumeStep) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyneapp.KeyRight, Modifier: fyneapp.KeyModifierAlt},
		func(fyneapp.Shortcut) { w.presenter.OnSeekRelative(seekStep) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyneapp.KeyLeft, Modifier: fyneapp.KeyModifierAlt},
		func(fyneapp.Shortcut) { w.presenter.OnSeekRelative(-seekStep) })

	c.SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		switch ev.Name {
		case fyneapp.KeySpace:
			w.presenter.OnPlayClicked()
		case fyneapp.KeyV:
			w.presenter.OnStyleStep(1)
		}
	})
}

// startScrollInfoRoutine scrolls long track titles in the song info label.
func (w *MainWindow) startScrollInfoRoutine() {
	w.scrollWG.Add(1)
	go func() {
		defer w.scrollWG.Done()
		ticker := time.NewTicker(marqueeTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fyneapp.Do(func() {
					w.songInfo.SetText(w.rotator.Rotate())
				})
			case <-w.stopScroll:
				return
			}
		}
	}()
}

func (w *MainWindow) stopScrollInfoRoutine() {
	w.closeOnce.Do(func() {
		close(w.stopScroll)
	})
}

// Window returns the underlying Fyne window.
func (w *MainWindow) Window() fyneapp.Window {
	return w.window
}

// ports.UI implementation

// Run shows the window and blocks until the application quits.
func (w *MainWindow) Run() error {
	w.startScrollInfoRoutine()
	w.window.ShowAndRun()
	w.stopScrollInfoRoutine()
	w.scrollWG.Wait()
	return nil
}

// Quit closes the window and the application.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Quit() {
	w.stopScrollInfoRoutine()
	fyneapp.Do(func() {
		w.window.Close()
		w.app.Quit()
	})
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(track domain.Track) {
	fyneapp.Do(func() {
		text := track.DisplayName()
		w.rotator = widgets.NewRotator(text, marqueeWidth)
		w.songInfo.SetText(text)
		w.window.SetTitle(fmt.Sprintf("%s - %s", AppName, text))
		w.trackList.SetCurrent(track.ID)
	})
}

// SetProgress updates the position labels and the seek bar.
func (w *MainWindow) SetProgress(current, total float64) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatSeconds(current))
		w.endTime.SetText(formatSeconds(total))
		w.progressSlider.Max = max(total, 1)
		w.progressSlider.Value = min(current, w.progressSlider.Max)
		w.progressSlider.Refresh()
	})
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		// Convert from 0.0-1.0 to 0-100
		w.volumeSlider.Value = volume * 100.0
		w.volumeSlider.Refresh()
	})
}

// SetTracks replaces the catalog panel content.
func (w *MainWindow) SetTracks(tracks []domain.Track) {
	fyneapp.Do(func() {
		w.trackList.SetTracks(tracks)
	})
}

// SetCatalogStatus reflects the catalog loading state.
func (w *MainWindow) SetCatalogStatus(status domain.CatalogStatus) {
	fyneapp.Do(func() {
		w.statusLabel.SetText(catalogStatusText(status))
	})
}

// SetStyle selects the style and shows the visualizer that draws it.
func (w *MainWindow) SetStyle(style string) {
	fyneapp.Do(func() {
		w.syncingStyle = true
		w.styleSelect.SetSelected(style)
		w.syncingStyle = false

		kind := visualizer.KindForStyle(style)
		if kind == w.activeKind {
			return
		}
		w.visualizers[w.activeKind].Hide()
		w.visualizers[kind].Show()
		w.activeKind = kind
	})
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title, message string) {
	w.logger.Warn("ui error", slog.String("title", title), slog.String("message", message))
	fyneapp.Do(func() {
		dialog.ShowInformation(title, message, w.window)
	})
}

// ports.Renderer implementation

// Name identifies the desktop renderer.
func (w *MainWindow) Name() string { return "fyne" }

// Render hands the frame to the visualizer that draws its style.
func (w *MainWindow) Render(frame domain.Frame) {
	if v, ok := w.visualizers[visualizer.KindForStyle(frame.Style)]; ok {
		v.Render(frame)
	}
}

// Reset clears every visualizer.
func (w *MainWindow) Reset() {
	for _, v := range w.visualizers {
		v.Reset()
	}
}

func formatSeconds(seconds float64) string {
	return domain.FormatDuration(time.Duration(seconds * float64(time.Second)))
}

func catalogStatusText(status domain.CatalogStatus) string {
	switch status {
	case domain.CatalogLoading:
		return "Loading catalog..."
	case domain.CatalogReady:
		return "Catalog ready"
	case domain.CatalogFailed:
		return "Catalog unavailable"
	default:
		return "No catalog"
	}
}

// Verify interface implementations
var (
	_ ports.UI       = (*MainWindow)(nil)
	_ ports.Renderer = (*MainWindow)(nil)
)
