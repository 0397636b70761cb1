// Package tui provides the terminal front end built on bubbletea.
//
// View implements ports.UI and ports.Renderer. Presenter and renderer calls
// only record state under a mutex; the bubbletea model polls that state on
// every tick, so no call ever blocks on the program's event loop.
package tui

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// viewState is everything the model draws.
type viewState struct {
	track    domain.Track
	hasTrack bool
	current  float64
	total    float64
	playing  bool
	volume   float64
	tracks   []domain.Track
	status   domain.CatalogStatus
	style    string

	errTitle   string
	errMessage string

	frame    domain.Frame
	hasFrame bool

	quitting bool
}

// View is the terminal implementation of ports.UI.
type View struct {
	logger  *slog.Logger
	options []tea.ProgramOption

	mu        sync.Mutex
	state     viewState
	presenter *ui.Presenter
}

// NewView creates a terminal view. Options are passed to the bubbletea
// program; the alternate screen is used when none are given.
func NewView(logger *slog.Logger, options ...tea.ProgramOption) *View {
	if len(options) == 0 {
		options = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &View{
		logger:  logger.With(slog.String("adapter", "tui")),
		options: options,
	}
}

// SetPresenter connects the presenter to this view.
// This must be called before Run.
func (v *View) SetPresenter(presenter *ui.Presenter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.presenter = presenter
}

func (v *View) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) update(fn func(s *viewState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.state)
}

func (v *View) clearError() {
	v.update(func(s *viewState) { s.errTitle, s.errMessage = "", "" })
}

// ports.UI implementation

// Run starts the bubbletea program and blocks until it exits.
func (v *View) Run() error {
	v.mu.Lock()
	presenter := v.presenter
	v.mu.Unlock()

	program := tea.NewProgram(newModel(v, presenter), v.options...)
	if _, err := program.Run(); err != nil {
		return domain.NewServiceError("tui", "run", "program failed", err)
	}
	return nil
}

// Quit asks the program to exit on its next tick.
// It's safe to call multiple times (idempotent).
func (v *View) Quit() {
	v.update(func(s *viewState) { s.quitting = true })
}

// SetTrackInfo updates the displayed track information.
func (v *View) SetTrackInfo(track domain.Track) {
	v.update(func(s *viewState) { s.track, s.hasTrack = track, true })
}

// SetProgress updates the position, both in seconds.
func (v *View) SetProgress(current, total float64) {
	v.update(func(s *viewState) { s.current, s.total = current, total })
}

// SetPlayState updates the play indicator.
func (v *View) SetPlayState(playing bool) {
	v.update(func(s *viewState) { s.playing = playing })
}

// SetVolume updates the volume gauge.
func (v *View) SetVolume(volume float64) {
	v.update(func(s *viewState) { s.volume = volume })
}

// SetTracks replaces the track list.
func (v *View) SetTracks(tracks []domain.Track) {
	v.update(func(s *viewState) { s.tracks = tracks })
}

// SetCatalogStatus reflects the catalog loading state.
func (v *View) SetCatalogStatus(status domain.CatalogStatus) {
	v.update(func(s *viewState) { s.status = status })
}

// SetStyle shows the active style.
func (v *View) SetStyle(style string) {
	v.update(func(s *viewState) { s.style = style })
}

// ShowError shows the error in the status area until the next key press.
func (v *View) ShowError(title, message string) {
	v.logger.Warn("ui error", slog.String("title", title), slog.String("message", message))
	v.update(func(s *viewState) { s.errTitle, s.errMessage = title, message })
}

// ports.Renderer implementation

// Name identifies the terminal renderer.
func (v *View) Name() string { return "tui" }

// Render stores the frame for the next repaint.
func (v *View) Render(frame domain.Frame) {
	v.update(func(s *viewState) { s.frame, s.hasFrame = frame, true })
}

// Reset drops the stored frame.
func (v *View) Reset() {
	v.update(func(s *viewState) { s.frame, s.hasFrame = domain.Frame{}, false })
}

// Verify interface implementations
var (
	_ ports.UI       = (*View)(nil)
	_ ports.Renderer = (*View)(nil)
)
