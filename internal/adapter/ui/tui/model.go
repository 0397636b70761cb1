package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

const (
	appName       = "Spectrotune"
	frameInterval = 50 * time.Millisecond
	seekStep      = 5 * time.Second
	volumeStep    = 0.05
	spectrumRows  = 4
	listRows      = 8
	minWidth      = 20
)

// tickMsg is sent periodically to repaint from the view state.
type tickMsg time.Time

// model is the bubbletea model. Commands go to the presenter; what is drawn
// always comes from the view state snapshot.
type model struct {
	view      *View
	presenter *ui.Presenter

	// Dimensions
	width  int
	height int

	cursor   int
	state    viewState
	spectrum Spectrum

	// Styles
	titleStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	errorStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	filledStyle   lipgloss.Style
	emptyStyle    lipgloss.Style
	controlsStyle lipgloss.Style
	borderStyle   lipgloss.Style
}

func newModel(view *View, presenter *ui.Presenter) *model {
	return &model{
		view:      view,
		presenter: presenter,
		width:     80,
		height:    24,
		state:     view.snapshot(),
		spectrum:  NewSpectrum(spectrumRows),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		cursorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")),
		filledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		emptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		controlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}

// Init starts the repaint ticker.
func (m *model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.refresh()
		if m.state.quitting {
			return m, tea.Quit
		}
		return m, tickCmd()

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *model) refresh() {
	m.state = m.view.snapshot()
	m.cursor = max(0, min(m.cursor, len(m.state.tracks)-1))
}

// handleKey maps key bindings to presenter commands. Track loads run as
// commands so decoding never stalls the event loop.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		return tea.Quit
	}

	m.view.clearError()
	if m.presenter == nil {
		return nil
	}

	switch key {
	case " ":
		m.presenter.OnPlayClicked()
	case "s":
		m.presenter.OnStopClicked()
	case "left":
		m.presenter.OnSeekRelative(-seekStep)
	case "right":
		m.presenter.OnSeekRelative(seekStep)
	case "+", "=":
		m.presenter.OnVolumeStep(volumeStep)
	case "-":
		m.presenter.OnVolumeStep(-volumeStep)
	case "v":
		m.presenter.OnStyleStep(1)
	case "V":
		m.presenter.OnStyleStep(-1)
	case "r":
		m.presenter.OnReloadRequested()
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "n":
		return m.trackCmd(func(p *ui.Presenter) error { return p.OnTrackStep(1) })
	case "p":
		return m.trackCmd(func(p *ui.Presenter) error { return p.OnTrackStep(-1) })
	case "enter":
		tracks := m.view.snapshot().tracks
		if m.cursor >= 0 && m.cursor < len(tracks) {
			id := tracks[m.cursor].ID
			return m.trackCmd(func(p *ui.Presenter) error { return p.OnTrackSelected(id) })
		}
	}
	return nil
}

// trackCmd runs a presenter call off the event loop. Failures are already
// surfaced through ShowError.
func (m *model) trackCmd(fn func(p *ui.Presenter) error) tea.Cmd {
	presenter := m.presenter
	return func() tea.Msg {
		_ = fn(presenter)
		return nil
	}
}

// View renders the UI.
func (m *model) View() string {
	inner := max(m.width-4, minWidth)
	s := m.state

	sections := []string{
		m.renderHeader(s),
		m.renderProgress(s, inner),
		m.renderSpectrum(s, inner),
		m.renderTracks(s, inner),
		m.renderStatus(s),
		m.controlsStyle.Render("[Space] Play/Pause  [s] Stop  [←/→] Seek  [+/-] Volume  [n/p] Next/Prev  [v] Style  [r] Reload  [q] Quit"),
	}
	return m.borderStyle.Width(inner + 2).Render(strings.Join(sections, "\n\n"))
}

func (m *model) renderHeader(s viewState) string {
	icon := "⏹"
	if s.playing {
		icon = "▶"
	} else if s.hasTrack && s.current > 0 {
		icon = "⏸"
	}

	title := appName
	if s.hasTrack {
		title = s.track.DisplayName()
	}
	return m.statusStyle.Render(icon+" ") + m.titleStyle.Render(title) +
		m.dimStyle.Render(fmt.Sprintf("   style: %s   volume: %d%%", s.style, int(s.volume*100+0.5)))
}

func (m *model) renderProgress(s viewState, width int) string {
	times := fmt.Sprintf(" %s / %s", formatSeconds(s.current), formatSeconds(s.total))
	barWidth := max(width-lipgloss.Width(times), 10)

	var percent float64
	if s.total > 0 {
		percent = max(0, min(1, s.current/s.total))
	}
	filled := int(float64(barWidth) * percent)

	return m.filledStyle.Render(strings.Repeat("█", filled)) +
		m.emptyStyle.Render(strings.Repeat("░", barWidth-filled)) + times
}

func (m *model) renderSpectrum(s viewState, width int) string {
	if !s.hasFrame {
		blank := strings.Repeat(" ", width)
		rows := make([]string, 2*m.spectrum.Rows)
		for i := range rows {
			rows[i] = blank
		}
		return strings.Join(rows, "\n")
	}
	left := flatten(s.frame, domain.ChannelLeft)
	right := flatten(s.frame, domain.ChannelRight)
	return m.spectrum.Render(left, width, false) + "\n" + m.spectrum.Render(right, width, true)
}

func (m *model) renderTracks(s viewState, width int) string {
	if len(s.tracks) == 0 {
		return m.dimStyle.Render("No tracks. Press [r] to reload the catalog.")
	}

	// Keep the cursor inside a window of listRows entries
	start := max(0, min(m.cursor-listRows/2, len(s.tracks)-listRows))
	end := min(len(s.tracks), start+listRows)

	lines := make([]string, 0, end-start+1)
	lines = append(lines, m.titleStyle.Render(fmt.Sprintf("Tracks (%d)", len(s.tracks))))
	for i := start; i < end; i++ {
		track := s.tracks[i]
		marker := "  "
		if s.hasTrack && track.ID == s.track.ID {
			marker = "▶ "
		}
		line := marker + track.DisplayName()
		if track.Duration > 0 {
			line += "  [" + domain.FormatDuration(track.Duration) + "]"
		}
		line = truncate(line, width)
		if i == m.cursor {
			line = m.cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderStatus(s viewState) string {
	if s.errTitle != "" {
		return m.errorStyle.Render(fmt.Sprintf("%s: %s", s.errTitle, s.errMessage))
	}
	return m.dimStyle.Render(catalogStatusText(s.status))
}

// flatten joins the display series of every band of a channel.
func flatten(frame domain.Frame, ch domain.Channel) []float64 {
	var out []float64
	for _, b := range frame.Channels[ch] {
		out = append(out, b.Display...)
	}
	return out
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
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
