package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
)

// VisualizationService turns sampled snapshots into renderer frames using the
// active style's processor and fans them out to attached renderers.
type VisualizationService struct {
	logger *slog.Logger
	bus    ports.EventBus

	mu        sync.Mutex
	processor *series.Processor
	latest    domain.Frame
	hasFrame  bool
	renderers []ports.Renderer
	subs      []domain.SubscriptionID
}

// NewVisualizationService creates the service with the given style and
// subscribes it to snapshot and transport events.
func NewVisualizationService(logger *slog.Logger, bus ports.EventBus, style string) (*VisualizationService, error) {
	p, err := newStyleProcessor(style)
	if err != nil {
		return nil, err
	}

	v := &VisualizationService{
		logger:    logger.With(slog.String("service", "visualization")),
		bus:       bus,
		processor: p,
	}
	v.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventFrequencySnapshot, v.onSnapshot),
		bus.Subscribe(domain.EventTrackLoaded, v.onReset),
		bus.Subscribe(domain.EventTrackStopped, v.onReset),
		bus.Subscribe(domain.EventTrackCompleted, v.onReset),
	}
	return v, nil
}

func newStyleProcessor(style string) (*series.Processor, error) {
	cfg, err := series.Preset(style)
	if err != nil {
		return nil, err
	}
	return series.NewProcessor(cfg)
}

// Attach registers a renderer to receive every frame.
func (v *VisualizationService) Attach(r ports.Renderer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderers = append(v.renderers, r)
}

// Detach removes a renderer.
func (v *VisualizationService) Detach(r ports.Renderer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.renderers {
		if existing == r {
			v.renderers = append(v.renderers[:i:i], v.renderers[i+1:]...)
			return
		}
	}
}

// Style returns the active style name.
func (v *VisualizationService) Style() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.processor.Config().Style
}

// Styles lists the available style names.
func (v *VisualizationService) Styles() []string {
	return series.PresetNames()
}

// SetStyle switches presets. History starts empty under the new style.
func (v *VisualizationService) SetStyle(style string) error {
	p, err := newStyleProcessor(style)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.processor.Config().Style == style {
		v.mu.Unlock()
		return nil
	}
	v.processor = p
	v.hasFrame = false
	renderers := append([]ports.Renderer(nil), v.renderers...)
	v.mu.Unlock()

	for _, r := range renderers {
		r.Reset()
	}
	v.logger.Debug("style changed", slog.String("style", style))
	v.bus.Publish(domain.NewStyleChangedEvent(style))
	return nil
}

// LatestFrame returns the most recent processed frame.
func (v *VisualizationService) LatestFrame() (domain.Frame, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest, v.hasFrame
}

// Process runs one snapshot through the active processor and delivers the frame.
func (v *VisualizationService) Process(snapshot domain.FrequencySnapshot) domain.Frame {
	frame, _ := v.process(snapshot, nil)
	return frame
}

// process checks current under the same lock Reset takes, so a snapshot is
// either processed before a reset clears it or rejected after.
func (v *VisualizationService) process(snapshot domain.FrequencySnapshot, current func() bool) (domain.Frame, bool) {
	v.mu.Lock()
	if current != nil && !current() {
		v.mu.Unlock()
		return domain.Frame{}, false
	}
	frame := v.processor.Process(snapshot)
	v.latest = frame
	v.hasFrame = true
	renderers := append([]ports.Renderer(nil), v.renderers...)
	v.mu.Unlock()

	for _, r := range renderers {
		r.Render(frame)
	}
	if v.bus.HasSubscribers(domain.EventFrameReady) {
		v.bus.Publish(domain.NewFrameReadyEvent(frame))
	}
	return frame, true
}

// Reset clears history and renderers so stale data does not carry into the next track.
func (v *VisualizationService) Reset() {
	v.mu.Lock()
	v.processor.Reset()
	v.hasFrame = false
	renderers := append([]ports.Renderer(nil), v.renderers...)
	v.mu.Unlock()

	for _, r := range renderers {
		r.Reset()
	}
}

// Close unsubscribes from the bus.
func (v *VisualizationService) Close() {
	v.mu.Lock()
	subs := v.subs
	v.subs = nil
	v.mu.Unlock()

	for _, id := range subs {
		v.bus.Unsubscribe(id)
	}
}

func (v *VisualizationService) onSnapshot(event domain.Event) {
	e, ok := event.(domain.FrequencySnapshotEvent)
	if !ok {
		return
	}
	if _, ok := v.process(e.Snapshot, e.Current); !ok {
		v.logger.Debug("stale snapshot dropped", slog.Uint64("sequence", e.Snapshot.Sequence))
	}
}

func (v *VisualizationService) onReset(domain.Event) {
	v.Reset()
}
