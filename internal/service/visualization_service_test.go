package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/logger"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
)

type recordingRenderer struct {
	mu     sync.Mutex
	frames []domain.Frame
	resets int
}

func (r *recordingRenderer) Name() string { return "recording" }

func (r *recordingRenderer) Render(frame domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recordingRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recordingRenderer) counts() (frames, resets int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames), r.resets
}

func testSnapshot(level byte) domain.FrequencySnapshot {
	left := make([]byte, 2048)
	right := make([]byte, 2048)
	for i := range left {
		left[i] = level
		right[i] = level / 2
	}
	return domain.FrequencySnapshot{Left: left, Right: right}
}

func newTestVisualizationService(t *testing.T, style string) (*VisualizationService, *eventbus.SyncEventBus) {
	t.Helper()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	v, err := NewVisualizationService(logger.NewTestLogger(), bus, style)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v, bus
}

func TestVisualizationService_UnknownStyle(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	_, err := NewVisualizationService(logger.NewTestLogger(), bus, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidStyle)
}

func TestVisualizationService_ProcessesSnapshotEvents(t *testing.T) {
	v, bus := newTestVisualizationService(t, series.StyleDots)
	r := &recordingRenderer{}
	v.Attach(r)
	frames := record(bus)

	bus.Publish(domain.NewFrequencySnapshotEvent(testSnapshot(255)))

	n, _ := r.counts()
	require.Equal(t, 1, n)
	frame, ok := v.LatestFrame()
	require.True(t, ok)
	assert.Equal(t, series.StyleDots, frame.Style)

	low, ok := frame.Band(domain.ChannelLeft, series.BandLow)
	require.True(t, ok)
	assert.Len(t, low.Display, 150)
	assert.InDelta(t, 100.0, low.Display[0], 1e-9)
	for _, ratio := range low.Ratio {
		assert.Equal(t, 1.0, ratio, "neutral until history fills")
	}

	mid, ok := frame.Band(domain.ChannelRight, series.BandMid)
	require.True(t, ok)
	assert.InDelta(t, 127.0*100/255, mid.Display[10], 1e-9)

	assert.Len(t, frames.of(domain.EventFrameReady), 1)
}

func TestVisualizationService_SetStyle(t *testing.T) {
	v, bus := newTestVisualizationService(t, series.StyleBars)
	r := &recordingRenderer{}
	v.Attach(r)
	events := record(bus)

	v.Process(testSnapshot(100))
	require.NoError(t, v.SetStyle(series.StyleScape))
	require.NoError(t, v.SetStyle(series.StyleScape), "same style is a no-op")

	assert.Equal(t, series.StyleScape, v.Style())
	_, ok := v.LatestFrame()
	assert.False(t, ok)
	_, resets := r.counts()
	assert.Equal(t, 1, resets)
	assert.Len(t, events.of(domain.EventStyleChanged), 1)

	assert.ErrorIs(t, v.SetStyle("nope"), domain.ErrInvalidStyle)
	assert.Equal(t, series.StyleScape, v.Style())
	assert.Contains(t, v.Styles(), series.StyleLines)
}

func TestVisualizationService_ResetsOnTrackChange(t *testing.T) {
	v, bus := newTestVisualizationService(t, series.StyleLines)
	r := &recordingRenderer{}
	v.Attach(r)

	v.Process(testSnapshot(80))
	bus.Publish(domain.NewTrackLoadedEvent(domain.Track{Source: "b.mp3"}, 0))
	_, ok := v.LatestFrame()
	assert.False(t, ok)

	bus.Publish(domain.NewTrackStoppedEvent(domain.Track{}))
	bus.Publish(domain.NewTrackCompletedEvent(domain.Track{}))
	_, resets := r.counts()
	assert.Equal(t, 3, resets)
}

func TestVisualizationService_Detach(t *testing.T) {
	v, _ := newTestVisualizationService(t, series.StyleBars)
	a, b := &recordingRenderer{}, &recordingRenderer{}
	v.Attach(a)
	v.Attach(b)
	v.Detach(a)

	v.Process(testSnapshot(1))
	na, _ := a.counts()
	nb, _ := b.counts()
	assert.Zero(t, na)
	assert.Equal(t, 1, nb)
}

func TestVisualizationService_CloseUnsubscribes(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	v, err := NewVisualizationService(logger.NewTestLogger(), bus, series.StyleBars)
	require.NoError(t, err)
	r := &recordingRenderer{}
	v.Attach(r)

	v.Close()
	bus.Publish(domain.NewFrequencySnapshotEvent(testSnapshot(10)))

	n, _ := r.counts()
	assert.Zero(t, n)
	assert.False(t, bus.HasSubscribers(domain.EventFrequencySnapshot))
}

// End to end: the playback sampler feeds the visualization pipeline.
func TestVisualizationService_FedBySampler(t *testing.T) {
	svc, ctx, bus := newTestPlaybackService(t)
	v, err := NewVisualizationService(logger.NewTestLogger(), bus, series.StyleBars)
	require.NoError(t, err)
	defer v.Close()

	signal := make([]byte, 64)
	for i := range signal {
		signal[i] = 255
	}
	ctx.SetSignal(signal, signal)
	loadAndPlay(t, svc, ctx, createTestTrack("1", "a.mp3"))

	require.True(t, svc.Sampler().Tick())
	frame, ok := v.LatestFrame()
	require.True(t, ok)
	full, ok := frame.Band(domain.ChannelLeft, series.BandFull)
	require.True(t, ok)
	assert.Len(t, full.Display, 32)
	assert.InDelta(t, 100.0, full.Display[0], 1e-9)
}

// A snapshot still being delivered when the next track loads must not seed
// the new track's history.
func TestVisualizationService_DropsSnapshotDeliveredAcrossLoad(t *testing.T) {
	svc, ctx, bus := newTestPlaybackService(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	bus.Subscribe(domain.EventFrequencySnapshot, func(domain.Event) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	v, err := NewVisualizationService(logger.NewTestLogger(), bus, series.StyleBars)
	require.NoError(t, err)
	defer v.Close()
	r := &recordingRenderer{}
	v.Attach(r)

	signal := make([]byte, 64)
	for i := range signal {
		signal[i] = 200
	}
	ctx.SetSignal(signal, signal)
	loadAndPlay(t, svc, ctx, createTestTrack("a", "a.mp3"))

	ticked := make(chan bool, 1)
	go func() { ticked <- svc.Sampler().Tick() }()
	<-entered

	require.NoError(t, svc.LoadTrack(createTestTrack("b", "b.mp3")))
	_, ok := v.LatestFrame()
	assert.False(t, ok)

	close(release)
	assert.True(t, <-ticked)

	_, ok = v.LatestFrame()
	assert.False(t, ok, "snapshot of the previous track was processed")
	n, _ := r.counts()
	assert.Zero(t, n)

	// The next session feeds the pipeline again.
	ctx.RunPending()
	require.True(t, svc.State().IsPlaying())
	require.True(t, svc.Sampler().Tick())
	_, ok = v.LatestFrame()
	assert.True(t, ok)
}
