package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

func TestValidFFTSize(t *testing.T) {
	tests := []struct {
		size int
		want bool
	}{
		{16, false},
		{32, true},
		{1000, false},
		{1024, true},
		{4096, true},
		{32768, true},
		{65536, false},
		{0, false},
		{-64, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidFFTSize(tt.size), "size %d", tt.size)
	}
}

func TestAudioGraph_Topology(t *testing.T) {
	ctx := mock.NewContext(nil)
	g, err := NewAudioGraph(ctx, 2048)
	require.NoError(t, err)

	gains := ctx.Gains()
	require.Len(t, gains, 1)
	outputs := gains[0].Outputs()
	require.Len(t, outputs, 2)
	assert.Equal(t, "splitter", outputs[0].(*mock.Node).Kind())
	assert.Same(t, ctx.Destination(), outputs[1])

	left, right := g.Analysers()
	assert.Equal(t, 2048, left.FFTSize())
	assert.Equal(t, 1024, right.FrequencyBinCount())
	assert.Equal(t, 2048, g.FFTSize())
	assert.Nil(t, g.Source())
}

func TestAudioGraph_InvalidSize(t *testing.T) {
	ctx := mock.NewContext(nil)
	_, err := NewAudioGraph(ctx, 100)

	var graphErr *domain.AudioGraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "build", graphErr.Op)
	assert.ErrorIs(t, err, domain.ErrInvalidTransformSize)
	assert.Empty(t, ctx.Gains(), "no nodes built for a rejected size")
}

func TestAudioGraph_ClosedContext(t *testing.T) {
	ctx := mock.NewContext(nil)
	require.NoError(t, ctx.Close())

	_, err := NewAudioGraph(ctx, 1024)
	assert.ErrorIs(t, err, domain.ErrContextClosed)
}

func TestAudioGraph_ReplaceSource(t *testing.T) {
	ctx := mock.NewContext(nil)
	g, err := NewAudioGraph(ctx, 1024)
	require.NoError(t, err)

	first, err := ctx.NewMediaSource("a.mp3")
	require.NoError(t, err)
	require.NoError(t, g.ReplaceSource(first))
	assert.Equal(t, 1, ctx.ConnectedSources())

	second, err := ctx.NewMediaSource("b.mp3")
	require.NoError(t, err)
	require.NoError(t, g.ReplaceSource(second))

	assert.Equal(t, 1, ctx.ConnectedSources())
	assert.True(t, first.(*mock.MediaSource).Closed())
	assert.Same(t, second, g.Source())

	require.NoError(t, g.ReplaceSource(nil))
	assert.Zero(t, ctx.ConnectedSources())
	assert.Nil(t, g.Source())
}

func TestAudioGraph_SetGain(t *testing.T) {
	ctx := mock.NewContext(nil)
	g, err := NewAudioGraph(ctx, 1024)
	require.NoError(t, err)

	require.NoError(t, g.SetGain(0.25))
	assert.Equal(t, 0.25, g.Gain())
	assert.Equal(t, 0.25, ctx.Gains()[0].Gain())
}

func TestAudioGraph_Teardown(t *testing.T) {
	ctx := mock.NewContext(nil)
	g, err := NewAudioGraph(ctx, 1024)
	require.NoError(t, err)

	src, err := ctx.NewMediaSource("a.mp3")
	require.NoError(t, err)
	require.NoError(t, g.ReplaceSource(src))

	require.NoError(t, g.Teardown())
	require.NoError(t, g.Teardown())

	assert.True(t, src.(*mock.MediaSource).Closed())
	assert.Zero(t, ctx.ConnectedSources())
	assert.False(t, ctx.Gains()[0].Connected())
	assert.ErrorIs(t, g.SetGain(1), domain.ErrGraphClosed)
	assert.ErrorIs(t, g.ReplaceSource(nil), domain.ErrGraphClosed)
}
