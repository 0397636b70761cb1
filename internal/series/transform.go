// Package series turns raw spectral snapshots into the smoothed, historized
// numeric series that renderers draw.
//
// Every function in this file is pure: inputs are never mutated, outputs are
// freshly allocated, and degenerate inputs (empty slices, zero windows) yield
// empty or zero-filled results instead of NaN or panics.
package series

import (
	"gonum.org/v1/gonum/floats"
)

// MaxMagnitude is the upper bound of a byte-quantized frequency bin.
const MaxMagnitude = 255

// FromBytes widens byte magnitudes to float64.
func FromBytes(data []byte) []float64 {
	out := make([]float64, len(data))
	for i, b := range data {
		out[i] = float64(b)
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MovingAverage returns the mean of every full window of the input.
// The result has len(data)-window+1 elements; window <= 1 returns a copy
// and a window longer than the data returns an empty slice.
func MovingAverage(data []float64, window int) []float64 {
	if window <= 1 {
		return clone(data)
	}
	if window > len(data) {
		return []float64{}
	}

	out := make([]float64, len(data)-window+1)
	sum := floats.Sum(data[:window])
	w := float64(window)
	out[0] = sum / w
	for i := 1; i < len(out); i++ {
		sum += data[i+window-1] - data[i-1]
		out[i] = sum / w
	}
	return out
}

// Resize reduces data to n values by averaging n contiguous segments of
// len(data)/n elements; the final segment absorbs the remainder.
//
// When data is shorter than n there are not enough elements to form
// segments, and each output takes the nearest source element instead.
// Empty data yields n zeros.
func Resize(data []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if len(data) == 0 {
		return out
	}

	seg := len(data) / n
	if seg == 0 {
		for i := range out {
			out[i] = data[i*len(data)/n]
		}
		return out
	}

	for i := range n {
		start := i * seg
		end := start + seg
		if i == n-1 {
			end = len(data)
		}
		out[i] = floats.Sum(data[start:end]) / float64(end-start)
	}
	return out
}

// Normalize maps byte-range magnitudes [0,255] to percentages [0,100].
func Normalize(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = Clamp(v*100/MaxMagnitude, 0, 100)
	}
	return out
}

// Interpolate moves prev toward cur by factor: prev[i] + factor*(cur[i]-prev[i]).
// Mismatched lengths mean there is nothing to blend from, so cur is returned as is.
func Interpolate(prev, cur []float64, factor float64) []float64 {
	if len(prev) != len(cur) {
		return clone(cur)
	}
	out := make([]float64, len(cur))
	for i := range cur {
		out[i] = prev[i] + factor*(cur[i]-prev[i])
	}
	return out
}

// Smooth applies exponential smoothing along the slice (across indices, not time).
// Each output is a convex blend of inputs, so the result stays within the input's range.
func Smooth(data []float64, factor float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = out[i-1] + factor*(data[i]-out[i-1])
	}
	return out
}

// Window returns a copy of data[start:end] with both bounds clamped to the slice.
func Window(data []float64, start, end int) []float64 {
	start = max(0, min(start, len(data)))
	end = max(start, min(end, len(data)))
	return clone(data[start:end])
}

// Reverse returns the elements of data in reverse order.
func Reverse(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[len(data)-1-i] = v
	}
	return out
}

// Fill returns n copies of v.
func Fill(n int, v float64) []float64 {
	out := make([]float64, max(n, 0))
	for i := range out {
		out[i] = v
	}
	return out
}

func clone(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	return out
}
