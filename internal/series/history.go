package series

// History is a bounded FIFO of frames. When full, pushing evicts the oldest frame.
// It is not safe for concurrent use; Processor serializes access.
type History struct {
	frames [][]float64
	head   int // index of the oldest frame
	size   int
}

// NewHistory creates a history holding at most capacity frames (minimum 1).
func NewHistory(capacity int) *History {
	return &History{frames: make([][]float64, max(capacity, 1))}
}

// Push appends a copy of frame, evicting the oldest entry if the history is full.
func (h *History) Push(frame []float64) {
	c := clone(frame)
	if h.size < len(h.frames) {
		h.frames[(h.head+h.size)%len(h.frames)] = c
		h.size++
		return
	}
	h.frames[h.head] = c
	h.head = (h.head + 1) % len(h.frames)
}

// Len returns the number of stored frames.
func (h *History) Len() int { return h.size }

// Cap returns the maximum number of frames.
func (h *History) Cap() int { return len(h.frames) }

// At returns the frame lookback steps before the latest (0 is the latest).
func (h *History) At(lookback int) ([]float64, bool) {
	if lookback < 0 || lookback >= h.size {
		return nil, false
	}
	return h.frames[(h.head+h.size-1-lookback)%len(h.frames)], true
}

// Latest returns the most recently pushed frame.
func (h *History) Latest() ([]float64, bool) { return h.At(0) }

// Oldest returns the oldest retained frame.
func (h *History) Oldest() ([]float64, bool) { return h.At(h.size - 1) }

// Reset drops every frame.
func (h *History) Reset() {
	clear(h.frames)
	h.head, h.size = 0, 0
}
