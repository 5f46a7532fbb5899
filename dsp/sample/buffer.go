package sample

import (
	"fmt"

	"github.com/cwbudde/algo-drone/dsp/interp"
)

// Buffer is a fixed-capacity circular sample buffer.
type Buffer struct {
	samples []float64
	head    int
}

// New returns a zeroed buffer holding size samples.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sample buffer size must be > 0: %d", size)
	}
	return &Buffer{samples: make([]float64, size)}, nil
}

// Size returns the buffer capacity in samples.
func (b *Buffer) Size() int {
	return len(b.samples)
}

// Head returns the write cursor: the index the next pushed sample lands on.
func (b *Buffer) Head() int {
	return b.head
}

// Wrap normalizes any integer index into [0, Size()).
func (b *Buffer) Wrap(index int) int {
	n := len(b.samples)
	if index >= 0 && index < n {
		return index
	}
	index %= n
	if index < 0 {
		index += n
	}
	return index
}

// Write stores value at index, wrapping the index into range. The head is
// not moved.
func (b *Buffer) Write(index int, value float64) {
	b.samples[b.Wrap(index)] = value
}

// Push writes value at the head and advances it.
func (b *Buffer) Push(value float64) {
	b.samples[b.head] = value
	b.head++
	if b.head >= len(b.samples) {
		b.head = 0
	}
}

// At returns the sample at index, wrapping the index into range.
func (b *Buffer) At(index int) float64 {
	return b.samples[b.Wrap(index)]
}

// ReadHermite reads between index and index+1 with 4-point Hermite
// interpolation. frac is a 16-bit fraction (0x8000 = half a sample).
func (b *Buffer) ReadHermite(index int, frac uint16) float64 {
	return b.hermite(index, interp.Frac16(int64(frac)))
}

// ReadHermiteAt reads at a fractional sample position.
func (b *Buffer) ReadHermiteAt(pos float64) float64 {
	i := int(pos)
	if float64(i) > pos {
		i--
	}
	return b.hermite(i, pos-float64(i))
}

func (b *Buffer) hermite(index int, t float64) float64 {
	n := len(b.samples)

	i0 := b.Wrap(index)
	im1 := i0 - 1
	if im1 < 0 {
		im1 += n
	}
	i1 := i0 + 1
	if i1 >= n {
		i1 -= n
	}
	i2 := i1 + 1
	if i2 >= n {
		i2 -= n
	}

	return interp.Hermite4(t, b.samples[im1], b.samples[i0], b.samples[i1], b.samples[i2])
}

// Clear zeroes the storage and rewinds the head.
func (b *Buffer) Clear() {
	for i := range b.samples {
		b.samples[i] = 0
	}
	b.head = 0
}
