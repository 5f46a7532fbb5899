package granular

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-drone/dsp/interp"
	"github.com/cwbudde/algo-drone/dsp/sample"
)

func filledBuffer(t *testing.T, size int, fill func(i int) float64) *sample.Buffer {
	t.Helper()
	b, err := sample.New(size)
	if err != nil {
		t.Fatalf("sample.New(%d) error = %v", size, err)
	}
	for i := range size {
		b.Push(fill(i))
	}
	return b
}

func TestGrainCompletesAfterWidth(t *testing.T) {
	b := filledBuffer(t, 1024, func(int) float64 { return 1 })

	var g Grain
	g.Start(0, b.Size(), 100, 64, interp.FracOne, 0, 1, 1)
	if !g.Active() {
		t.Fatal("Active() = false after Start, want true")
	}

	dst := make([]float64, 2*128)
	first, end := g.OverlapAdd(b, nil, dst, 128)
	if first != 0 || end != 64 {
		t.Fatalf("OverlapAdd() = (%d, %d), want (0, 64)", first, end)
	}
	if g.Active() {
		t.Fatal("Active() = true after envelope completed, want false")
	}

	if dst[0] != 0 {
		t.Fatalf("first frame = %v, want 0 (envelope starts closed)", dst[0])
	}
	if math.Abs(dst[2*32]-1) > 1e-12 {
		t.Fatalf("peak frame = %v, want 1", dst[2*32])
	}
	for i := 64; i < 128; i++ {
		if dst[2*i] != 0 || dst[2*i+1] != 0 {
			t.Fatalf("frame %d = (%v, %v) after grain end, want silence", i, dst[2*i], dst[2*i+1])
		}
	}
}

func TestGrainPreDelaySpansBlocks(t *testing.T) {
	b := filledBuffer(t, 1024, func(int) float64 { return 1 })

	var g Grain
	g.Start(200, b.Size(), 0, 32, interp.FracOne, 0, 1, 1)

	dst := make([]float64, 2*128)
	if first, end := g.OverlapAdd(b, nil, dst, 128); first != 0 || end != 0 {
		t.Fatalf("first block OverlapAdd() = (%d, %d), want (0, 0)", first, end)
	}
	first, end := g.OverlapAdd(b, nil, dst, 128)
	if first != 72 || end != 104 {
		t.Fatalf("second block OverlapAdd() = (%d, %d), want (72, 104)", first, end)
	}
}

func TestGrainReverseReadsBackwards(t *testing.T) {
	b := filledBuffer(t, 1024, func(i int) float64 { return float64(i) })

	var g Grain
	g.Start(0, b.Size(), 500, 16, -interp.FracOne, 0, 1, 1)

	dst := make([]float64, 2*16)
	g.OverlapAdd(b, nil, dst, 16)

	// Envelope peaks at frame 8 with unit gain.
	if got, want := dst[2*8], 492.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("frame 8 = %v, want %v", got, want)
	}
}

func TestGrainStereoPanAndMono(t *testing.T) {
	left := filledBuffer(t, 256, func(int) float64 { return 1 })
	right := filledBuffer(t, 256, func(int) float64 { return -1 })

	var g Grain
	g.Start(0, 256, 10, 8, interp.FracOne, 0, 1, 0.5)
	dst := make([]float64, 2*8)
	g.OverlapAdd(left, right, dst, 8)
	if dst[8] != 1 || dst[9] != -0.5 {
		t.Fatalf("stereo peak = (%v, %v), want (1, -0.5)", dst[8], dst[9])
	}

	g.Start(0, 256, 10, 8, interp.FracOne, 0, 1, 1)
	clear(dst)
	g.OverlapAdd(left, nil, dst, 8)
	if dst[8] != dst[9] {
		t.Fatalf("mono peak = (%v, %v), want equal channels", dst[8], dst[9])
	}
}

func TestGrainStartWrapsNegativeStart(t *testing.T) {
	b := filledBuffer(t, 64, func(i int) float64 { return float64(i) })

	var g Grain
	g.Start(0, 64, -10, 4, interp.FracOne, 0, 1, 1)
	if g.firstSample != 54 {
		t.Fatalf("firstSample = %d, want 54", g.firstSample)
	}
	dst := make([]float64, 8)
	g.OverlapAdd(b, nil, dst, 4)
	if got := dst[2*2]; math.Abs(got-56) > 1e-9 {
		t.Fatalf("frame 2 = %v, want 56", got)
	}
}
