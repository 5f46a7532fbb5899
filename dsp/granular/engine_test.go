package granular

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-drone/dsp/interp"
	"github.com/cwbudde/algo-drone/internal/testutil"
)

func TestNewEngineRejectsInvalidBlock(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewEngine(n); err == nil {
			t.Fatalf("NewEngine(%d) error = nil, want error", n)
		}
	}
}

func TestEnginePoolIsBounded(t *testing.T) {
	e, err := NewEngine(64)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	sp := spawn{
		bufferSize: 4096,
		width:      512,
		span:       512,
		increment:  interp.FracOne,
	}
	for range 20 {
		e.spawn(0, 4000, sp)
	}
	if got := e.ActiveGrainCount(); got != EnginePoolSize {
		t.Fatalf("ActiveGrainCount() = %d, want %d", got, EnginePoolSize)
	}

	e.Reset()
	if got := e.ActiveGrainCount(); got != 0 {
		t.Fatalf("ActiveGrainCount() after Reset = %d, want 0", got)
	}
}

func TestEngineSpawnStaysBehindHead(t *testing.T) {
	e, err := NewEngine(64)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	// Zero delay and a 2x forward grain would overtake the head; the start is
	// pulled back by the distance the grain gains.
	sp := spawn{bufferSize: 4096, width: 100, span: 200, increment: 2 * interp.FracOne}
	e.spawn(0, 1000, sp)
	if got, want := e.grains[0].firstSample, 1000-readGuard-100; got != want {
		t.Fatalf("forward firstSample = %d, want %d", got, want)
	}

	sp = spawn{bufferSize: 4096, width: 100, span: 100, increment: -interp.FracOne, reverse: true}
	e.spawn(0, 1000, sp)
	if got, want := e.grains[1].firstSample, 1000-readGuard; got != want {
		t.Fatalf("reverse firstSample = %d, want %d", got, want)
	}
}

func TestEngineDensityIncreasesOverlap(t *testing.T) {
	count := func(density float64) int {
		left := filledBuffer(t, 48000, func(i int) float64 { return math.Sin(float64(i) * 0.05) })
		e, err := NewEngine(256)
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		out := make([]float64, 2*256)
		s := EngineSettings{Delay: 10000, GrainSize: 1024, PitchRatio: 1, Density: density}
		for range 16 {
			for range 256 {
				left.Push(0.1)
			}
			e.Process(left, nil, s, out, 256)
		}
		return e.ActiveGrainCount()
	}

	sparse, dense := count(0), count(1)
	if dense <= sparse {
		t.Fatalf("ActiveGrainCount(density=1) = %d, want > density=0 count %d", dense, sparse)
	}
	if dense > EnginePoolSize {
		t.Fatalf("ActiveGrainCount(density=1) = %d, exceeds pool %d", dense, EnginePoolSize)
	}
}

func TestEngineSilentInputGivesSilence(t *testing.T) {
	left := filledBuffer(t, 8192, func(int) float64 { return 0 })
	right := filledBuffer(t, 8192, func(int) float64 { return 0 })
	e, err := NewEngine(128)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	out := make([]float64, 2*512)
	s := EngineSettings{Delay: 2000, GrainSize: 300, PitchRatio: 1.5, Density: 1, Spray: 40, StereoSpread: 1}
	for range 8 {
		e.Process(left, right, s, out, 512)
		testutil.RequireSilent(t, out)
	}
	if e.ActiveGrainCount() == 0 {
		t.Fatal("ActiveGrainCount() = 0, want grains running on silence")
	}
}

func TestEngineOutputIsFiniteAtExtremes(t *testing.T) {
	noise := testutil.DeterministicNoise(3, 1, 4096)
	left := filledBuffer(t, 4096, func(i int) float64 { return noise[i] })

	settings := []EngineSettings{
		{Delay: math.NaN(), GrainSize: math.NaN(), PitchRatio: math.NaN(), Density: math.NaN()},
		{Delay: 1e9, GrainSize: 1e9, PitchRatio: 1e9, Density: 5, Spray: 1e4, Mode: ModeReverse},
		{Delay: -5, GrainSize: -5, PitchRatio: 0, Density: -1, Mode: ModeKarplusStrong},
	}
	for _, s := range settings {
		e, err := NewEngine(64)
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		out := make([]float64, 2*1000)
		e.Process(left, nil, s, out, 1000)
		testutil.RequireFinite(t, out)
	}
}

func TestEngineSeedIsDeterministic(t *testing.T) {
	noise := testutil.DeterministicNoise(9, 1, 8192)
	render := func() []float64 {
		left := filledBuffer(t, 8192, func(i int) float64 { return noise[i] })
		e, err := NewEngine(256, WithSeed(42))
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		out := make([]float64, 2*2048)
		e.Process(left, nil, EngineSettings{Delay: 3000, GrainSize: 400, PitchRatio: 1, Density: 0.7, Spray: 50, StereoSpread: 0.8}, out, 2048)
		return out
	}

	a, b := render(), render()
	diff, err := testutil.MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}
	if diff != 0 {
		t.Fatalf("seeded renders differ by %g, want identical", diff)
	}
}

func TestEngineProcessDoesNotAllocate(t *testing.T) {
	left := filledBuffer(t, 8192, func(i int) float64 { return math.Sin(float64(i) * 0.01) })
	e, err := NewEngine(256)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	out := make([]float64, 2*512)
	s := EngineSettings{Delay: 3000, GrainSize: 400, PitchRatio: 1.2, Density: 1, Spray: 20, StereoSpread: 0.5}

	allocs := testing.AllocsPerRun(50, func() { e.Process(left, nil, s, out, 512) })
	if allocs != 0 {
		t.Fatalf("Process() allocs = %v, want 0", allocs)
	}
}
