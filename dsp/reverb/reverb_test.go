package reverb

import (
	"math"
	"testing"
)

func TestNewRejectsInvalidSampleRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(rate); err == nil {
			t.Fatalf("New(%v) error = nil, want error", rate)
		}
	}
}

func TestTuningsScaleWithSampleRate(t *testing.T) {
	r44, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r88, err := New(88200)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, want := len(r44.left.combs[0].buffer), 1116; got != want {
		t.Fatalf("comb length at 44.1k = %d, want %d", got, want)
	}
	if got, want := len(r44.right.combs[0].buffer), 1116+stereoSpread; got != want {
		t.Fatalf("right comb length at 44.1k = %d, want %d", got, want)
	}
	if got, want := len(r88.left.combs[0].buffer), 2232; got != want {
		t.Fatalf("comb length at 88.2k = %d, want %d", got, want)
	}
}

func TestSetAmountClampsAndMapsRoom(t *testing.T) {
	tests := []struct {
		in, amount, room float64
	}{
		{-1, 0, minRoomSize},
		{0, 0, minRoomSize},
		{0.5, 0.5, minRoomSize + roomSizeRange*0.5},
		{2, 1, minRoomSize + roomSizeRange},
		{math.NaN(), 0, minRoomSize},
	}

	r, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, tt := range tests {
		r.SetAmount(tt.in)
		if r.Amount() != tt.amount {
			t.Fatalf("SetAmount(%v): Amount() = %v, want %v", tt.in, r.Amount(), tt.amount)
		}
		if math.Abs(r.RoomSize()-tt.room) > 1e-12 {
			t.Fatalf("SetAmount(%v): RoomSize() = %v, want %v", tt.in, r.RoomSize(), tt.room)
		}
	}
}

func TestMutedSendLeavesSignalUntouched(t *testing.T) {
	r, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	buf := []float64{1, -1, 0.5, 0.25, 0, 0}
	want := append([]float64(nil), buf...)
	r.AddTo(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestImpulseTailIsStereoAndDecorrelated(t *testing.T) {
	r, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.SetAmount(1)

	const n = 8192
	buf := make([]float64, 2*n)
	buf[0], buf[1] = 1, 1
	r.AddTo(buf)

	var energyL, energyR, diff float64
	for i := 1; i < n; i++ {
		l, rr := buf[2*i], buf[2*i+1]
		if math.IsNaN(l) || math.IsNaN(rr) {
			t.Fatalf("frame %d is NaN", i)
		}
		energyL += l * l
		energyR += rr * rr
		diff += math.Abs(l - rr)
	}
	if energyL == 0 || energyR == 0 {
		t.Fatalf("tail energy = (%g, %g), want both > 0", energyL, energyR)
	}
	if diff == 0 {
		t.Fatal("left and right tails are identical, want decorrelated channels")
	}
}

func TestResetRestoresState(t *testing.T) {
	r, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.SetAmount(0.8)

	run := func() []float64 {
		buf := make([]float64, 512)
		buf[0] = 1
		r.AddTo(buf)
		return buf
	}

	first := run()
	r.Reset()
	second := run()
	for i := range first {
		if d := math.Abs(first[i] - second[i]); d > 1e-12 {
			t.Fatalf("sample %d mismatch after reset: got=%g want=%g", i, second[i], first[i])
		}
	}
}

func TestAddToDoesNotAllocate(t *testing.T) {
	r, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.SetAmount(0.5)
	buf := make([]float64, 512)

	allocs := testing.AllocsPerRun(100, func() { r.AddTo(buf) })
	if allocs != 0 {
		t.Fatalf("AddTo() allocs = %v, want 0", allocs)
	}
}
