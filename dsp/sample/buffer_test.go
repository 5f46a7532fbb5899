package sample

import (
	"math"
	"testing"
)

func sineBuffer(t *testing.T, n int) *Buffer {
	t.Helper()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) error = %v", n, err)
	}
	for i := range n {
		b.Push(math.Sin(2 * math.Pi * float64(i) / float64(n)))
	}
	return b
}

func TestNewValidation(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Fatalf("New(%d) expected error", size)
		}
	}
}

func TestPushAdvancesHeadAndWraps(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		b.Push(float64(i + 1))
	}
	if b.Head() != 1 {
		t.Fatalf("Head() = %d, want 1", b.Head())
	}
	if got := b.At(0); got != 5 {
		t.Fatalf("At(0) = %v, want 5", got)
	}
	if got := b.At(-1); got != 4 {
		t.Fatalf("At(-1) = %v, want 4", got)
	}
}

func TestWriteDoesNotMoveHead(t *testing.T) {
	b, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	b.Write(11, 0.5)
	if b.Head() != 0 {
		t.Fatalf("Head() = %d after Write, want 0", b.Head())
	}
	if got := b.At(3); got != 0.5 {
		t.Fatalf("At(3) = %v, want 0.5", got)
	}
}

func TestWrap(t *testing.T) {
	b, err := New(10)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ in, want int }{
		{0, 0}, {9, 9}, {10, 0}, {-1, 9}, {-10, 0}, {-21, 9}, {35, 5},
	}
	for _, tt := range tests {
		if got := b.Wrap(tt.in); got != tt.want {
			t.Fatalf("Wrap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReadHermiteWrapContinuity(t *testing.T) {
	const n = 256
	b := sineBuffer(t, n)
	head := b.Head()

	tests := []float64{n - 0.5, 0.5, n - 1.25, 0.75}
	for _, pos := range tests {
		got := b.ReadHermiteAt(pos)
		want := math.Sin(2 * math.Pi * pos / n)
		if diff := math.Abs(got - want); diff > 1e-5 {
			t.Fatalf("ReadHermiteAt(%v) = %v, want %v (diff %g)", pos, got, want, diff)
		}
	}

	// A smooth sweep across the wrap must not jump more than the local slope allows.
	const step = 1.0 / 64
	prev := b.ReadHermiteAt(n - 4)
	for pos := n - 4 + step; pos < n+4; pos += step {
		cur := b.ReadHermiteAt(pos)
		if math.Abs(cur-prev) > 2*math.Pi/n*step*1.1 {
			t.Fatalf("discontinuity at %v: %v -> %v", pos, prev, cur)
		}
		prev = cur
	}

	if b.Head() != head {
		t.Fatalf("reads moved head: %d -> %d", head, b.Head())
	}
}

func TestReadHermiteFixedMatchesFloat(t *testing.T) {
	b := sineBuffer(t, 64)
	for _, idx := range []int{-3, 0, 17, 63, 130} {
		got := b.ReadHermite(idx, 0x4000)
		want := b.ReadHermiteAt(float64(idx) + 0.25)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("ReadHermite(%d, 0x4000) = %v, want %v", idx, got, want)
		}
	}
}

func TestClear(t *testing.T) {
	b := sineBuffer(t, 32)
	b.Push(1)
	b.Clear()
	if b.Head() != 0 {
		t.Fatalf("Head() = %d after Clear, want 0", b.Head())
	}
	for i := range b.Size() {
		if b.At(i) != 0 {
			t.Fatalf("At(%d) = %v after Clear, want 0", i, b.At(i))
		}
	}
}

func TestReadAllocsZero(t *testing.T) {
	b := sineBuffer(t, 128)
	allocs := testing.AllocsPerRun(100, func() {
		_ = b.ReadHermite(-7, 0x1234)
		_ = b.ReadHermiteAt(127.9)
	})
	if allocs != 0 {
		t.Fatalf("allocs per read = %v, want 0", allocs)
	}
}
