package automation

import (
	"errors"
	"math"
	"testing"
)

func TestNewLaneValidation(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		opts   []LaneOption
	}{
		{"negative time", []Point{{-1, 0}}, nil},
		{"unsorted", []Point{{10, 0}, {5, 1}}, nil},
		{"duplicate time", []Point{{10, 0}, {10, 1}}, nil},
		{"nan value", []Point{{0, math.NaN()}}, nil},
		{"short loop", []Point{{0, 0}, {100, 1}}, []LaneOption{WithLoop(100)}},
	}
	for _, tt := range tests {
		if _, err := NewLane(tt.points, tt.opts...); err == nil {
			t.Fatalf("%s: NewLane() error = nil, want error", tt.name)
		}
	}
	if _, err := NewLane(nil); !errors.Is(err, ErrNoPoints) {
		t.Fatalf("NewLane(nil) error = %v, want ErrNoPoints", err)
	}
}

func TestLaneOneShot(t *testing.T) {
	l, err := NewLane([]Point{{100, 0}, {200, 1}, {400, 0.5}})
	if err != nil {
		t.Fatalf("NewLane() error = %v", err)
	}

	tests := []struct {
		t    int64
		want float64
	}{
		{0, 0},
		{100, 0},
		{150, 0.5},
		{200, 1},
		{300, 0.75},
		{400, 0.5},
		{10000, 0.5},
	}
	for _, tt := range tests {
		if got := l.ValueAt(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("ValueAt(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if l.Looping() || l.Duration() != 400 {
		t.Fatalf("Looping() = %v Duration() = %d, want false 400", l.Looping(), l.Duration())
	}
}

func TestLaneLoopWrapsBackToStart(t *testing.T) {
	l, err := NewLane([]Point{{0, 0}, {100, 1}}, WithLoop(200))
	if err != nil {
		t.Fatalf("NewLane() error = %v", err)
	}

	tests := []struct {
		t    int64
		want float64
	}{
		{0, 0},
		{50, 0.5},
		{100, 1},
		{150, 0.5},
		{200, 0},
		{250, 0.5},
		{-50, 0.5},
	}
	for _, tt := range tests {
		if got := l.ValueAt(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("ValueAt(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestLaneLoopWithLeadIn(t *testing.T) {
	l, err := NewLane([]Point{{50, 1}, {150, 0}}, WithLoop(200))
	if err != nil {
		t.Fatalf("NewLane() error = %v", err)
	}
	// Wrap segment runs from t=150 (0) to t=250 (1), crossing the loop point.
	if got := l.ValueAt(200); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("ValueAt(200) = %v, want 0.5", got)
	}
	if got := l.ValueAt(25); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("ValueAt(25) = %v, want 0.75", got)
	}
}

func TestLaneSinglePointLoopIsConstant(t *testing.T) {
	l, err := NewLane([]Point{{10, 0.3}}, WithLoop(64))
	if err != nil {
		t.Fatalf("NewLane() error = %v", err)
	}
	for _, tt := range []int64{0, 10, 33, 63, 1000} {
		if got := l.ValueAt(tt); math.Abs(got-0.3) > 1e-12 {
			t.Fatalf("ValueAt(%d) = %v, want 0.3", tt, got)
		}
	}
}

func TestLanePointsIsACopy(t *testing.T) {
	src := []Point{{0, 1}, {10, 2}}
	l, err := NewLane(src)
	if err != nil {
		t.Fatalf("NewLane() error = %v", err)
	}
	src[0].Value = 99
	pts := l.Points()
	pts[1].Value = 99
	if got := l.ValueAt(0); got != 1 {
		t.Fatalf("ValueAt(0) = %v after mutating input, want 1", got)
	}
	if got := l.ValueAt(10); got != 2 {
		t.Fatalf("ValueAt(10) = %v after mutating Points(), want 2", got)
	}
}
