package automation

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoPoints is returned by [NewLane] for an empty breakpoint list.
var ErrNoPoints = errors.New("automation: lane needs at least one point")

// Point is one breakpoint. Time is in samples from the lane start.
type Point struct {
	Time  int64
	Value float64
}

// LaneOption configures a [Lane].
type LaneOption func(*Lane)

// WithLoop makes the lane repeat every length samples. The segment after the
// last point ramps back to the first value at length. length must be longer
// than the last point's time.
func WithLoop(length int64) LaneOption {
	return func(l *Lane) {
		l.loop = length
	}
}

// Lane is an immutable breakpoint envelope.
type Lane struct {
	points []Point
	loop   int64
}

// NewLane validates and copies points. Times must be non-negative and
// strictly increasing; values must be finite.
func NewLane(points []Point, opts ...LaneOption) (*Lane, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	l := &Lane{points: append([]Point(nil), points...)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	for i, p := range l.points {
		if p.Time < 0 {
			return nil, fmt.Errorf("automation: point %d has negative time %d", i, p.Time)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("automation: point %d has non-finite value", i)
		}
		if i > 0 && p.Time <= l.points[i-1].Time {
			return nil, fmt.Errorf("automation: point %d time %d not after %d", i, p.Time, l.points[i-1].Time)
		}
	}

	if l.loop != 0 {
		if last := l.points[len(l.points)-1].Time; l.loop <= last {
			return nil, fmt.Errorf("automation: loop length %d must exceed last point time %d", l.loop, last)
		}
	}

	return l, nil
}

// Points returns a copy of the breakpoints.
func (l *Lane) Points() []Point {
	return append([]Point(nil), l.points...)
}

// Looping reports whether the lane repeats.
func (l *Lane) Looping() bool { return l.loop > 0 }

// Duration returns the loop length, or the last point's time for a one-shot
// lane.
func (l *Lane) Duration() int64 {
	if l.loop > 0 {
		return l.loop
	}
	return l.points[len(l.points)-1].Time
}

// ValueAt returns the interpolated value at time t (samples). One-shot lanes
// hold their first value before the first point and their last value after
// the last one.
func (l *Lane) ValueAt(t int64) float64 {
	pts := l.points
	if l.loop > 0 {
		t %= l.loop
		if t < 0 {
			t += l.loop
		}

		last := pts[len(pts)-1]
		first := pts[0]
		if t >= last.Time || t < first.Time {
			// Wrap segment from the last point to the first point of the next
			// cycle.
			span := float64(l.loop - last.Time + first.Time)
			elapsed := float64(t - last.Time)
			if t < first.Time {
				elapsed = float64(l.loop - last.Time + t)
			}
			return last.Value + (first.Value-last.Value)*elapsed/span
		}
	} else {
		if t <= pts[0].Time {
			return pts[0].Value
		}
		if t >= pts[len(pts)-1].Time {
			return pts[len(pts)-1].Value
		}
	}

	// Binary search for the segment [pts[i-1], pts[i]) containing t.
	lo, hi := 0, len(pts)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if pts[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}

	a, b := pts[lo], pts[hi]
	frac := float64(t-a.Time) / float64(b.Time-a.Time)
	return a.Value + (b.Value-a.Value)*frac
}
