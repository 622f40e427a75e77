package geometry

import (
	"math"
	"testing"
)

func TestAnchors(t *testing.T) {
	pos := Pt(10, 20)
	size := Sz(100, 40)

	tests := []struct {
		name string
		got  Point
		want Point
	}{
		{"center", Center(pos, size), Pt(60, 40)},
		{"top center", TopCenter(pos, size), Pt(60, 20)},
		{"bottom center", BottomCenter(pos, size), Pt(60, 60)},
		{"right middle", RightMiddle(pos, size), Pt(110, 40)},
		{"left middle", LeftMiddle(pos, size), Pt(10, 40)},
		{"top left for center", TopLeftFor(Pt(60, 40), size), pos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	r := Bounds(Pt(5, 5), Sz(10, 20))
	if r.Width() != 10 || r.Height() != 20 {
		t.Errorf("unexpected bounds size %vx%v", r.Width(), r.Height())
	}
	if r.MinX() != 5 || r.MaxY() != 25 {
		t.Errorf("unexpected bounds %v", r)
	}
}

func TestSizeClamp(t *testing.T) {
	if got := Sz(-5, 10).Clamp(); got != Sz(0, 10) {
		t.Errorf("Clamp() = %v", got)
	}
	if got := Sz(5, 10).AtLeast(20, 5); got != Sz(20, 10) {
		t.Errorf("AtLeast() = %v", got)
	}
}

func TestPolarAndAngle(t *testing.T) {
	c := Pt(100, 100)
	p := Polar(c, 50, math.Pi/2)
	if !NearlyEqual(p.X, 100, 1e-9) || !NearlyEqual(p.Y, 150, 1e-9) {
		t.Errorf("Polar() = %v", p)
	}
	if a := Angle(c, p); !NearlyEqual(a, math.Pi/2, 1e-9) {
		t.Errorf("Angle() = %v", a)
	}
	if d := c.Distance(p); !NearlyEqual(d, 50, 1e-9) {
		t.Errorf("Distance() = %v", d)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("Clamp returned a value outside the interval")
	}
}
