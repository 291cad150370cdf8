package tileccd

import (
	"math/rand"
	"testing"
)

func TestRectHelpers(t *testing.T) {
	r := RectFromCenterSize(Vec(5, 4), 4, 2)
	if r != NewRect(3, 3, 4, 2) {
		t.Fatalf("Expected rect at (3,3) 4x2, got %+v", r)
	}
	if c := RectCenter(r); c != Vec(5, 4) {
		t.Fatalf("Expected center (5,4), got %v", c)
	}

	tests := []struct {
		p    [2]float64
		want bool
	}{
		{[2]float64{5, 4}, true},
		{[2]float64{3, 3}, true},
		{[2]float64{7, 5}, true},
		{[2]float64{7.1, 4}, false},
		{[2]float64{5, 2.9}, false},
	}
	for _, tt := range tests {
		if got := RectContains(r, Vec(tt.p[0], tt.p[1])); got != tt.want {
			t.Fatalf("Expected RectContains(%v) = %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestRandomPositionStaysInRect(t *testing.T) {
	r := NewRect(-2, 1, 3, 5)
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		p := RandomPosition(a, r)
		if !RectContains(r, p) {
			t.Fatalf("Expected %v inside %+v", p, r)
		}
		if q := RandomPosition(b, r); q != p {
			t.Fatalf("Expected the same seed to give the same positions, got %v and %v", p, q)
		}
	}
}
