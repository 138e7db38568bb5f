package geom

import (
	"image"
	"testing"
)

func TestDistance(t *testing.T) {
	if d := Pt(0, 0).Distance(Pt(3, 4)); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		in   []Point
		want Point
	}{
		{"empty", nil, Point{}},
		{"single", []Point{Pt(10, 20)}, Pt(10, 20)},
		{"three", []Point{Pt(0, 0), Pt(3, 0), Pt(0, 6)}, Pt(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.in); got != tt.want {
				t.Errorf("Mean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	r := image.Rect(100, 100, 120, 200)
	tests := []struct {
		p     Point
		slack int
		want  bool
	}{
		{Pt(110, 150), 0, true},
		{Pt(130, 150), 0, false},
		{Pt(130, 150), 20, true},
		{Pt(110, 230), 20, false},
	}
	for _, tt := range tests {
		if got := Contains(r, tt.p, tt.slack); got != tt.want {
			t.Errorf("Contains(%v, %v, %d) = %v, want %v", r, tt.p, tt.slack, got, tt.want)
		}
	}
}

func TestCenter(t *testing.T) {
	if got := Center(1921, 1080); got != Pt(960, 540) {
		t.Errorf("Center = %v", got)
	}
}
