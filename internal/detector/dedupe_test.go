package detector

import (
	"image"
	"reflect"
	"testing"
)

func det(name string, x, y int, conf float64) Detection {
	return Detection{Name: name, Position: image.Pt(x, y), Confidence: conf}
}

func TestDedupe(t *testing.T) {
	input := []Detection{
		det("a", 100, 100, 0.80),
		det("b", 110, 100, 0.95),
		det("c", 300, 100, 0.70),
		det("d", 300, 130, 0.70),
		det("e", 500, 500, 0.75),
	}
	orig := append([]Detection(nil), input...)

	got := Dedupe(input, 50)
	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
	}
	if want := []string{"b", "e", "c"}; !reflect.DeepEqual(names, want) {
		t.Errorf("kept %v, want %v", names, want)
	}
	if !reflect.DeepEqual(input, orig) {
		t.Error("input slice was modified")
	}
}

func TestDedupeBoundary(t *testing.T) {
	// ровно minDistance считается дубликатом, оставляем только строго дальше
	got := Dedupe([]Detection{det("a", 0, 0, 0.9), det("b", 50, 0, 0.8), det("c", 0, 51, 0.7)}, 50)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("kept %v", got)
	}
}

func TestDedupeProperties(t *testing.T) {
	sets := [][]Detection{
		nil,
		{det("solo", 10, 10, 0.5)},
		{det("a", 0, 0, 0.7), det("b", 0, 0, 0.7), det("c", 0, 0, 0.7)},
		{det("a", 0, 0, 0.6), det("b", 30, 0, 0.9), det("c", 60, 0, 0.6), det("d", 90, 0, 0.8), det("e", 120, 0, 0.7)},
	}
	for _, radius := range []float64{0, 25, 50, 100} {
		for i, set := range sets {
			once := Dedupe(set, radius)
			twice := Dedupe(once, radius)
			if len(once) > len(set) {
				t.Errorf("set %d r=%v: grew from %d to %d", i, radius, len(set), len(once))
			}
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("set %d r=%v: not idempotent: %v vs %v", i, radius, once, twice)
			}
		}
	}
}

func TestDedupeStableTies(t *testing.T) {
	got := Dedupe([]Detection{det("first", 0, 0, 0.7), det("second", 10, 0, 0.7)}, 50)
	if len(got) != 1 || got[0].Name != "first" {
		t.Errorf("tie must keep discovery order, got %v", got)
	}
}
