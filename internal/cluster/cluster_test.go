package cluster

import (
	"image"
	"testing"

	"ropebot/internal/detector"
	"ropebot/internal/geom"
	"ropebot/internal/templates"
)

func enemy(name string, x, y, priority int) detector.Detection {
	return detector.Detection{
		Name:       name,
		Category:   templates.Enemy,
		Position:   image.Pt(x, y),
		Box:        image.Rect(x-10, y-10, x+10, y+10),
		Confidence: 0.9,
		Priority:   priority,
	}
}

func TestSelectEmpty(t *testing.T) {
	if _, ok := NewSelector(100).Select(nil); ok {
		t.Fatal("empty input must select nothing")
	}
}

func TestSelectSingle(t *testing.T) {
	c, ok := NewSelector(100).Select([]detector.Detection{enemy("wolf", 320, 240, 5)})
	if !ok {
		t.Fatal("no cluster for a single enemy")
	}
	if c.Size() != 1 || c.Center != geom.Pt(320, 240) {
		t.Errorf("cluster = %+v, want size 1 at the enemy", c)
	}
	if c.Priority != 5 || c.Density != 5 {
		t.Errorf("priority/density = %d/%d, want 5/5", c.Priority, c.Density)
	}
}

func TestSelectPrefersPair(t *testing.T) {
	enemies := []detector.Detection{
		enemy("far", 900, 100, 5),
		enemy("a", 100, 400, 5),
		enemy("b", 160, 400, 5),
	}

	c, ok := NewSelector(100).Select(enemies)
	if !ok {
		t.Fatal("nothing selected")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want the pair", c.Size())
	}
	if c.Center != geom.Pt(130, 400) {
		t.Errorf("centre = %v, want (130, 400)", c.Center)
	}
	if c.Density != 20 {
		t.Errorf("density = %d, want 2*10", c.Density)
	}
}

func TestPriorityWeighsDensity(t *testing.T) {
	enemies := []detector.Detection{
		enemy("a", 100, 100, 5),
		enemy("b", 150, 100, 5),
		enemy("boss", 700, 100, 10),
		enemy("elite", 760, 100, 8),
	}
	c, _ := NewSelector(100).Select(enemies)
	if c.Members[0].Name != "boss" {
		t.Errorf("selected %v, want the boss pair (density 36 > 20)", c.Members)
	}
}

func TestMissingPriorityDefaults(t *testing.T) {
	c, _ := NewSelector(100).Select([]detector.Detection{enemy("x", 0, 0, 0)})
	if c.Priority != templates.DefaultPriority {
		t.Errorf("priority = %d, want default", c.Priority)
	}
}

func TestTieKeepsFirstFound(t *testing.T) {
	enemies := []detector.Detection{
		enemy("first", 100, 100, 5),
		enemy("second", 600, 100, 5),
	}
	c, _ := NewSelector(100).Select(enemies)
	if c.Members[0].Name != "first" {
		t.Errorf("tie resolved to %s, want first", c.Members[0].Name)
	}
}

func TestCandidatesAndMerge(t *testing.T) {
	// три врага в ряд через 60px: крайние не видят друг друга, средний видит обоих
	enemies := []detector.Detection{
		enemy("left", 100, 100, 5),
		enemy("mid", 160, 100, 5),
		enemy("right", 220, 100, 5),
	}
	s := NewSelector(100)

	candidates := s.Candidates(enemies)
	if len(candidates) != 3 {
		t.Fatalf("candidates = %d", len(candidates))
	}
	sizes := []int{candidates[0].Size(), candidates[1].Size(), candidates[2].Size()}
	if sizes[0] != 2 || sizes[1] != 3 || sizes[2] != 2 {
		t.Errorf("candidate sizes = %v, want [2 3 2]", sizes)
	}

	ranked := s.Rank(enemies)
	if len(ranked) != 1 {
		t.Fatalf("ranked = %d clusters, want all merged into one", len(ranked))
	}
	if ranked[0].Size() != 3 {
		t.Errorf("kept cluster size = %d, want the 3-member one", ranked[0].Size())
	}
	for _, m := range ranked[0].Members {
		if geom.FromImage(m.Position).Distance(geom.FromImage(ranked[0].Members[0].Position)) > s.Radius {
			t.Errorf("member %s farther than radius from the seed", m.Name)
		}
	}
}

func TestRankOrder(t *testing.T) {
	enemies := []detector.Detection{
		enemy("lonely", 1000, 1000, 5),
		enemy("a", 100, 100, 5),
		enemy("b", 140, 100, 5),
		enemy("c", 120, 130, 5),
	}
	ranked := NewSelector(100).Rank(enemies)
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d clusters", len(ranked))
	}
	if ranked[0].Size() != 3 || ranked[1].Size() != 1 {
		t.Errorf("sizes = %d, %d", ranked[0].Size(), ranked[1].Size())
	}
	if ranked[0].Density < ranked[1].Density {
		t.Error("clusters not sorted by density")
	}
}
