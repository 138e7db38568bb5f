// Package cluster группирует найденных врагов по близости и выбирает самую плотную группу целью.
package cluster

import (
	"sort"

	"ropebot/internal/detector"
	"ropebot/internal/geom"
	"ropebot/internal/templates"
)

// Cluster - группа врагов, рассматриваемая как одна цель
type Cluster struct {
	Center   geom.Point
	Members  []detector.Detection
	Priority int
	Density  int
}

// Size возвращает количество врагов в группе
func (c Cluster) Size() int {
	return len(c.Members)
}

// Selector строит группы в радиусе Radius вокруг каждого врага
type Selector struct {
	Radius float64
}

// NewSelector создает селектор с радиусом группировки radius
func NewSelector(radius float64) *Selector {
	return &Selector{Radius: radius}
}

// Candidates строит по одной группе на каждого врага: сам враг и все остальные в пределах Radius.
// Порядок групп совпадает с порядком врагов.
func (s *Selector) Candidates(enemies []detector.Detection) []Cluster {
	candidates := make([]Cluster, 0, len(enemies))
	for i, seed := range enemies {
		origin := geom.FromImage(seed.Position)
		members := []detector.Detection{seed}
		for j, other := range enemies {
			if i != j && origin.Distance(geom.FromImage(other.Position)) <= s.Radius {
				members = append(members, other)
			}
		}
		candidates = append(candidates, newCluster(members))
	}
	return candidates
}

func newCluster(members []detector.Detection) Cluster {
	points := make([]geom.Point, len(members))
	priority := 0
	for i, m := range members {
		points[i] = geom.FromImage(m.Position)
		p := m.Priority
		if p <= 0 {
			p = templates.DefaultPriority
		}
		priority += p
	}
	return Cluster{
		Center:   geom.Mean(points),
		Members:  members,
		Priority: priority,
		Density:  len(members) * priority,
	}
}

// merge убирает группы, центры которых ближе Radius/2 к уже принятой.
// Дубликат заменяет принятую группу, только если в нем строго больше врагов; замененная группа уходит в конец.
func (s *Selector) merge(candidates []Cluster) []Cluster {
	var unique []Cluster
	for _, c := range candidates {
		duplicate := false
		for i, existing := range unique {
			if c.Center.Distance(existing.Center) < s.Radius/2 {
				if c.Size() > existing.Size() {
					unique = append(unique[:i], unique[i+1:]...)
					unique = append(unique, c)
				}
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, c)
		}
	}
	return unique
}

// Rank возвращает уникальные группы по убыванию плотности; при равной плотности сохраняется порядок обнаружения
func (s *Selector) Rank(enemies []detector.Detection) []Cluster {
	if len(enemies) == 0 {
		return nil
	}
	clusters := s.merge(s.Candidates(enemies))
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Density > clusters[j].Density
	})
	return clusters
}

// Select возвращает самую плотную группу; false, если врагов нет
func (s *Selector) Select(enemies []detector.Detection) (Cluster, bool) {
	ranked := s.Rank(enemies)
	if len(ranked) == 0 {
		return Cluster{}, false
	}
	return ranked[0], true
}
