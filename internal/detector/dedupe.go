package detector

import (
	"sort"

	"ropebot/internal/geom"
)

// Dedupe оставляет по одному представителю на объект: сортирует по уверенности (стабильно)
// и берет совпадение, только если его центр дальше minDistance от всех уже взятых.
// Входной срез не изменяется.
func Dedupe(detections []Detection, minDistance float64) []Detection {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, det := range sorted {
		p := geom.FromImage(det.Position)
		duplicate := false
		for _, k := range kept {
			if p.Distance(geom.FromImage(k.Position)) <= minDistance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, det)
		}
	}
	return kept
}
