package detector

import (
	"image"
	"sort"

	"ropebot/internal/geom"
	imageInternal "ropebot/internal/image"
	"ropebot/internal/templates"
)

// Способы, которыми определено положение на верёвке
const (
	MethodTemplate         = "template"
	MethodTemplateEnhanced = "template_enhanced"
	MethodRopeGeometry     = "rope_geometry"
	MethodRopeBox          = "rope_box"
)

// OnRopeCandidate - один из вариантов ответа "персонаж на верёвке"
type OnRopeCandidate struct {
	Method     string
	Position   image.Point
	Confidence float64
	Scale      float64
	Rope       string
}

// OnRopeResult - итог проверки. Candidates отсортированы по убыванию уверенности.
type OnRopeResult struct {
	OnRope     bool
	Position   image.Point
	Confidence float64
	Method     string
	Candidates []OnRopeCandidate
}

// DetectOnRope определяет, висит ли персонаж на верёвке.
// С шаблоном персонажа на верёвке ищется лучшее совпадение на исходном и на контрастном кадре;
// если уверенность ниже порога доверия, добавляются кандидаты по геометрии найденных верёвок.
// Без шаблона проверяется попадание персонажа в расширенную рамку верёвки.
func (d *Detector) DetectOnRope(frame image.Image, character image.Point, tmpl *templates.Template, ropes []Detection) OnRopeResult {
	if tmpl == nil {
		return d.onRopeByBox(character, ropes)
	}

	gray := imageInternal.ToGray(frame)
	variants := []struct {
		method string
		img    *image.Gray
	}{
		{MethodTemplate, gray},
		{MethodTemplateEnhanced, imageInternal.Enhance(gray, d.cfg.EnhanceAlpha, d.cfg.EnhanceBeta)},
	}

	var candidates []OnRopeCandidate
	tw, th := tmpl.Size()
	for _, v := range variants {
		best := OnRopeCandidate{Method: v.method}
		for _, scale := range d.cfg.OnRopeScales {
			w, h := int(float64(tw)*scale), int(float64(th)*scale)
			if w <= 0 || h <= 0 || w > v.img.Rect.Dx() || h > v.img.Rect.Dy() {
				continue
			}
			m, ok := d.matcher.Best(v.img, imageInternal.Scale(tmpl.Image, w, h))
			if ok && m.Score > best.Confidence {
				best.Confidence = m.Score
				best.Position = image.Pt(m.X+w/2, m.Y+h/2)
				best.Scale = scale
			}
		}
		if best.Confidence >= d.cfg.OnRopeThreshold {
			candidates = append(candidates, best)
		}
	}

	if maxConfidence(candidates) < d.cfg.OnRopeConfident {
		for _, rope := range ropes {
			dx := abs(character.X - rope.Position.X)
			if float64(dx) < float64(rope.Box.Dx())/2+float64(d.cfg.RopeFallbackSlack) {
				candidates = append(candidates, OnRopeCandidate{
					Method:     MethodRopeGeometry,
					Position:   image.Pt(rope.Position.X, character.Y),
					Confidence: d.cfg.RopeFallbackScore,
					Rope:       rope.Name,
				})
			}
		}
	}

	if len(candidates) == 0 {
		d.logger.Debug("🧗 Персонаж не на верёвке")
		return OnRopeResult{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	best := candidates[0]
	d.logger.Info("🧗 Персонаж на верёвке: способ %s, уверенность %.2f", best.Method, best.Confidence)
	return OnRopeResult{
		OnRope:     true,
		Position:   best.Position,
		Confidence: best.Confidence,
		Method:     best.Method,
		Candidates: candidates,
	}
}

func (d *Detector) onRopeByBox(character image.Point, ropes []Detection) OnRopeResult {
	p := geom.FromImage(character)
	for _, rope := range ropes {
		if geom.Contains(rope.Box, p, d.cfg.RopeFallbackSlack) {
			d.logger.Info("🧗 Персонаж на верёвке %s (по рамке)", rope.Name)
			return OnRopeResult{
				OnRope:     true,
				Position:   rope.Position,
				Confidence: rope.Confidence,
				Method:     MethodRopeBox,
				Candidates: []OnRopeCandidate{{Method: MethodRopeBox, Position: rope.Position, Confidence: rope.Confidence, Rope: rope.Name}},
			}
		}
	}
	return OnRopeResult{}
}

func maxConfidence(candidates []OnRopeCandidate) float64 {
	best := 0.0
	for _, c := range candidates {
		best = max(best, c.Confidence)
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
