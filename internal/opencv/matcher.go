//go:build opencv

package opencv

import (
	"image"

	"gocv.io/x/gocv"

	"ropebot/internal/detector"
)

// Matcher реализует detector.Matcher через gocv.MatchTemplate с TmCcoeffNormed
type Matcher struct{}

var _ detector.Matcher = Matcher{}

// NewMatcher возвращает сопоставление через OpenCV
func NewMatcher() (detector.Matcher, error) {
	return Matcher{}, nil
}

// scores возвращает карту корреляций. Вызывающий закрывает Mat.
func (Matcher) scores(frame, tmpl *image.Gray) (gocv.Mat, bool) {
	fb, tb := frame.Bounds(), tmpl.Bounds()
	if tb.Empty() || tb.Dx() > fb.Dx() || tb.Dy() > fb.Dy() {
		return gocv.Mat{}, false
	}

	src, err := gocv.ImageGrayToMatGray(frame)
	if err != nil {
		return gocv.Mat{}, false
	}
	defer src.Close()

	templ, err := gocv.ImageGrayToMatGray(tmpl)
	if err != nil {
		return gocv.Mat{}, false
	}
	defer templ.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.NewMat()
	gocv.MatchTemplate(src, templ, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		result.Close()
		return gocv.Mat{}, false
	}
	return result, true
}

// Match возвращает все позиции со значением >= threshold в построчном порядке
func (m Matcher) Match(frame, tmpl *image.Gray, threshold float64) []detector.Match {
	result, ok := m.scores(frame, tmpl)
	if !ok {
		return nil
	}
	defer result.Close()

	var matches []detector.Match
	for y := 0; y < result.Rows(); y++ {
		for x := 0; x < result.Cols(); x++ {
			if score := float64(result.GetFloatAt(y, x)); score >= threshold {
				matches = append(matches, detector.Match{X: x, Y: y, Score: score})
			}
		}
	}
	return matches
}

// Best возвращает позицию с максимальным значением
func (m Matcher) Best(frame, tmpl *image.Gray) (detector.Match, bool) {
	result, ok := m.scores(frame, tmpl)
	if !ok {
		return detector.Match{}, false
	}
	defer result.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	return detector.Match{X: maxLoc.X, Y: maxLoc.Y, Score: float64(maxVal)}, true
}
