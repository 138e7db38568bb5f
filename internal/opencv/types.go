// Package opencv - реализации поверх OpenCV (gocv): сопоставление шаблонов и экспериментальный поиск по цвету.
// OpenCV подключается только при сборке с тегом opencv (go build -tags opencv), без него
// NewMatcher и ColorDetector.Detect возвращают ErrNotCompiled.
package opencv

import (
	"errors"
	"image"
)

// ErrNotCompiled возвращается, если бинарник собран без тега opencv
var ErrNotCompiled = errors.New("opencv backend not compiled in")

// Blob - связная область, попавшая в диапазон цвета
type Blob struct {
	Range  string
	Box    image.Rectangle
	Center image.Point
	Area   float64
}

// ColorResult - итог поиска по цвету
type ColorResult struct {
	Blobs     []Blob
	Counts    map[string]int
	Annotated image.Image
	Masks     map[string]image.Image
}
