// Package detector ищет шаблоны на кадре нормированной взаимной корреляцией
// в нескольких масштабах и отбрасывает дубликаты.
package detector

import (
	"fmt"
	"image"

	"ropebot/internal/templates"
)

// Detection - одно найденное на кадре вхождение шаблона. Создается заново в каждом цикле.
type Detection struct {
	Name       string
	Category   templates.Category
	Position   image.Point // центр
	Box        image.Rectangle
	Confidence float64
	Scale      float64
	Priority   int
}

func (d Detection) String() string {
	return fmt.Sprintf("%s[%s] at %v conf=%.3f scale=%.1f", d.Name, d.Category, d.Position, d.Confidence, d.Scale)
}

// Match - позиция левого верхнего угла окна и значение корреляции
type Match struct {
	X, Y  int
	Score float64
}

// Matcher считает TM_CCOEFF_NORMED между кадром и шаблоном
type Matcher interface {
	// Match возвращает все позиции со значением >= threshold в построчном порядке
	Match(frame, tmpl *image.Gray, threshold float64) []Match
	// Best возвращает позицию с максимальным значением
	Best(frame, tmpl *image.Gray) (Match, bool)
}
