// Package geom содержит точки экранных координат с дробной частью:
// центры кластеров и позиция персонажа считаются как средние значения.
package geom

import (
	"fmt"
	"image"
	"math"
)

// Point представляет точку на экране
type Point struct {
	X float64
	Y float64
}

// Pt создает новую точку
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// FromImage преобразует image.Point в Point
func FromImage(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// Image округляет точку до пикселя
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Distance возвращает евклидово расстояние до другой точки
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Sub возвращает смещение (dx, dy) от other до p
func (p Point) Sub(other Point) (float64, float64) {
	return p.X - other.X, p.Y - other.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
}

// Mean возвращает среднее арифметическое точек. Для пустого списка возвращает нулевую точку.
func Mean(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}
}

// Center возвращает центр экрана заданного размера
func Center(width, height int) Point {
	return Point{X: float64(width / 2), Y: float64(height / 2)}
}

// Contains проверяет, лежит ли точка внутри прямоугольника, расширенного на slack со всех сторон
func Contains(r image.Rectangle, p Point, slack int) bool {
	return p.X >= float64(r.Min.X-slack) && p.X <= float64(r.Max.X+slack) &&
		p.Y >= float64(r.Min.Y-slack) && p.Y <= float64(r.Max.Y+slack)
}
