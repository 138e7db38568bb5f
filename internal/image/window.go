package image

import (
	"fmt"
	"image"
)

// blackLevel - компоненты ниже этого значения считаются черной рамкой вокруг окна
const blackLevel = 10

func isBlack(img image.Image, x, y int) bool {
	r, g, b := GetPixelColor(img, x, y)
	return r < blackLevel && g < blackLevel && b < blackLevel
}

// FindGameWindow ищет первую нечерную точку, затем расширяет прямоугольник до границ окна, граница окна черного цвета.
// Возвращаемый прямоугольник задан в координатах img.
func FindGameWindow(img image.Image) (image.Rectangle, error) {
	bounds := img.Bounds()

	// 1. Найти первую нечерную точку
	startX, startY, found := 0, 0, false
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X && !found; x++ {
			if !isBlack(img, x, y) {
				startX, startY, found = x, y, true
			}
		}
	}
	if !found {
		return image.Rectangle{}, fmt.Errorf("game window not found")
	}

	// 2. Расширяем прямоугольник до черной рамки по строке и столбцу стартовой точки
	left, right := startX, startX
	for x := startX; x < bounds.Max.X && !isBlack(img, x, startY); x++ {
		right = x
	}
	for x := startX; x >= bounds.Min.X && !isBlack(img, x, startY); x-- {
		left = x
	}
	top, bottom := startY, startY
	for y := startY; y < bounds.Max.Y && !isBlack(img, startX, y); y++ {
		bottom = y
	}
	for y := startY; y >= bounds.Min.Y && !isBlack(img, startX, y); y-- {
		top = y
	}

	return image.Rect(left, top, right+1, bottom+1), nil
}
