package imageutils

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Цвета разметки отладочных кадров
var (
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Cyan   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
)

// CombineImages объединяет изображения в одну строку слева направо с отступом gap
func CombineImages(imgs []image.Image, gap int) *image.RGBA {
	width, height := 0, 0
	for i, img := range imgs {
		b := img.Bounds()
		width += b.Dx()
		if i > 0 {
			width += gap
		}
		height = max(height, b.Dy())
	}

	combinedImg := image.NewRGBA(image.Rect(0, 0, width, height))
	offset := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(combinedImg, image.Rect(offset, 0, offset+b.Dx(), b.Dy()), img, b.Min, draw.Over)
		offset += b.Dx() + gap
	}
	return combinedImg
}

// DrawRect рисует рамку прямоугольника толщиной thickness
func DrawRect(img *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	for t := 0; t < thickness; t++ {
		inner := r.Inset(t)
		if inner.Empty() {
			return
		}
		for x := inner.Min.X; x < inner.Max.X; x++ {
			img.Set(x, inner.Min.Y, c)
			img.Set(x, inner.Max.Y-1, c)
		}
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			img.Set(inner.Min.X, y, c)
			img.Set(inner.Max.X-1, y, c)
		}
	}
}

// DrawCross рисует крестик с центром в p, отмечает точки без размера (позиция персонажа, fallback)
func DrawCross(img *image.RGBA, p image.Point, size int, c color.Color) {
	for d := -size; d <= size; d++ {
		img.Set(p.X+d, p.Y, c)
		img.Set(p.X, p.Y+d, c)
	}
}

// DrawLabel пишет текст, базовая линия в точке (x, y)
func DrawLabel(img *image.RGBA, x, y int, text string, c color.Color) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
