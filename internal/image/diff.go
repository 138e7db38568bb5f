package image

import (
	"image"
)

// AbsDiff строит карту различий двух кадров: яркость поканальной разницы |a - b|.
// Кадры сравниваются в координатах от левого верхнего угла; область, которая есть
// только в одном из кадров, считается полностью изменённой (255).
func AbsDiff(before, after image.Image) *image.Gray {
	bb, ab := before.Bounds(), after.Bounds()
	w, h := max(bb.Dx(), ab.Dx()), max(bb.Dy(), ab.Dy())
	common := image.Rect(0, 0, min(bb.Dx(), ab.Dx()), min(bb.Dy(), ab.Dy()))

	diff := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !(image.Point{X: x, Y: y}).In(common) {
				diff.Pix[y*diff.Stride+x] = 255
				continue
			}
			r1, g1, b1, _ := before.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			r2, g2, b2, _ := after.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			diff.Pix[y*diff.Stride+x] = luma(absDiff(r1, r2), absDiff(g1, g2), absDiff(b1, b2))
		}
	}
	return diff
}

// CountAbove считает пиксели карты различий внутри rect, значение которых строго больше floor.
// Возвращает число таких пикселей и общее число пикселей области.
func CountAbove(diff *image.Gray, rect image.Rectangle, floor uint8) (int, int) {
	rect = rect.Intersect(diff.Rect)
	if rect.Empty() {
		return 0, 0
	}

	changed := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := diff.Pix[diff.PixOffset(rect.Min.X, y) : diff.PixOffset(rect.Max.X-1, y)+1]
		for _, v := range row {
			if v > floor {
				changed++
			}
		}
	}
	return changed, rect.Dx() * rect.Dy()
}

// ChangedRatio возвращает долю изменившихся пикселей внутри rect
func ChangedRatio(diff *image.Gray, rect image.Rectangle, floor uint8) float64 {
	changed, total := CountAbove(diff, rect, floor)
	if total == 0 {
		return 0
	}
	return float64(changed) / float64(total)
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
