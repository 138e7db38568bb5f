package image

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// GetPixelColor возвращает компоненты цвета пикселя в диапазоне 0-255
func GetPixelColor(img image.Image, x int, y int) (int, int, int) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return 0, 0, 0
	}

	r, g, b, _ := img.At(x, y).RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}

// luma считает яркость по 16-битным компонентам с весами ITU-R 601 (как color.GrayModel)
func luma(r, g, b uint32) uint8 {
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

// ToGray переводит изображение в оттенки серого. Результат всегда начинается в (0, 0).
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < bounds.Dy(); y++ {
			srcRow := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+bounds.Dx()], srcRow[:bounds.Dx()])
		}
	case *image.RGBA:
		for y := 0; y < bounds.Dy(); y++ {
			i := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := gray.Pix[y*gray.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				p := src.Pix[i : i+4 : i+4]
				row[x] = luma(uint32(p[0])*0x101, uint32(p[1])*0x101, uint32(p[2])*0x101)
				i += 4
			}
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				gray.Pix[y*gray.Stride+x] = g.Y
			}
		}
	}

	return gray
}

// Enhance растягивает контраст: v' = clamp(alpha*v + beta)
func Enhance(gray *image.Gray, alpha, beta float64) *image.Gray {
	out := image.NewGray(gray.Rect)
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(math.Round(alpha*float64(v) + beta))
	}
	for i, v := range gray.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// Scale масштабирует изображение билинейной интерполяцией до размера w x h
func Scale(gray *image.Gray, w, h int) *image.Gray {
	if w == gray.Rect.Dx() && h == gray.Rect.Dy() {
		return gray
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)
	return dst
}

// ToRGBA копирует изображение в RGBA, например для рисования поверх кадра
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	return rgba
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
