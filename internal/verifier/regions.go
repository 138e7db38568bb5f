package verifier

import (
	"image"

	imageInternal "ropebot/internal/image"
)

// centerBox - сторона центрального квадрата вокруг персонажа
const centerBox = 200

// Regions - доли изменившихся пикселей по областям кадра
type Regions struct {
	Full   float64 `yaml:"full"`
	Center float64 `yaml:"center"`
	Lower  float64 `yaml:"lower"`
	Upper  float64 `yaml:"upper"`
}

// RegionRatios считает изменения отдельно для всего кадра, центра 200x200 и нижней и верхней половин.
// По центру видно движение персонажа, по половинам - сдвиг камеры при спуске.
func RegionRatios(before, after image.Image, noiseFloor uint8) Regions {
	diff := imageInternal.AbsDiff(before, after)
	w, h := diff.Rect.Dx(), diff.Rect.Dy()

	cx, cy := w/2, h/2
	center := image.Rect(cx-centerBox/2, cy-centerBox/2, cx+centerBox/2, cy+centerBox/2)

	return Regions{
		Full:   imageInternal.ChangedRatio(diff, diff.Rect, noiseFloor),
		Center: imageInternal.ChangedRatio(diff, center, noiseFloor),
		Lower:  imageInternal.ChangedRatio(diff, image.Rect(0, h/2, w, h), noiseFloor),
		Upper:  imageInternal.ChangedRatio(diff, image.Rect(0, 0, w, h/2), noiseFloor),
	}
}
