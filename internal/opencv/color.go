//go:build opencv

package opencv

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"ropebot/internal/config"
	"ropebot/internal/logger"
)

// Цвета рамок по диапазонам, остальные рисуются белым
var rangeColors = map[string]color.RGBA{
	"monster_red":    {255, 0, 0, 255},
	"monster_orange": {255, 165, 0, 255},
	"rope_brown":     {139, 69, 19, 255},
	"hp_green":       {0, 255, 0, 255},
}

// ColorDetector ищет объекты по диапазонам HSV
type ColorDetector struct {
	cfg    config.Color
	logger *logger.LoggerManager
}

// NewColorDetector создает детектор по цвету
func NewColorDetector(cfg config.Color, loggerManager *logger.LoggerManager) *ColorDetector {
	return &ColorDetector{cfg: cfg, logger: loggerManager}
}

// Detect переводит кадр в HSV, строит маску для каждого диапазона, чистит ее открытием и закрытием 3x3
// и возвращает контуры с площадью больше MinArea
func (c *ColorDetector) Detect(frame image.Image) (ColorResult, error) {
	src, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return ColorResult{}, fmt.Errorf("ошибка преобразования кадра: %w", err)
	}
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	annotated := src.Clone()
	defer annotated.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	result := ColorResult{Counts: map[string]int{}, Masks: map[string]image.Image{}}
	for _, r := range c.cfg.Ranges {
		if len(r.Lower) != 3 || len(r.Upper) != 3 {
			c.logger.Warn("⚠️ Диапазон %s пропущен: ожидается три компоненты HSV", r.Name)
			continue
		}

		mask, blobs := c.detectRange(hsv, kernel, r)
		result.Blobs = append(result.Blobs, blobs...)
		result.Counts[r.Name] = len(blobs)

		if img, err := mask.ToImage(); err == nil {
			result.Masks[r.Name] = img
		}
		mask.Close()

		boxColor, ok := rangeColors[r.Name]
		if !ok {
			boxColor = color.RGBA{255, 255, 255, 255}
		}
		for _, b := range blobs {
			gocv.Rectangle(&annotated, b.Box, boxColor, 2)
			gocv.PutText(&annotated, r.Name, image.Pt(b.Box.Min.X, b.Box.Min.Y-5), gocv.FontHersheySimplex, 0.5, boxColor, 1)
		}
		c.logger.Info("🎨 %s: %d объектов", r.Name, len(blobs))
	}

	sort.SliceStable(result.Blobs, func(i, j int) bool {
		return result.Blobs[i].Area > result.Blobs[j].Area
	})

	img, err := annotated.ToImage()
	if err != nil {
		return result, fmt.Errorf("ошибка преобразования результата: %w", err)
	}
	result.Annotated = img
	return result, nil
}

func (c *ColorDetector) detectRange(hsv, kernel gocv.Mat, r config.ColorRange) (gocv.Mat, []Blob) {
	lower := gocv.NewScalar(float64(r.Lower[0]), float64(r.Lower[1]), float64(r.Lower[2]), 0)
	upper := gocv.NewScalar(float64(r.Upper[0]), float64(r.Upper[1]), float64(r.Upper[2]), 0)

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	// открытие убирает шум, закрытие заполняет дырки
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(mask, &opened, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(opened, &mask, gocv.MorphClose, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var blobs []Blob
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= c.cfg.MinArea {
			continue
		}
		box := gocv.BoundingRect(contour)
		blobs = append(blobs, Blob{
			Range:  r.Name,
			Box:    box,
			Center: image.Pt(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2),
			Area:   area,
		})
	}
	return mask, blobs
}
