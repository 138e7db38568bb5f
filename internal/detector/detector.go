package detector

import (
	"fmt"
	"image"
	"image/color"

	"ropebot/internal/config"
	imageInternal "ropebot/internal/image"
	"ropebot/internal/imageutils"
	"ropebot/internal/logger"
	"ropebot/internal/screenshot"
	"ropebot/internal/templates"
)

// FrameSaver сохраняет отладочные кадры. Ошибки сохранения не влияют на детекцию.
type FrameSaver interface {
	SaveImage(prefix string, img image.Image) (string, error)
}

// Detector ищет шаблоны библиотеки на кадрах провайдера захвата
type Detector struct {
	matcher Matcher
	capture screenshot.Provider
	cfg     config.Detector
	saver   FrameSaver
	logger  *logger.LoggerManager
}

// NewDetector создает детектор. saver может быть nil.
func NewDetector(matcher Matcher, capture screenshot.Provider, cfg config.Detector, saver FrameSaver, loggerManager *logger.LoggerManager) *Detector {
	return &Detector{
		matcher: matcher,
		capture: capture,
		cfg:     cfg,
		saver:   saver,
		logger:  loggerManager,
	}
}

// Threshold возвращает настроенный порог категории
func (d *Detector) Threshold(c templates.Category) float64 {
	switch c {
	case templates.Rope:
		return d.cfg.Thresholds.Rope
	case templates.Platform:
		return d.cfg.Thresholds.Platform
	case templates.OnRope:
		return d.cfg.OnRopeThreshold
	default:
		return d.cfg.Thresholds.Enemy
	}
}

// Capture захватывает кадр через провайдер детектора
func (d *Detector) Capture() (image.Image, error) {
	return d.capture.Capture()
}

// Character возвращает оценку позиции персонажа: центр экрана
func (d *Detector) Character() image.Point {
	w, h := d.capture.ScreenSize()
	return image.Pt(w/2, h/2)
}

// Detect захватывает кадр и ищет на нем шаблоны
func (d *Detector) Detect(tmpls []templates.Template, threshold float64) ([]Detection, error) {
	frame, err := d.capture.Capture()
	if err != nil {
		return nil, fmt.Errorf("ошибка захвата кадра: %w", err)
	}

	detections := d.DetectFrame(frame, tmpls, threshold)
	if d.cfg.SaveFrames {
		label := "unknown"
		if len(tmpls) > 0 {
			label = tmpls[0].Category.String()
		}
		d.SaveFrames(frame, "detection_"+label, detections)
	}
	return detections, nil
}

// DetectFrame возвращает все вхождения шаблонов на кадре с корреляцией >= threshold.
// Дубликаты не удаляются: пересекающиеся совпадения и совпадения разных масштабов сохраняются.
func (d *Detector) DetectFrame(frame image.Image, tmpls []templates.Template, threshold float64) []Detection {
	return d.DetectGray(imageInternal.ToGray(frame), tmpls, threshold)
}

// DetectGray как DetectFrame, но для уже переведенного в оттенки серого кадра
func (d *Detector) DetectGray(gray *image.Gray, tmpls []templates.Template, threshold float64) []Detection {
	fw, fh := gray.Rect.Dx(), gray.Rect.Dy()

	var detections []Detection
	for _, t := range tmpls {
		tw, th := t.Size()
		found := 0
		for _, scale := range d.cfg.Scales {
			w, h := int(float64(tw)*scale), int(float64(th)*scale)
			if w <= 0 || h <= 0 || w > fw || h > fh {
				continue
			}

			scaled := imageInternal.Scale(t.Image, w, h)
			for _, m := range d.matcher.Match(gray, scaled, threshold) {
				detections = append(detections, Detection{
					Name:       t.Name,
					Category:   t.Category,
					Position:   image.Pt(m.X+w/2, m.Y+h/2),
					Box:        image.Rect(m.X, m.Y, m.X+w, m.Y+h),
					Confidence: m.Score,
					Scale:      scale,
					Priority:   t.Priority,
				})
				found++
			}
		}
		if found > 0 {
			d.logger.Debug("🔍 Шаблон %s: %d совпадений (порог %.2f)", t.Name, found, threshold)
		}
	}
	return detections
}

// SaveFrames сохраняет исходный и размеченный кадры. Ошибки только логируются.
func (d *Detector) SaveFrames(frame image.Image, prefix string, detections []Detection) {
	if d.saver == nil {
		return
	}
	if _, err := d.saver.SaveImage("screenshot", frame); err != nil {
		d.logger.Warn("⚠️ Не удалось сохранить кадр: %v", err)
	}
	path, err := d.saver.SaveImage(prefix, Annotate(frame, detections))
	if err != nil {
		d.logger.Warn("⚠️ Не удалось сохранить размеченный кадр: %v", err)
		return
	}
	d.logger.Debug("💾 Размеченный кадр сохранен: %s", path)
}

// CategoryColor возвращает цвет разметки категории
func CategoryColor(c templates.Category) color.RGBA {
	switch c {
	case templates.Enemy:
		return imageutils.Green
	case templates.Rope:
		return imageutils.Blue
	case templates.Platform:
		return imageutils.Red
	default:
		return imageutils.Yellow
	}
}

// Annotate рисует рамки и подписи "имя:уверенность" поверх копии кадра
func Annotate(frame image.Image, detections []Detection) *image.RGBA {
	out := imageInternal.ToRGBA(frame)
	for _, det := range detections {
		c := CategoryColor(det.Category)
		imageutils.DrawRect(out, det.Box, c, 2)
		imageutils.DrawLabel(out, det.Box.Min.X, det.Box.Min.Y-4, fmt.Sprintf("%s:%.2f", det.Name, det.Confidence), c)
	}
	return out
}
