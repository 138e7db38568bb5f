//go:build !opencv

package opencv

import (
	"image"

	"ropebot/internal/config"
	"ropebot/internal/detector"
	"ropebot/internal/logger"
)

// NewMatcher без OpenCV недоступен, используйте detector.backend: native
func NewMatcher() (detector.Matcher, error) {
	return nil, ErrNotCompiled
}

// ColorDetector без OpenCV только сообщает, что поиск по цвету недоступен
type ColorDetector struct {
	cfg    config.Color
	logger *logger.LoggerManager
}

// NewColorDetector создает детектор по цвету
func NewColorDetector(cfg config.Color, loggerManager *logger.LoggerManager) *ColorDetector {
	return &ColorDetector{cfg: cfg, logger: loggerManager}
}

// Detect всегда возвращает ErrNotCompiled
func (c *ColorDetector) Detect(image.Image) (ColorResult, error) {
	c.logger.Warn("⚠️ Поиск по цвету недоступен: соберите с -tags opencv")
	return ColorResult{}, ErrNotCompiled
}
