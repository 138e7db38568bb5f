package screenshot

import (
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"

	imageInternal "ropebot/internal/image"
	"ropebot/internal/logger"
)

// Provider отдает текущий кадр экрана
type Provider interface {
	Capture() (image.Image, error)
	ScreenSize() (int, int)
}

// captureRect заменяется в тестах
var captureRect = screenshot.CaptureRect

// ScreenshotManager захватывает кадры с дисплея через kbinani/screenshot
type ScreenshotManager struct {
	mu     sync.Mutex
	bounds image.Rectangle
	logger *logger.LoggerManager
}

// NewScreenshotManager создает менеджер для дисплея display.
// Пустой region означает весь дисплей, иначе region задан относительно левого верхнего угла дисплея.
func NewScreenshotManager(display int, region image.Rectangle, loggerManager *logger.LoggerManager) (*ScreenshotManager, error) {
	if n := screenshot.NumActiveDisplays(); display < 0 || display >= n {
		return nil, fmt.Errorf("дисплей %d недоступен (активных дисплеев: %d)", display, n)
	}

	bounds := screenshot.GetDisplayBounds(display)
	if !region.Empty() {
		bounds = region.Add(bounds.Min).Intersect(bounds)
		if bounds.Empty() {
			return nil, fmt.Errorf("область захвата %v вне дисплея %d", region, display)
		}
	}

	loggerManager.Info("🖥️ Область захвата: %v", bounds)
	return &ScreenshotManager{bounds: bounds, logger: loggerManager}, nil
}

// Capture захватывает кадр. Координаты результата начинаются с (0, 0).
func (m *ScreenshotManager) Capture() (image.Image, error) {
	m.mu.Lock()
	bounds := m.bounds
	m.mu.Unlock()

	img, err := captureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	img.Rect = img.Rect.Sub(img.Rect.Min)
	return img, nil
}

// ScreenSize возвращает размер области захвата
func (m *ScreenshotManager) ScreenSize() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds.Dx(), m.bounds.Dy()
}

// Bounds возвращает область захвата в координатах рабочего стола
func (m *ScreenshotManager) Bounds() image.Rectangle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}

// FitToGameWindow сужает область захвата до окна игры, найденного по черной рамке
func (m *ScreenshotManager) FitToGameWindow() error {
	img, err := m.Capture()
	if err != nil {
		return err
	}

	window, err := imageInternal.FindGameWindow(img)
	if err != nil {
		return fmt.Errorf("окно игры не найдено: %w", err)
	}

	m.mu.Lock()
	m.bounds = window.Add(m.bounds.Min)
	bounds := m.bounds
	m.mu.Unlock()

	m.logger.Info("🎯 Окно игры найдено: %v", bounds)
	return nil
}
