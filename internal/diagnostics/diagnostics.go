// Package diagnostics сохраняет отладочные кадры и отчеты в каталог вывода.
// Артефакты только пишутся и никогда не читаются ботом.
package diagnostics

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ropebot/internal/logger"
)

const timestampLayout = "20060102_150405.000"

// Writer сохраняет файлы с отметкой времени в имени
type Writer struct {
	dir    string
	now    func() time.Time
	logger *logger.LoggerManager
}

// NewWriter создает writer для каталога dir. Каталог создается при первой записи.
func NewWriter(dir string, loggerManager *logger.LoggerManager) *Writer {
	return &Writer{dir: dir, now: time.Now, logger: loggerManager}
}

// Dir возвращает каталог вывода
func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) path(prefix, ext string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога %s: %w", w.dir, err)
	}
	ts := strings.ReplaceAll(w.now().Format(timestampLayout), ".", "_")
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.%s", sanitize(prefix), ts, ext)), nil
}

// SaveImage сохраняет PNG <prefix>_<время>.png и возвращает путь
func (w *Writer) SaveImage(prefix string, img image.Image) (string, error) {
	path, err := w.path(prefix, "png")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	w.logger.Debug("📸 Сохранено: %s", path)
	return path, nil
}

// SaveReport сохраняет отчет в YAML <name>_<время>.yaml
func (w *Writer) SaveReport(name string, report any) (string, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации отчета: %w", err)
	}

	path, err := w.path(name, "yaml")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("ошибка записи отчета: %w", err)
	}
	w.logger.Info("📝 Отчет сохранен: %s", path)
	return path, nil
}

func sanitize(name string) string {
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_").Replace(name)
}
