package diagnostics

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"ropebot/internal/logger"
)

func fixedWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter(filepath.Join(t.TempDir(), "screens"), logger.Discard())
	w.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 123000000, time.UTC) }
	return w
}

func TestSaveImage(t *testing.T) {
	w := fixedWriter(t)

	path, err := w.SaveImage("diff_left jump/2", image.NewGray(image.Rect(0, 0, 4, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "diff_left_jump_2_20240305_140709_123.png" {
		t.Errorf("file name = %s", got)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("decoded bounds = %v", img.Bounds())
	}
}

func TestSaveReport(t *testing.T) {
	w := fixedWriter(t)
	report := struct {
		Category  string  `yaml:"category"`
		Threshold float64 `yaml:"threshold"`
		Found     int     `yaml:"found"`
	}{"rope", 0.65, 3}

	path, err := w.SaveReport("diagnose", report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".yaml") {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["category"] != "rope" || decoded["found"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestSaveImageUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewWriter(filepath.Join(blocker, "screens"), logger.Discard())
	if _, err := w.SaveImage("x", image.NewGray(image.Rect(0, 0, 1, 1))); err == nil {
		t.Fatal("expected error when the output dir cannot be created")
	}
}
