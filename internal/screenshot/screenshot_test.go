package screenshot

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"ropebot/internal/logger"
)

func stubCapture(t *testing.T, frame func(r image.Rectangle) (*image.RGBA, error)) {
	t.Helper()
	orig := captureRect
	captureRect = frame
	t.Cleanup(func() { captureRect = orig })
}

func TestCaptureRebasesOrigin(t *testing.T) {
	var asked image.Rectangle
	stubCapture(t, func(r image.Rectangle) (*image.RGBA, error) {
		asked = r
		return image.NewRGBA(r), nil
	})

	m := &ScreenshotManager{bounds: image.Rect(100, 50, 740, 530), logger: logger.Discard()}
	img, err := m.Capture()
	if err != nil {
		t.Fatal(err)
	}
	if asked != image.Rect(100, 50, 740, 530) {
		t.Errorf("captured %v", asked)
	}
	if img.Bounds() != image.Rect(0, 0, 640, 480) {
		t.Errorf("bounds = %v, want origin at 0,0", img.Bounds())
	}
	if w, h := m.ScreenSize(); w != 640 || h != 480 {
		t.Errorf("screen size = %dx%d", w, h)
	}
}

func TestCaptureError(t *testing.T) {
	stubCapture(t, func(image.Rectangle) (*image.RGBA, error) {
		return nil, errors.New("no display")
	})

	m := &ScreenshotManager{bounds: image.Rect(0, 0, 10, 10), logger: logger.Discard()}
	if _, err := m.Capture(); err == nil {
		t.Fatal("expected error")
	}
}

func TestFitToGameWindow(t *testing.T) {
	stubCapture(t, func(r image.Rectangle) (*image.RGBA, error) {
		img := image.NewRGBA(r)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, color.RGBA{A: 255})
			}
		}
		for y := r.Min.Y + 20; y < r.Min.Y+60; y++ {
			for x := r.Min.X + 10; x < r.Min.X+90; x++ {
				img.Set(x, y, color.RGBA{R: 120, G: 80, B: 40, A: 255})
			}
		}
		return img, nil
	})

	m := &ScreenshotManager{bounds: image.Rect(1000, 0, 1100, 100), logger: logger.Discard()}
	if err := m.FitToGameWindow(); err != nil {
		t.Fatal(err)
	}
	if got := m.Bounds(); got != image.Rect(1010, 20, 1090, 60) {
		t.Errorf("bounds = %v", got)
	}
}
