//go:build !opencv

package opencv

import (
	"errors"
	"image"
	"testing"

	"ropebot/internal/config"
	"ropebot/internal/logger"
)

func TestWithoutOpenCV(t *testing.T) {
	if m, err := NewMatcher(); !errors.Is(err, ErrNotCompiled) || m != nil {
		t.Errorf("NewMatcher() = %v, %v; want nil, ErrNotCompiled", m, err)
	}

	result, err := NewColorDetector(config.Default().Color, logger.Discard()).Detect(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if !errors.Is(err, ErrNotCompiled) {
		t.Errorf("Detect err = %v, want ErrNotCompiled", err)
	}
	if len(result.Blobs) != 0 {
		t.Errorf("blobs = %v", result.Blobs)
	}
}
