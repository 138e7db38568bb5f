package interrupt

import (
	"context"
	"testing"
	"time"

	"ropebot/internal/logger"
)

func TestInterruptOnce(t *testing.T) {
	im := NewInterruptManager(context.Background(), logger.Discard())
	defer im.Stop()

	select {
	case <-im.Context().Done():
		t.Fatal("context cancelled before interrupt")
	default:
	}

	im.Interrupt("first")
	im.Interrupt("second")

	select {
	case <-im.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
	if im.Reason() != "first" {
		t.Errorf("reason = %q, want first", im.Reason())
	}
}

func TestParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	im := NewInterruptManager(parent, logger.Discard())
	im.StartMonitoring()
	defer im.Stop()

	cancel()
	select {
	case <-im.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation not propagated")
	}
	if im.Reason() != "" {
		t.Errorf("reason = %q, want empty", im.Reason())
	}
}
