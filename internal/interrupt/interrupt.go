package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ropebot/internal/logger"
)

// InterruptManager превращает Ctrl+C, SIGTERM и горячие клавиши (Q, F12) в отмену контекста.
// Отмена происходит один раз, повторные прерывания игнорируются.
type InterruptManager struct {
	ctx           context.Context
	cancel        context.CancelFunc
	once          sync.Once
	mu            sync.Mutex
	reason        string
	stopSignals   func()
	loggerManager *logger.LoggerManager
}

// NewInterruptManager создает менеджер прерываний поверх parent
func NewInterruptManager(parent context.Context, loggerManager *logger.LoggerManager) *InterruptManager {
	ctx, cancel := context.WithCancel(parent)
	return &InterruptManager{
		ctx:           ctx,
		cancel:        cancel,
		stopSignals:   func() {},
		loggerManager: loggerManager,
	}
}

// Context возвращает контекст, который отменяется при прерывании
func (im *InterruptManager) Context() context.Context {
	return im.ctx
}

// Interrupt отменяет контекст. Срабатывает только первый вызов.
func (im *InterruptManager) Interrupt(reason string) {
	im.once.Do(func() {
		im.mu.Lock()
		im.reason = reason
		im.mu.Unlock()
		im.loggerManager.Info("🛑 Прерывание: %s", reason)
		im.cancel()
	})
}

// Reason возвращает причину прерывания или пустую строку
func (im *InterruptManager) Reason() string {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.reason
}

// StartMonitoring запускает мониторинг сигналов и горячих клавиш
func (im *InterruptManager) StartMonitoring() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	im.stopSignals = func() {
		signal.Stop(sigChan)
		close(done)
	}

	go func() {
		select {
		case sig := <-sigChan:
			im.Interrupt("сигнал " + sig.String())
		case <-done:
		case <-im.ctx.Done():
		}
	}()

	go im.monitorHotkeys()
}

// Stop прекращает мониторинг и освобождает контекст
func (im *InterruptManager) Stop() {
	im.stopSignals()
	im.stopSignals = func() {}
	im.cancel()
}
