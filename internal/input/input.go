// Package input отвечает за нажатия клавиш и следит, чтобы ни одна клавиша не осталась зажатой.
package input

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"ropebot/internal/logger"
)

var (
	// ErrKeyNotHeld возвращается при отпускании клавиши, которая не была нажата
	ErrKeyNotHeld = errors.New("key is not held")
	// ErrKeyAlreadyHeld возвращается при повторном нажатии уже зажатой клавиши
	ErrKeyAlreadyHeld = errors.New("key is already held")
)

// Injector - команды ввода, которыми пользуется цикл принятия решений
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	Press(key string) error
	Tap(key string, d time.Duration) error
	Chord(keys []string, d time.Duration) error
	ReleaseAll() error
}

// Backend - способ доставить нажатие до игры (robotgo, Arduino)
type Backend interface {
	Name() string
	KeyDown(key string) error
	KeyUp(key string) error
}

// Keyboard реализует Injector поверх Backend и помнит зажатые клавиши
type Keyboard struct {
	mu      sync.Mutex
	backend Backend
	held    []string
	sleep   func(time.Duration)
	logger  *logger.LoggerManager
}

// NewKeyboard создает клавиатуру над бэкендом
func NewKeyboard(backend Backend, loggerManager *logger.LoggerManager) *Keyboard {
	return &Keyboard{
		backend: backend,
		sleep:   time.Sleep,
		logger:  loggerManager,
	}
}

// SetSleep заменяет функцию ожидания
func (k *Keyboard) SetSleep(sleep func(time.Duration)) {
	k.sleep = sleep
}

// Backend возвращает имя бэкенда
func (k *Keyboard) Backend() string {
	return k.backend.Name()
}

func (k *Keyboard) indexOf(key string) int {
	for i, h := range k.held {
		if h == key {
			return i
		}
	}
	return -1
}

// KeyDown нажимает клавишу и запоминает ее как зажатую
func (k *Keyboard) KeyDown(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.indexOf(key) >= 0 {
		return fmt.Errorf("%w: %s", ErrKeyAlreadyHeld, key)
	}
	if err := k.backend.KeyDown(key); err != nil {
		return fmt.Errorf("key down %s: %w", key, err)
	}
	k.held = append(k.held, key)
	return nil
}

// KeyUp отпускает зажатую клавишу. Отпускание незажатой клавиши - ошибка вызывающего.
func (k *Keyboard) KeyUp(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	i := k.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotHeld, key)
	}
	// клавиша считается отпущенной, даже если бэкенд вернул ошибку, чтобы не зациклиться на ней
	k.held = append(k.held[:i], k.held[i+1:]...)
	if err := k.backend.KeyUp(key); err != nil {
		return fmt.Errorf("key up %s: %w", key, err)
	}
	return nil
}

// Press нажимает и сразу отпускает клавишу
func (k *Keyboard) Press(key string) error {
	return k.Tap(key, 0)
}

// Tap удерживает клавишу d. Клавиша отпускается в любом случае.
func (k *Keyboard) Tap(key string, d time.Duration) error {
	return k.Chord([]string{key}, d)
}

// Chord зажимает клавиши по порядку, держит d и отпускает в обратном порядке.
// Если одна из клавиш не нажалась, уже нажатые отпускаются.
func (k *Keyboard) Chord(keys []string, d time.Duration) error {
	pressed := make([]string, 0, len(keys))
	var err error
	for _, key := range keys {
		if err = k.KeyDown(key); err != nil {
			break
		}
		pressed = append(pressed, key)
	}
	if err == nil && d > 0 {
		k.sleep(d)
	}

	errs := []error{err}
	for i := len(pressed) - 1; i >= 0; i-- {
		errs = append(errs, k.KeyUp(pressed[i]))
	}
	return errors.Join(errs...)
}

// Held возвращает зажатые клавиши в порядке нажатия
func (k *Keyboard) Held() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.held...)
}

// ReleaseAll отпускает все зажатые клавиши. Вызывается при остановке.
func (k *Keyboard) ReleaseAll() error {
	k.mu.Lock()
	held := append([]string(nil), k.held...)
	k.mu.Unlock()

	var errs []error
	for i := len(held) - 1; i >= 0; i-- {
		if err := k.KeyUp(held[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(held) > 0 {
		k.logger.Info("⌨️ Отпущены клавиши: %v", held)
	}
	return errors.Join(errs...)
}
