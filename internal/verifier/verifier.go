// Package verifier проверяет, что действие изменило картинку: снимает кадр до и после
// и классифицирует долю изменившихся пикселей.
package verifier

import (
	"errors"
	"fmt"
	"image"
	"time"

	"ropebot/internal/config"
	imageInternal "ropebot/internal/image"
	"ropebot/internal/logger"
	"ropebot/internal/screenshot"
)

// ErrAllStrategiesFailed возвращается, когда ни одна стратегия не дала эффекта.
// Это мягкая ошибка: вызывающий решает, продолжать ли работу.
var ErrAllStrategiesFailed = errors.New("no strategy produced a visible effect")

// Verdict - сила эффекта действия
type Verdict int

const (
	None Verdict = iota
	Weak
	Moderate
	Strong
)

func (v Verdict) String() string {
	switch v {
	case Weak:
		return "weak"
	case Moderate:
		return "moderate"
	case Strong:
		return "strong"
	default:
		return "none"
	}
}

// Effect сообщает, считается ли действие выполненным. Неудача только None.
func (v Verdict) Effect() bool {
	return v != None
}

// Outcome - результат проверки одного действия
type Outcome struct {
	Label   string
	Before  image.Image
	After   image.Image
	Diff    *image.Gray
	Ratio   float64
	Verdict Verdict
}

// FrameSaver сохраняет отладочные кадры
type FrameSaver interface {
	SaveImage(prefix string, img image.Image) (string, error)
}

// Strategy - вариант действия для FirstEffective
type Strategy struct {
	Name   string
	Action func() error
}

// Verifier сравнивает кадры до и после действия
type Verifier struct {
	capture screenshot.Provider
	cfg     config.Verifier
	saver   FrameSaver
	logger  *logger.LoggerManager
	sleep   func(time.Duration)
}

// NewVerifier создает проверяющего. saver может быть nil.
func NewVerifier(capture screenshot.Provider, cfg config.Verifier, saver FrameSaver, loggerManager *logger.LoggerManager) *Verifier {
	return &Verifier{
		capture: capture,
		cfg:     cfg,
		saver:   saver,
		logger:  loggerManager,
		sleep:   time.Sleep,
	}
}

// SetSleep заменяет функцию ожидания
func (v *Verifier) SetSleep(sleep func(time.Duration)) {
	v.sleep = sleep
}

// SettleDelay возвращает настроенную паузу перед вторым кадром
func (v *Verifier) SettleDelay() time.Duration {
	return v.cfg.SettleDelay
}

// Classify переводит долю изменившихся пикселей в вердикт
func (v *Verifier) Classify(ratio float64) Verdict {
	switch {
	case ratio > v.cfg.Strong:
		return Strong
	case ratio > v.cfg.Moderate:
		return Moderate
	case ratio > v.cfg.Weak:
		return Weak
	default:
		return None
	}
}

// ChangedRatio возвращает долю пикселей, у которых яркость поканальной разницы больше noiseFloor
func ChangedRatio(before, after image.Image, noiseFloor uint8) float64 {
	diff := imageInternal.AbsDiff(before, after)
	return imageInternal.ChangedRatio(diff, diff.Rect, noiseFloor)
}

// Compare классифицирует уже снятую пару кадров
func (v *Verifier) Compare(label string, before, after image.Image) Outcome {
	diff := imageInternal.AbsDiff(before, after)
	ratio := imageInternal.ChangedRatio(diff, diff.Rect, v.cfg.NoiseFloor)
	return Outcome{
		Label:   label,
		Before:  before,
		After:   after,
		Diff:    diff,
		Ratio:   ratio,
		Verdict: v.Classify(ratio),
	}
}

// Verify снимает кадр, выполняет действие, ждет settle и снимает второй кадр.
// Ошибка возвращается только при сбое захвата или самого действия; отсутствие эффекта ошибкой не является.
func (v *Verifier) Verify(label string, action func() error, settle time.Duration) (Outcome, error) {
	before, err := v.capture.Capture()
	if err != nil {
		return Outcome{Label: label}, fmt.Errorf("кадр до действия %s: %w", label, err)
	}

	if err := action(); err != nil {
		return Outcome{Label: label, Before: before}, fmt.Errorf("действие %s: %w", label, err)
	}
	v.sleep(settle)

	after, err := v.capture.Capture()
	if err != nil {
		return Outcome{Label: label, Before: before}, fmt.Errorf("кадр после действия %s: %w", label, err)
	}

	outcome := v.Compare(label, before, after)
	v.logger.Info("📊 %s: изменилось %.2f%% пикселей, эффект %s", label, outcome.Ratio*100, outcome.Verdict)
	v.save(outcome)
	return outcome, nil
}

// FirstEffective пробует стратегии по порядку и останавливается на первой с эффектом.
// Если эффекта нет ни у одной, возвращает последний результат и ErrAllStrategiesFailed.
func (v *Verifier) FirstEffective(strategies []Strategy, settle time.Duration) (Outcome, error) {
	var last Outcome
	for i, s := range strategies {
		v.logger.Info("🔄 Стратегия %d/%d: %s", i+1, len(strategies), s.Name)
		outcome, err := v.Verify(s.Name, s.Action, settle)
		if err != nil {
			v.logger.LogError(err, fmt.Sprintf("Стратегия %s не выполнена", s.Name))
			last = outcome
			continue
		}
		if outcome.Verdict.Effect() {
			v.logger.Info("✅ Стратегия %s сработала", s.Name)
			return outcome, nil
		}
		last = outcome
	}
	v.logger.Warn("⚠️ Ни одна из %d стратегий не дала эффекта", len(strategies))
	return last, ErrAllStrategiesFailed
}

func (v *Verifier) save(o Outcome) {
	if v.saver == nil {
		return
	}
	frames := []struct {
		prefix string
		img    image.Image
	}{
		{"before_" + o.Label, o.Before},
		{"after_" + o.Label, o.After},
		{"diff_" + o.Label, o.Diff},
	}
	for _, f := range frames {
		if _, err := v.saver.SaveImage(f.prefix, f.img); err != nil {
			v.logger.Warn("⚠️ Не удалось сохранить %s: %v", f.prefix, err)
			return
		}
	}
}
