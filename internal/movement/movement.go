// Package movement переводит решения бота в последовательности нажатий:
// ходьба, прыжки, подъем и спуск по верёвке, атака.
package movement

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"ropebot/internal/config"
	"ropebot/internal/geom"
	"ropebot/internal/input"
	"ropebot/internal/logger"
	"ropebot/internal/verifier"
)

// Способы спуска с верёвки
const (
	DescentDown      = "down"
	DescentLeftJump  = "left_jump"
	DescentRightJump = "right_jump"
)

// Длительности отдельных нажатий
const (
	keyTap        = 100 * time.Millisecond
	jumpTap       = 200 * time.Millisecond
	upNudge       = 500 * time.Millisecond
	ropeAlign     = 300 * time.Millisecond
	sweepMove     = 300 * time.Millisecond
	descentSettle = 500 * time.Millisecond
	jumpAirTime   = 300 * time.Millisecond
)

// Direction - направление по горизонтали
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Toward возвращает направление от from к to по оси X
func Toward(from, to geom.Point) Direction {
	if to.X > from.X {
		return Right
	}
	return Left
}

// MovementManager управляет перемещением персонажа через Injector
type MovementManager struct {
	input  input.Injector
	keys   config.Keys
	cfg    config.Agent
	sleep  func(time.Duration)
	rng    *rand.Rand
	logger *logger.LoggerManager
}

// NewMovementManager создает новый экземпляр MovementManager
func NewMovementManager(injector input.Injector, keys config.Keys, cfg config.Agent, loggerManager *logger.LoggerManager) *MovementManager {
	return &MovementManager{
		input:  injector,
		keys:   keys,
		cfg:    cfg,
		sleep:  time.Sleep,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: loggerManager,
	}
}

// SetSleep заменяет функцию ожидания
func (m *MovementManager) SetSleep(sleep func(time.Duration)) {
	m.sleep = sleep
}

// SetRand заменяет генератор случайных чисел
func (m *MovementManager) SetRand(rng *rand.Rand) {
	m.rng = rng
}

// Wait ждет d
func (m *MovementManager) Wait(d time.Duration) {
	m.sleep(d)
}

func (m *MovementManager) key(d Direction) string {
	if d == Left {
		return m.keys.Left
	}
	return m.keys.Right
}

// Move идет в направлении d в течение duration
func (m *MovementManager) Move(d Direction, duration time.Duration) error {
	m.logger.Debug("🚶 Движение %s %v", d, duration)
	return m.input.Tap(m.key(d), duration)
}

// Face разворачивает персонажа коротким нажатием
func (m *MovementManager) Face(d Direction) error {
	return m.input.Tap(m.key(d), keyTap)
}

// Jump прыгает на месте
func (m *MovementManager) Jump() error {
	m.logger.Debug("⬆️ Прыжок")
	return m.input.Tap(m.keys.Jump, jumpTap)
}

// Drop спрыгивает с платформы вниз: вниз + прыжок
func (m *MovementManager) Drop() error {
	m.logger.Debug("⬇️ Спрыгиваем вниз")
	return m.input.Chord([]string{m.keys.Down, m.keys.Jump}, jumpTap)
}

// Approach сдвигается к цели: ходьба по горизонтали, затем прыжок или спрыгивание по вертикали.
// Возвращает описание выполненных действий.
func (m *MovementManager) Approach(from, to geom.Point) (string, error) {
	dx, dy := to.Sub(from)
	var done []string

	if math.Abs(dx) > m.cfg.MoveThreshold {
		d := Toward(from, to)
		duration := min(time.Duration(math.Abs(dx)/m.cfg.PixelsPerSecond*float64(time.Second)), m.cfg.MaxMove)
		if err := m.Move(d, duration); err != nil {
			return "", err
		}
		done = append(done, fmt.Sprintf("move_%s(%v)", d, duration))
	}

	switch {
	case dy < -m.cfg.JumpThreshold:
		if err := m.Jump(); err != nil {
			return "", err
		}
		done = append(done, "jump")
	case dy > m.cfg.DropThreshold:
		if err := m.Drop(); err != nil {
			return "", err
		}
		done = append(done, "drop")
	}

	if len(done) == 0 {
		return "hold", nil
	}
	return fmt.Sprint(done), nil
}

// DropToward выравнивается по горизонтали и спрыгивает на нижнюю платформу
func (m *MovementManager) DropToward(from, to geom.Point) error {
	if dx := to.X - from.X; math.Abs(dx) > m.cfg.MoveThreshold {
		duration := min(time.Duration(math.Abs(dx)/m.cfg.PixelsPerSecond*float64(time.Second)), m.cfg.MaxMove)
		if err := m.Move(Toward(from, to), duration); err != nil {
			return err
		}
	}
	return m.Drop()
}

// MountRope подходит к верёвке, если она дальше допуска, и лезет вверх
func (m *MovementManager) MountRope(from, rope geom.Point) error {
	if math.Abs(rope.X-from.X) > m.cfg.RopeAlign {
		if err := m.Move(Toward(from, rope), ropeAlign); err != nil {
			return err
		}
	}
	m.logger.Info("🧗 Лезем по верёвке вверх")
	return m.input.Tap(m.keys.Up, m.cfg.ClimbHold)
}

// NudgeUp коротко жмет вверх, оставаясь на верёвке
func (m *MovementManager) NudgeUp() error {
	return m.input.Tap(m.keys.Up, upNudge)
}

// Descend спускается с верёвки указанным способом и ждет, пока персонаж приземлится
func (m *MovementManager) Descend(method string) error {
	m.logger.Info("⬇️ Спуск с верёвки: %s", method)

	var err error
	switch method {
	case DescentDown:
		err = m.input.Tap(m.keys.Down, m.cfg.DescentHold)
	case DescentLeftJump:
		err = m.sideJump(Left)
	case DescentRightJump:
		err = m.sideJump(Right)
	default:
		return fmt.Errorf("неизвестный способ спуска: %q", method)
	}
	if err != nil {
		return err
	}

	m.sleep(descentSettle)
	return nil
}

// sideJump зажимает направление, прыгает и держит направление, пока персонаж в воздухе
func (m *MovementManager) sideJump(d Direction) error {
	side := m.key(d)
	if err := m.input.KeyDown(side); err != nil {
		return err
	}
	jumpErr := m.input.Tap(m.keys.Jump, jumpTap)
	if jumpErr == nil {
		m.sleep(jumpAirTime)
	}
	return errors.Join(jumpErr, m.input.KeyUp(side))
}

// AttackRound нажимает все клавиши атаки по разу с паузой gap после каждой
func (m *MovementManager) AttackRound(gap time.Duration) error {
	for _, key := range m.keys.Attack {
		if err := m.input.Tap(key, keyTap); err != nil {
			return err
		}
		m.sleep(gap)
	}
	return nil
}

// Attack атакует одиночную цель: один круг с паузой на перезарядку
func (m *MovementManager) Attack(toward Direction) error {
	if err := m.Face(toward); err != nil {
		return err
	}
	return m.AttackRound(m.cfg.AttackCooldown)
}

// Sweep атакует группу: cycles кругов, между кругами шаг поочередно вправо и влево
func (m *MovementManager) Sweep(toward Direction, cycles int) error {
	if err := m.Face(toward); err != nil {
		return err
	}
	for cycle := 0; cycle < cycles; cycle++ {
		m.logger.Debug("⚔️ Групповая атака %d/%d", cycle+1, cycles)
		if err := m.AttackRound(m.cfg.AttackGap); err != nil {
			return err
		}
		if cycle < cycles-1 {
			d := Right
			if cycle%2 == 1 {
				d = Left
			}
			if err := m.Move(d, sweepMove); err != nil {
				return err
			}
		}
	}
	return nil
}

// Explore идет в случайную сторону случайное время из [ExploreMin, ExploreMax]
func (m *MovementManager) Explore() (Direction, time.Duration, error) {
	d := Left
	if m.rng.Intn(2) == 1 {
		d = Right
	}
	duration := m.cfg.ExploreMin
	if spread := m.cfg.ExploreMax - m.cfg.ExploreMin; spread > 0 {
		duration += time.Duration(m.rng.Int63n(int64(spread) + 1))
	}
	m.logger.Info("🧭 Исследуем: %s %v", d, duration)
	return d, duration, m.Move(d, duration)
}

// DescentMethods возвращает способы спуска для стратегии: simple пробует только "вниз",
// smart дополнительно спрыгивает влево и вправо
func DescentMethods(strategy string) []string {
	if strategy == config.StrategySmart {
		return []string{DescentDown, DescentLeftJump, DescentRightJump}
	}
	return []string{DescentDown}
}

// Strategies оборачивает способы спуска в стратегии для проверки по кадрам
func (m *MovementManager) Strategies(strategy string) []verifier.Strategy {
	methods := DescentMethods(strategy)
	out := make([]verifier.Strategy, 0, len(methods))
	for _, method := range methods {
		method := method
		out = append(out, verifier.Strategy{
			Name:   method,
			Action: func() error { return m.Descend(method) },
		})
	}
	return out
}
