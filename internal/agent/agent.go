// Package agent - цикл принятия решений: восприятие, выбор действия, действие.
// Состояние пересчитывается из свежей сцены на каждом цикле, между циклами хранится только
// признак "персонаж на верёвке".
package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ropebot/internal/cluster"
	"ropebot/internal/config"
	"ropebot/internal/database"
	"ropebot/internal/detector"
	"ropebot/internal/geom"
	"ropebot/internal/input"
	"ropebot/internal/logger"
	"ropebot/internal/movement"
	"ropebot/internal/verifier"
)

// maxConsecutiveErrors - сколько циклов подряд могут завершиться ошибкой, прежде чем Run остановится
const maxConsecutiveErrors = 5

// State - состояние цикла
type State int

const (
	OnStructure State = iota
	Engaging
	Repositioning
	Exploring
)

func (s State) String() string {
	switch s {
	case OnStructure:
		return "on_structure"
	case Engaging:
		return "engaging"
	case Repositioning:
		return "repositioning"
	case Exploring:
		return "exploring"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scanner - восприятие: один кадр на вызов Scan
type Scanner interface {
	Scan() (detector.Scene, error)
	OnStructure(scene detector.Scene) (detector.OnRopeResult, error)
}

// Verifier проверяет по кадрам, дало ли действие эффект
type Verifier interface {
	FirstEffective(strategies []verifier.Strategy, settle time.Duration) (verifier.Outcome, error)
	SettleDelay() time.Duration
}

// Journal сохраняет историю циклов. DatabaseManager реализует этот интерфейс.
type Journal interface {
	RecordCycle(rec database.CycleRecord)
	RecordVerification(rec database.VerificationRecord)
}

// Agent хранит единственное изменяемое состояние бота
type Agent struct {
	scanner  Scanner
	selector *cluster.Selector
	mover    *movement.MovementManager
	input    input.Injector
	verifier Verifier
	cfg      config.Agent
	logger   *logger.LoggerManager

	journal Journal
	runID   string
	sleep   func(time.Duration)

	state       State
	scene       detector.Scene
	onStructure bool
	cycle       int
}

// NewAgent собирает цикл из готовых компонентов
func NewAgent(scanner Scanner, selector *cluster.Selector, mover *movement.MovementManager, injector input.Injector, v Verifier, cfg config.Agent, loggerManager *logger.LoggerManager) *Agent {
	return &Agent{
		scanner:  scanner,
		selector: selector,
		mover:    mover,
		input:    injector,
		verifier: v,
		cfg:      cfg,
		logger:   loggerManager,
		sleep:    time.Sleep,
		state:    Exploring,
	}
}

// SetJournal включает запись циклов в журнал
func (a *Agent) SetJournal(journal Journal, runID string) {
	a.journal = journal
	a.runID = runID
}

// SetSleep заменяет функцию ожидания
func (a *Agent) SetSleep(sleep func(time.Duration)) {
	a.sleep = sleep
}

// State возвращает состояние последнего цикла
func (a *Agent) State() State {
	return a.state
}

// Scene возвращает последнюю сцену
func (a *Agent) Scene() detector.Scene {
	return a.scene
}

// OnStructure сообщает, считает ли цикл персонажа висящим на верёвке
func (a *Agent) OnStructure() bool {
	return a.onStructure
}

// Cycles возвращает количество выполненных циклов
func (a *Agent) Cycles() int {
	return a.cycle
}

// Run крутит Step до отмены ctx. Все зажатые клавиши отпускаются при любом выходе, в том числе при панике.
func (a *Agent) Run(ctx context.Context) error {
	defer func() {
		if err := a.input.ReleaseAll(); err != nil {
			a.logger.LogError(err, "Ошибка отпускания клавиш")
		}
	}()

	a.logger.Info("🚀 Запуск автоматического цикла, стратегия спуска: %s", a.cfg.Strategy)

	failures := 0
	for {
		if ctx.Err() != nil {
			a.logger.Info("⏹️ Цикл остановлен после %d итераций", a.cycle)
			return nil
		}

		if _, err := a.Step(ctx); err != nil {
			failures++
			a.logger.LogError(err, fmt.Sprintf("Ошибка в цикле %d (%d подряд)", a.cycle, failures))
			if failures >= maxConsecutiveErrors {
				return fmt.Errorf("цикл остановлен после %d ошибок подряд: %w", failures, err)
			}
		} else {
			failures = 0
		}

		a.sleep(a.cfg.CycleDelay)
	}
}

// Step выполняет один цикл: восприятие, решение, действие. Возвращает состояние, в котором выполнялось действие.
func (a *Agent) Step(ctx context.Context) (State, error) {
	a.cycle++

	scene, err := a.scanner.Scan()
	if err != nil {
		return a.state, err
	}
	a.scene = scene

	onRope, err := a.scanner.OnStructure(scene)
	if err != nil {
		a.logger.Warn("⚠️ Не удалось проверить положение на верёвке: %v", err)
	}
	a.onStructure = onRope.OnRope

	character := geom.FromImage(scene.Character)
	rec := database.CycleRecord{
		RunID:     a.runID,
		Cycle:     a.cycle,
		Enemies:   len(scene.Enemies),
		Ropes:     len(scene.Ropes),
		Platforms: len(scene.Platforms),
		OnRope:    a.onStructure,
	}

	var action string
	switch target, ok := a.selector.Select(scene.Enemies); {
	case a.onStructure:
		a.state = OnStructure
		action, err = a.structureStep(character, scene)
	case ok:
		a.state = Engaging
		rec.TargetX, rec.TargetY = target.Center.Image().X, target.Center.Image().Y
		action, err = a.engage(ctx, character, target, scene)
	case len(scene.Ropes) > 0:
		a.state = Repositioning
		action, err = a.reposition(character, scene)
	default:
		a.state = Exploring
		action, err = a.explore()
	}

	rec.State = a.state.String()
	rec.Action = action
	if err != nil {
		rec.Action = fmt.Sprintf("%s: %v", action, err)
	}
	a.record(rec)

	a.logger.Debug("🔁 Цикл %d: %s -> %s", a.cycle, a.state, action)
	return a.state, err
}

// structureStep: персонаж на верёвке. Враги ниже - спускаемся, иначе лезем выше.
func (a *Agent) structureStep(character geom.Point, scene detector.Scene) (string, error) {
	below := 0
	for _, e := range scene.Enemies {
		if float64(e.Position.Y) > character.Y+a.cfg.DescentMargin {
			below++
		}
	}

	if below == 0 {
		a.logger.Info("🧗 Врагов ниже нет, лезем дальше")
		if err := a.mover.NudgeUp(); err != nil {
			return "climb", err
		}
		a.sleep(a.cfg.DescentDelay)
		return "climb", nil
	}

	a.logger.Info("⬇️ Ниже %d врагов, спускаемся (стратегия %s)", below, a.cfg.Strategy)
	outcome, err := a.verifier.FirstEffective(a.mover.Strategies(a.cfg.Strategy), a.verifier.SettleDelay())
	a.recordVerification(outcome)

	if errors.Is(err, verifier.ErrAllStrategiesFailed) {
		// спуск не подтвердился, на следующем цикле положение определится заново
		a.logger.Warn("⚠️ Спуск не подтвержден ни одной стратегией")
		return "descend_failed", nil
	}
	if err != nil {
		return "descend", err
	}

	a.onStructure = false
	a.sleep(a.cfg.DescentDelay)
	return "descend_" + outcome.Label, nil
}

// engage: цель выбрана, персонаж на земле
func (a *Agent) engage(ctx context.Context, character geom.Point, target cluster.Cluster, scene detector.Scene) (string, error) {
	_, dy := target.Center.Sub(character)

	if math.Abs(dy) > a.cfg.PlatformTolerance {
		if dy < 0 && len(scene.Ropes) > 0 {
			// цель выше, пробуем забраться
			a.logger.Info("🎯 Цель выше на %.0f px, ищем верёвку", -dy)
			mounted, err := a.mountNearestRope(character, scene.Ropes)
			if err != nil {
				return "mount_rope", err
			}
			if mounted {
				a.onStructure = true
				a.sleep(a.cfg.RopeMountDelay)
				return "mount_rope", nil
			}
		} else if dy > 0 {
			a.logger.Info("🎯 Цель ниже на %.0f px, спрыгиваем", dy)
			if err := a.mover.DropToward(character, target.Center); err != nil {
				return "drop", err
			}
			a.sleep(a.cfg.DescentDelay)
			return "drop", nil
		}
	}

	// атакуем только цель на своей платформе, иначе подходим (с прыжком, если цель выше)
	distance := character.Distance(target.Center)
	if distance <= a.cfg.AttackRange && math.Abs(dy) <= a.cfg.PlatformTolerance {
		return a.attack(ctx, character, target)
	}

	a.logger.Info("🚶 Идем к группе из %d врагов в %v, расстояние %.0f", target.Size(), target.Center, distance)
	done, err := a.mover.Approach(character, target.Center)
	if err != nil {
		return "approach", err
	}
	a.sleep(a.cfg.ApproachDelay)
	return "approach " + done, nil
}

// attack атакует группу и ждет, пока платформа очистится
func (a *Agent) attack(ctx context.Context, character geom.Point, target cluster.Cluster) (string, error) {
	direction := movement.Toward(character, target.Center)

	if target.Size() > a.cfg.ClusterAttack {
		cycles := min(target.Size(), a.cfg.MaxAttackCycles)
		a.logger.Info("⚔️ Атакуем группу из %d врагов: %d кругов", target.Size(), cycles)
		if err := a.mover.Sweep(direction, cycles); err != nil {
			return "sweep", err
		}
	} else {
		a.logger.Info("⚔️ Атакуем цель в %v", target.Center)
		if err := a.mover.Attack(direction); err != nil {
			return "attack", err
		}
	}

	return "attack", a.waitPlatformClear(ctx, character)
}

// waitPlatformClear опрашивает сцену, пока на платформе персонажа есть враги, но не дольше ClearWait
func (a *Agent) waitPlatformClear(ctx context.Context, character geom.Point) error {
	polls := 1
	if a.cfg.ClearPoll > 0 {
		polls = int(a.cfg.ClearWait / a.cfg.ClearPoll)
	}

	for i := 0; i < polls; i++ {
		if ctx.Err() != nil {
			return nil
		}

		scene, err := a.scanner.Scan()
		if err != nil {
			return err
		}
		a.scene = scene

		remaining := 0
		for _, e := range scene.Enemies {
			if math.Abs(float64(e.Position.Y)-character.Y) <= a.cfg.PlatformTolerance {
				remaining++
			}
		}
		if remaining == 0 {
			a.logger.Info("✅ Платформа очищена")
			return nil
		}

		a.logger.Debug("⏳ На платформе еще %d врагов", remaining)
		a.sleep(a.cfg.ClearPoll)
	}

	a.logger.Warn("⚠️ Платформа не очистилась за %v", a.cfg.ClearWait)
	return nil
}

// reposition: целей нет, но видны верёвки
func (a *Agent) reposition(character geom.Point, scene detector.Scene) (string, error) {
	mounted, err := a.mountNearestRope(character, scene.Ropes)
	if err != nil {
		return "mount_rope", err
	}
	if mounted {
		a.onStructure = true
		a.sleep(a.cfg.RopeMountDelay)
		return "mount_rope", nil
	}
	// до верёвки не дотянуться, идем искать
	return a.explore()
}

// mountNearestRope лезет на ближайшую верёвку, если она ближе RopeReach
func (a *Agent) mountNearestRope(character geom.Point, ropes []detector.Detection) (bool, error) {
	var nearest geom.Point
	best := math.Inf(1)
	for _, r := range ropes {
		p := geom.FromImage(r.Position)
		if d := character.Distance(p); d < best {
			best, nearest = d, p
		}
	}

	if best >= a.cfg.RopeReach {
		a.logger.Debug("🪢 Ближайшая верёвка в %.0f px, слишком далеко", best)
		return false, nil
	}

	a.logger.Info("🪢 Верёвка в %v, расстояние %.0f", nearest, best)
	if err := a.mover.MountRope(character, nearest); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Agent) explore() (string, error) {
	direction, duration, err := a.mover.Explore()
	return fmt.Sprintf("explore_%s(%v)", direction, duration), err
}

func (a *Agent) record(rec database.CycleRecord) {
	if a.journal == nil {
		return
	}
	rec.CreatedAt = time.Now()
	a.journal.RecordCycle(rec)
}

func (a *Agent) recordVerification(o verifier.Outcome) {
	if a.journal == nil || o.Label == "" {
		return
	}
	a.journal.RecordVerification(database.VerificationRecord{
		RunID:     a.runID,
		Label:     o.Label,
		Ratio:     o.Ratio,
		Verdict:   o.Verdict.String(),
		Effect:    o.Verdict.Effect(),
		CreatedAt: time.Now(),
	})
}
