package scripts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ropebot/internal/input"
	"ropebot/internal/movement"
)

// KeyTest нажимает по очереди атаку, стрелки и прыжок, чтобы проверить, что игра получает ввод
func KeyTest(ctx context.Context, env *Env) error {
	env.printHost()
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}
	defer env.Keyboard.ReleaseAll()

	keys := env.Config.Keys
	for _, key := range keys.Attack {
		fmt.Fprintf(env.Out, "Атака %q...\n", key)
		if err := env.Keyboard.Tap(key, 100*time.Millisecond); err != nil {
			return err
		}
		if err := env.wait(ctx, time.Second); err != nil {
			return err
		}
	}

	for _, key := range []string{keys.Left, keys.Right, keys.Up, keys.Down} {
		fmt.Fprintf(env.Out, "Стрелка %q...\n", key)
		if err := env.Keyboard.Tap(key, 500*time.Millisecond); err != nil {
			return err
		}
		if err := env.wait(ctx, 500*time.Millisecond); err != nil {
			return err
		}
	}

	fmt.Fprintf(env.Out, "Прыжок %q...\n", keys.Jump)
	if err := env.Keyboard.Tap(keys.Jump, 200*time.Millisecond); err != nil {
		return err
	}
	if err := env.wait(ctx, time.Second); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "✅ Проверка клавиш завершена")
	return nil
}

// KeyCompare прогоняет одну и ту же последовательность через каждый доступный способ ввода
func KeyCompare(ctx context.Context, env *Env) error {
	env.printHost()
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	keys := env.Config.Keys
	steps := []struct {
		title string
		key   string
		hold  time.Duration
	}{
		{"вправо", keys.Right, time.Second},
		{"прыжок", keys.Jump, 0},
		{"вниз", keys.Down, time.Second},
		{"влево", keys.Left, time.Second},
	}

	results := make(map[string]error, len(env.Backends))
	for _, backend := range env.Backends {
		fmt.Fprintf(env.Out, "\n=== %s ===\n", backend.Name())
		kb := env.keyboardFor(backend)

		var errs []error
		for _, step := range steps {
			fmt.Fprintf(env.Out, "Проверка: %s\n", step.title)
			if err := kb.Tap(step.key, step.hold); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", step.title, err))
			}
			if err := env.wait(ctx, time.Second); err != nil {
				kb.ReleaseAll()
				return err
			}
		}
		errs = append(errs, kb.ReleaseAll())
		results[backend.Name()] = errors.Join(errs...)
	}

	env.rule()
	for _, backend := range env.Backends {
		if err := results[backend.Name()]; err != nil {
			fmt.Fprintf(env.Out, "❌ %s: %v\n", backend.Name(), err)
		} else {
			fmt.Fprintf(env.Out, "✅ %s: без ошибок\n", backend.Name())
		}
	}
	return nil
}

// keyboardFor возвращает клавиатуру для бэкенда; основная клавиатура переиспользуется
func (env *Env) keyboardFor(backend input.Backend) *input.Keyboard {
	if backend.Name() == env.Keyboard.Backend() {
		return env.Keyboard
	}
	kb := input.NewKeyboard(backend, env.Logger)
	kb.SetSleep(env.Sleep)
	return kb
}

// chooseMover спрашивает способ ввода, если их несколько, и возвращает движения поверх него
func (env *Env) chooseMover() (*movement.MovementManager, *input.Keyboard) {
	if len(env.Backends) < 2 {
		return env.Mover, env.Keyboard
	}

	fmt.Fprintln(env.Out, "Способ ввода:")
	for i, b := range env.Backends {
		fmt.Fprintf(env.Out, "%d. %s\n", i+1, b.Name())
	}
	choice := env.Prompt(fmt.Sprintf("Ваш выбор (1-%d): ", len(env.Backends)))
	for i, b := range env.Backends {
		if choice == fmt.Sprint(i+1) {
			kb := env.keyboardFor(b)
			if kb == env.Keyboard {
				return env.Mover, kb
			}
			mover := movement.NewMovementManager(kb, env.Config.Keys, env.Config.Agent, env.Logger)
			mover.SetSleep(env.Sleep)
			return mover, kb
		}
	}

	fmt.Fprintf(env.Out, "Используем текущий способ: %s\n", env.Keyboard.Backend())
	return env.Mover, env.Keyboard
}
