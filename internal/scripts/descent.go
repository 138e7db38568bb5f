package scripts

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
	"time"

	"ropebot/internal/config"
	"ropebot/internal/movement"
	"ropebot/internal/verifier"
)

// Параметры подробного разбора спуска
const (
	debugHold      = 2 * time.Second
	debugHoldStep  = 100 * time.Millisecond
	debugSettle    = time.Second
	betweenMethods = 2 * time.Second
	shortCountdown = 3
)

var descentTitles = map[string]string{
	movement.DescentDown:      "держать вниз (рекомендуется)",
	movement.DescentLeftJump:  "прыжок влево (может не работать)",
	movement.DescentRightJump: "прыжок вправо (может не работать)",
}

// DescentTest пробует каждый способ спуска и проверяет эффект по изменению кадра
func DescentTest(ctx context.Context, env *Env) error {
	_, err := testDescentMethods(ctx, env)
	return err
}

// testDescentMethods возвращает способы спуска, давшие видимый эффект
func testDescentMethods(ctx context.Context, env *Env) ([]string, error) {
	fmt.Fprintln(env.Out, "Проверка способов спуска. Персонаж должен висеть на верёвке.")
	mover, kb := env.chooseMover()
	defer kb.ReleaseAll()

	fmt.Fprintln(env.Out, "\n⚠️ Прыжки в сторону не работают, если игра не принимает две клавиши сразу.")
	fmt.Fprintln(env.Out, "Результат оценивается по изменению кадра.")
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return nil, err
	}

	var effective []string
	for _, method := range movement.DescentMethods(config.StrategySmart) {
		method := method
		env.rule()
		fmt.Fprintf(env.Out, "Способ: %s, ввод: %s\n", descentTitles[method], kb.Backend())
		env.Prompt("Нажмите Enter, когда персонаж будет на верёвке...")
		if err := env.Countdown(ctx, shortCountdown); err != nil {
			return effective, err
		}

		outcome, err := env.Verifier.Verify(method, func() error { return mover.Descend(method) }, env.Verifier.SettleDelay())
		switch {
		case err != nil:
			fmt.Fprintf(env.Out, "❌ %s: %v\n", method, err)
		case outcome.Verdict.Effect():
			fmt.Fprintf(env.Out, "✅ %s работает (%s, %.3f%%)\n", method, outcome.Verdict, outcome.Ratio*100)
			effective = append(effective, method)
		default:
			fmt.Fprintf(env.Out, "❌ %s без видимого эффекта (%.3f%%)\n", method, outcome.Ratio*100)
			if method != movement.DescentDown {
				fmt.Fprintln(env.Out, "   игра может не принимать стрелку вместе с прыжком")
			}
		}
		env.recordOutcome(outcome)

		if err := env.wait(ctx, betweenMethods); err != nil {
			return effective, err
		}
	}

	env.rule()
	if len(effective) == 0 {
		fmt.Fprintln(env.Out, "❌ Ни один способ не сработал: персонаж не на верёвке или раскладка клавиш другая")
	} else {
		fmt.Fprintf(env.Out, "✅ Работают: %s\n", strings.Join(effective, ", "))
		if slices.Contains(effective, movement.DescentDown) {
			fmt.Fprintln(env.Out, "Рекомендуется держать вниз: самый совместимый способ")
		}
	}
	return effective, nil
}

// RecommendStrategy выбирает стратегию по результатам проверки способов спуска
func RecommendStrategy(effective []string) string {
	if len(effective) > 1 && !slices.Contains(effective, movement.DescentDown) {
		return config.StrategySmart
	}
	return config.StrategySimple
}

// ConfigureStrategy выбирает стратегию спуска и сохраняет ее в файл конфигурации
func ConfigureStrategy(ctx context.Context, env *Env) error {
	fmt.Fprintln(env.Out, "Стратегия спуска:")
	fmt.Fprintln(env.Out, "1. Только держать вниз (рекомендуется)")
	fmt.Fprintln(env.Out, "2. Пробовать по очереди: вниз, влево, вправо")
	fmt.Fprintln(env.Out, "3. Проверить способы и выбрать лучший")

	var strategy string
	switch env.Prompt("Ваш выбор (1/2/3): ") {
	case "1":
		strategy = config.StrategySimple
	case "2":
		strategy = config.StrategySmart
		fmt.Fprintln(env.Out, "⚠️ Некоторые версии игры не принимают две клавиши сразу")
	case "3":
		effective, err := testDescentMethods(ctx, env)
		if err != nil {
			return err
		}
		strategy = RecommendStrategy(effective)
	default:
		fmt.Fprintf(env.Out, "Нет такого пункта, стратегия остается %s\n", env.Config.Agent.Strategy)
		return nil
	}

	if err := config.SaveStrategy(env.ConfigPath, strategy); err != nil {
		return err
	}
	env.Config.Agent.Strategy = strategy
	env.Logger.Info("💾 Стратегия спуска: %s", strategy)
	fmt.Fprintf(env.Out, "✅ Стратегия спуска: %s\n", strategy)
	return nil
}

// DescentDebug держит вниз с подробным выводом и разбирает изменения кадра по областям
func DescentDebug(ctx context.Context, env *Env) error {
	fmt.Fprintln(env.Out, "1. Проверяем положение на верёвке...")
	if scene, err := env.Scanner.Scan(); err == nil {
		if result, err := env.Scanner.OnStructure(scene); err == nil && result.OnRope {
			fmt.Fprintf(env.Out, "  ✅ На верёвке: %s, %.3f\n", result.Method, result.Confidence)
		} else {
			fmt.Fprintln(env.Out, "  ⚠️ Персонаж не найден на верёвке, результат может быть неточным")
		}
	} else {
		env.Logger.LogError(err, "Ошибка захвата кадра")
	}

	fmt.Fprintln(env.Out, "\n2. Способ ввода...")
	_, kb := env.chooseMover()

	fmt.Fprintln(env.Out, "\n3. Подробная проверка")
	env.Prompt("Нажмите Enter, когда персонаж будет на верёвке...")
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "  1. Кадр до действия")
	before, err := env.Capture.Capture()
	if err != nil {
		return err
	}

	down := env.Config.Keys.Down
	fmt.Fprintf(env.Out, "  2. Зажимаем %q (%s)\n", down, kb.Backend())
	if err := kb.KeyDown(down); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "  3. Держим %v...\n", debugHold)
	var holdErr error
	for held := time.Duration(0); held < debugHold; held += debugHoldStep {
		if holdErr = ctx.Err(); holdErr != nil {
			break
		}
		env.Sleep(debugHoldStep)
		fmt.Fprintf(env.Out, "     держим... (%.1fs)\n", (held + debugHoldStep).Seconds())
	}

	fmt.Fprintf(env.Out, "  4. Отпускаем %q\n", down)
	if err := errors.Join(holdErr, kb.KeyUp(down)); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "  5. Ждем завершения движения")
	env.Sleep(debugSettle)

	fmt.Fprintln(env.Out, "  6. Кадр после действия")
	after, err := env.Capture.Capture()
	if err != nil {
		return err
	}

	regions := verifier.RegionRatios(before, after, env.Config.Verifier.NoiseFloor)
	fmt.Fprintln(env.Out, "\nИзменения по областям:")
	fmt.Fprintf(env.Out, "  весь кадр:      %.3f%%\n", regions.Full*100)
	fmt.Fprintf(env.Out, "  центр 200x200:  %.3f%%\n", regions.Center*100)
	fmt.Fprintf(env.Out, "  нижняя половина: %.3f%%\n", regions.Lower*100)
	fmt.Fprintf(env.Out, "  верхняя половина: %.3f%%\n", regions.Upper*100)

	outcome := env.Verifier.Compare("debug", before, after)
	for _, f := range []struct {
		prefix string
		img    image.Image
	}{
		{"debug_before", outcome.Before},
		{"debug_after", outcome.After},
		{"debug_diff", outcome.Diff},
	} {
		if path, err := env.Artifacts.SaveImage(f.prefix, f.img); err == nil {
			fmt.Fprintf(env.Out, "🖼️ %s\n", path)
		}
	}
	if _, err := env.Artifacts.SaveReport("debug_regions", regions); err != nil {
		env.Logger.Warn("⚠️ Не удалось сохранить отчет: %v", err)
	}

	fmt.Fprintln(env.Out, "\nВывод:")
	switch {
	case regions.Full > 0.01:
		fmt.Fprintln(env.Out, "  ✅ Заметное изменение кадра, спуск работает")
	case regions.Full > 0.001:
		fmt.Fprintln(env.Out, "  ⚠️ Небольшое изменение: персонаж сдвинулся немного или фон однородный")
	default:
		fmt.Fprintln(env.Out, "  ❌ Изменений почти нет: персонаж не на верёвке, клавиша не дошла или окно игры не в фокусе")
	}
	return nil
}

func (env *Env) recordOutcome(o verifier.Outcome) {
	if env.Journal == nil || o.Label == "" {
		return
	}
	env.Journal.RecordVerification(databaseRecord(env.RunID, o))
}
