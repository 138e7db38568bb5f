// Package scripts - режимы интерактивного меню: самопроверки ввода и детектора, диагностика, настройка
// стратегии и автоматический цикл. Каждый режим - тонкая обертка над готовыми компонентами.
package scripts

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"ropebot/internal/cluster"
	"ropebot/internal/config"
	"ropebot/internal/database"
	"ropebot/internal/detector"
	"ropebot/internal/diagnostics"
	"ropebot/internal/input"
	"ropebot/internal/logger"
	"ropebot/internal/movement"
	"ropebot/internal/opencv"
	"ropebot/internal/screenshot"
	"ropebot/internal/templates"
	"ropebot/internal/verifier"
)

// ErrUnknownMode возвращается, если выбранного пункта нет в меню
var ErrUnknownMode = errors.New("unknown mode")

// Env - все собранные компоненты, которыми пользуются режимы
type Env struct {
	Config     config.Config
	ConfigPath string
	Logger     *logger.LoggerManager
	In         *bufio.Reader
	Out        io.Writer
	Sleep      func(time.Duration)

	Capture   screenshot.Provider
	Keyboard  *input.Keyboard
	Backends  []input.Backend
	Matcher   detector.Matcher
	Library   *templates.Library
	Detector  *detector.Detector
	Scanner   *detector.Scanner
	Selector  *cluster.Selector
	Mover     *movement.MovementManager
	Verifier  *verifier.Verifier
	Colors    *opencv.ColorDetector
	Artifacts *diagnostics.Writer
	Journal   *database.DatabaseManager
	RunID     string
}

// Mode - пункт меню
type Mode struct {
	Key     string
	Command string
	Title   string
	Drives  bool // режим нажимает клавиши в игре
	Run     func(ctx context.Context, env *Env) error
}

// Modes возвращает пункты меню в порядке отображения
func Modes() []Mode {
	return []Mode{
		{Key: "1", Command: "keytest", Title: "Проверка клавиш", Drives: true, Run: KeyTest},
		{Key: "2", Command: "keycompare", Title: "Сравнение способов ввода", Drives: true, Run: KeyCompare},
		{Key: "3", Command: "detect", Title: "Проверка детектора", Run: DetectTest},
		{Key: "4", Command: "diagnose", Title: "Диагностика детектора (подробный разбор)", Run: Diagnose},
		{Key: "5", Command: "color", Title: "Поиск по цвету (экспериментально)", Run: ColorTest},
		{Key: "6", Command: "rope", Title: "Проверка положения на верёвке", Run: RopeTest},
		{Key: "7", Command: "descent", Title: "Проверка способов спуска", Drives: true, Run: DescentTest},
		{Key: "8", Command: "threshold", Title: "Подбор порога для положения на верёвке", Run: ThresholdTest},
		{Key: "9", Command: "strategy", Title: "Настройка стратегии спуска", Run: ConfigureStrategy},
		{Key: "10", Command: "descent-debug", Title: "Подробный разбор спуска", Drives: true, Run: DescentDebug},
		{Key: "11", Command: "run", Title: "Автоматическая охота", Drives: true, Run: RunLoop},
	}
}

// ParseChoice находит пункт меню по номеру или имени команды
func ParseChoice(choice string) (Mode, error) {
	choice = strings.TrimSpace(choice)
	for _, m := range Modes() {
		if choice == m.Key || strings.EqualFold(choice, m.Command) {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, choice)
}

// ParseThreshold разбирает введенный порог. Некорректный ввод заменяется на config.DefaultThreshold,
// значение ограничивается диапазоном [0.1, 1.0]. Второе значение false, если ввод был некорректным.
func ParseThreshold(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil || math.IsNaN(v) {
		return config.DefaultThreshold, false
	}
	return max(0.1, min(1.0, v)), true
}

// PrintMenu выводит меню
func PrintMenu(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "Выберите режим:")
	for _, m := range Modes() {
		fmt.Fprintf(w, "%2s. %s (%s)\n", m.Key, m.Title, m.Command)
	}
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "Если не определяется положение на верёвке, начните с режимов 6 и 8")
}

// Menu выводит меню, читает выбор и запускает режим
func Menu(ctx context.Context, env *Env) error {
	PrintMenu(env.Out)
	mode, err := ParseChoice(env.Prompt("Ваш выбор (1-11): "))
	if err != nil {
		fmt.Fprintln(env.Out, "❌ Нет такого режима")
		return err
	}
	return Dispatch(ctx, env, mode)
}

// Dispatch запускает режим с предупреждением для режимов, управляющих персонажем
func Dispatch(ctx context.Context, env *Env, mode Mode) error {
	env.Logger.Info("▶️ Режим %s: %s", mode.Key, mode.Title)
	if mode.Drives {
		fmt.Fprintln(env.Out, "⚠️ Этот режим управляет персонажем, переключитесь на окно игры!")
	}
	return mode.Run(ctx, env)
}

// Prompt выводит вопрос и читает одну строку. Конец ввода дает пустую строку.
func (env *Env) Prompt(question string) string {
	fmt.Fprint(env.Out, question)
	line, err := env.In.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// Countdown отсчитывает seconds секунд перед управлением игрой. Прерывается отменой ctx.
func (env *Env) Countdown(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return ctx.Err()
	}
	fmt.Fprintln(env.Out, "Переключитесь на окно игры, обратный отсчет:")
	for i := seconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "  %d...\n", i)
		env.Sleep(time.Second)
	}
	fmt.Fprintln(env.Out, "Начинаем!")
	return ctx.Err()
}

// printHost выводит сведения о машине для самопроверок
func (env *Env) printHost() {
	info, err := diagnostics.Host()
	if err != nil {
		env.Logger.Warn("⚠️ Сведения о системе неполные: %v", err)
	}
	fmt.Fprintf(env.Out, "🖥️ %s, ввод: %s\n", info, env.Keyboard.Backend())
}

func (env *Env) rule() {
	fmt.Fprintln(env.Out, strings.Repeat("-", 50))
}

// wait ждет d, если ctx еще не отменен
func (env *Env) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env.Sleep(d)
	return nil
}
