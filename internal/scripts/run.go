package scripts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ropebot/internal/agent"
	"ropebot/internal/database"
	"ropebot/internal/verifier"
)

// PrintSettings выводит текущие настройки бота
func PrintSettings(env *Env) {
	cfg := env.Config
	fmt.Fprintln(env.Out, strings.Repeat("=", 50))
	fmt.Fprintln(env.Out, "Текущие настройки:")
	fmt.Fprintf(env.Out, "  ввод:             %s\n", env.Keyboard.Backend())
	fmt.Fprintf(env.Out, "  стратегия спуска: %s\n", cfg.Agent.Strategy)
	fmt.Fprintf(env.Out, "  дальность атаки:  %.0f px\n", cfg.Agent.AttackRange)
	fmt.Fprintf(env.Out, "  радиус группы:    %.0f px\n", cfg.Cluster.Radius)
	fmt.Fprintf(env.Out, "  клавиши атаки:    %s\n", strings.Join(cfg.Keys.Attack, ", "))
	fmt.Fprintf(env.Out, "  шаблоны:          %v\n", env.Library.Summary())
	fmt.Fprintln(env.Out, strings.Repeat("=", 50))
}

// RunLoop запускает автоматический цикл до прерывания
func RunLoop(ctx context.Context, env *Env) error {
	PrintSettings(env)
	if env.Library.Empty() {
		env.Logger.Warn("⚠️ Шаблоны не загружены, бот будет только исследовать карту")
	}

	fmt.Fprintln(env.Out, "Персонаж должен стоять в безопасном месте: на верёвке или на платформе")
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	a := agent.NewAgent(env.Scanner, env.Selector, env.Mover, env.Keyboard, env.Verifier, env.Config.Agent, env.Logger)
	if env.Journal != nil {
		a.SetJournal(env.Journal, env.RunID)
	}

	start := time.Now()
	err := a.Run(ctx)
	env.Logger.Info("🏁 Циклов: %d, время работы: %v", a.Cycles(), time.Since(start).Round(time.Second))
	return err
}

func databaseRecord(runID string, o verifier.Outcome) database.VerificationRecord {
	return database.VerificationRecord{
		RunID:     runID,
		Label:     o.Label,
		Ratio:     o.Ratio,
		Verdict:   o.Verdict.String(),
		Effect:    o.Verdict.Effect(),
		CreatedAt: time.Now(),
	}
}
