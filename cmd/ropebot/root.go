package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"ropebot/internal/scripts"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd без подкоманды показывает интерактивное меню
var rootCmd = &cobra.Command{
	Use:   "ropebot",
	Short: "Бот для охоты на платформах с верёвками",
	Long: `ropebot ищет врагов на экране по шаблонам, выбирает самую плотную группу,
подходит к ней, спускается и поднимается по верёвкам и атакует.

Без подкоманды показывает меню режимов. Каждый режим доступен и как подкоманда.
Остановка: Ctrl+C, в Windows также Q и F12.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), scripts.Menu)
	},
}

// Execute собирает подкоманды и запускает корневую команду
func Execute() error {
	for _, mode := range scripts.Modes() {
		rootCmd.AddCommand(modeCommand(mode))
	}
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Файл конфигурации (по умолчанию ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Подробный лог")
}

// modeCommand превращает пункт меню в подкоманду
func modeCommand(mode scripts.Mode) *cobra.Command {
	return &cobra.Command{
		Use:     mode.Command,
		Short:   mode.Title,
		Aliases: []string{mode.Key},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *scripts.Env) error {
				return scripts.Dispatch(ctx, env, mode)
			})
		},
	}
}

// withEnv собирает компоненты, запускает режим и освобождает ресурсы.
// Прерывание пользователем не считается ошибкой.
func withEnv(parent context.Context, run func(context.Context, *scripts.Env) error) error {
	app, err := newApp(parent, cfgFile, debug)
	if err != nil {
		return err
	}
	defer app.Close()

	err = run(app.Context(), app.env)
	if errors.Is(err, context.Canceled) {
		app.env.Logger.Info("👋 Остановлено: %s", app.interrupts.Reason())
		return nil
	}
	if err != nil {
		app.env.Logger.LogError(err, "Режим завершился с ошибкой")
	}
	return err
}
