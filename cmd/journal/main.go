package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ropebot/internal/config"
	"ropebot/internal/database"
	"ropebot/internal/logger"
)

var (
	cfgFile string
	limit   int
)

// journal показывает, что бот записал в MySQL: последние запуски и надежность способов спуска
var rootCmd = &cobra.Command{
	Use:          "journal",
	Short:        "Просмотр журнала ropebot",
	SilenceUsage: true,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Последние запуски",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(j *database.DatabaseManager) error {
			runs, err := j.RecentRuns(limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ЗАПУСК\tЦИКЛОВ\tАТАК\tНАЧАЛО\tДЛИТЕЛЬНОСТЬ")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%v\n", r.RunID, r.Cycles, r.Attacks,
					r.StartedAt.Format("2006-01-02 15:04:05"), r.EndedAt.Sub(r.StartedAt).Round(time.Second))
			}
			return w.Flush()
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Статистика проверок действий",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(j *database.DatabaseManager) error {
			stats, err := j.VerificationStats()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ДЕЙСТВИЕ\tПРОВЕРОК\tС ЭФФЕКТОМ\tДОЛЯ\tСРЕДНЕЕ ИЗМЕНЕНИЕ")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.0f%%\t%.3f%%\n", s.Label, s.Total, s.Effective, s.Rate()*100, s.AvgRatio*100)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Файл конфигурации (по умолчанию ./config.yaml)")
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Сколько запусков показать")
	rootCmd.AddCommand(runsCmd, statsCmd)
}

func withJournal(fn func(*database.DatabaseManager) error) error {
	c, err := config.InitConfig(cfgFile)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	db, err := database.Open(c.Journal.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(database.NewDatabaseManager(db, logger.NewWriterLogger(os.Stderr)))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
