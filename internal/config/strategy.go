package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// SaveStrategy сохраняет выбранную стратегию спуска в yaml файл конфигурации.
// Остальные ключи файла сохраняются как есть; если файла нет, он создаётся.
func SaveStrategy(path, strategy string) error {
	if strategy != StrategySimple && strategy != StrategySmart {
		return fmt.Errorf("неизвестная стратегия спуска: %q", strategy)
	}
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	v.Set("agent.strategy", strategy)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
