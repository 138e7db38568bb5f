package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"ropebot/internal/config"
	"ropebot/internal/database"
	"ropebot/internal/logger"
)

var (
	configPath string
	reset      bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "db_init",
		Short: "Создает базу и таблицы журнала по journal.dsn",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			initDatabase()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Файл конфигурации (по умолчанию ./config.yaml)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Удалить базу перед созданием")
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initDatabase() {
	c, err := config.InitConfig(configPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	dsn, err := mysql.ParseDSN(c.Journal.DSN)
	if err != nil {
		log.Fatalf("Некорректный journal.dsn: %v", err)
	}
	name := dsn.DBName
	if name == "" {
		log.Fatal("В journal.dsn не указана база данных")
	}

	// Подключаемся к MySQL без указания базы
	dsn.DBName = ""
	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		log.Fatalf("Ошибка подключения к MySQL: %v", err)
	}
	defer db.Close()

	if reset {
		if _, err := db.Exec("DROP DATABASE IF EXISTS `" + name + "`"); err != nil {
			log.Fatalf("Ошибка удаления базы: %v", err)
		}
		fmt.Printf("База данных %s удалена (если была)\n", name)
	}

	// Создаём базу
	if _, err := db.Exec("CREATE DATABASE IF NOT EXISTS `" + name + "` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"); err != nil {
		log.Fatalf("Ошибка создания базы: %v", err)
	}
	fmt.Printf("База данных %s готова\n", name)

	// Подключаемся к новой базе и создаём таблицы журнала
	db2, err := database.Open(c.Journal.DSN)
	if err != nil {
		log.Fatalf("Ошибка подключения к новой базе: %v", err)
	}
	defer db2.Close()

	if err := database.NewDatabaseManager(db2, logger.Discard()).EnsureSchema(); err != nil {
		log.Fatalf("Ошибка создания таблиц: %v", err)
	}
	fmt.Println("Таблицы agent_cycles и action_verifications созданы")
	fmt.Println("Инициализация базы завершена!")
}
