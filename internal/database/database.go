package database

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"

	"ropebot/internal/logger"
)

// Open подключается к MySQL и проверяет соединение
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return db, nil
}

// DatabaseManager пишет журнал работы бота. Вставки выполняются асинхронно, чтобы не тормозить цикл.
type DatabaseManager struct {
	db     *sql.DB
	logger *logger.LoggerManager
	wg     sync.WaitGroup // для ожидания завершения асинхронных операций
}

// NewDatabaseManager создает новый экземпляр DatabaseManager
func NewDatabaseManager(db *sql.DB, loggerManager *logger.LoggerManager) *DatabaseManager {
	return &DatabaseManager{
		db:     db,
		logger: loggerManager,
	}
}

// EnsureSchema создает таблицы журнала, если их нет
func (h *DatabaseManager) EnsureSchema() error {
	for _, stmt := range []string{CreateCyclesTableSQL, CreateVerificationsTableSQL} {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка создания таблицы: %w", err)
		}
	}
	return nil
}

// RecordCycle асинхронно сохраняет запись о цикле
func (h *DatabaseManager) RecordCycle(rec CycleRecord) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_, err := h.db.Exec(insertCycleSQL, rec.RunID, rec.Cycle, rec.State, rec.Enemies, rec.Ropes, rec.Platforms,
			rec.OnRope, rec.TargetX, rec.TargetY, rec.Action, rec.CreatedAt)
		if err != nil {
			h.logger.LogError(err, fmt.Sprintf("Ошибка сохранения цикла %d", rec.Cycle))
		}
	}()
}

// RecordVerification асинхронно сохраняет результат проверки действия
func (h *DatabaseManager) RecordVerification(rec VerificationRecord) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_, err := h.db.Exec(insertVerificationSQL, rec.RunID, rec.Label, rec.Ratio, rec.Verdict, rec.Effect, rec.CreatedAt)
		if err != nil {
			h.logger.LogError(err, fmt.Sprintf("Ошибка сохранения проверки %s", rec.Label))
		}
	}()
}

// WaitForAsyncOperations ожидает завершения всех асинхронных операций сохранения
func (h *DatabaseManager) WaitForAsyncOperations() {
	h.logger.Info("⏳ Ожидаем завершения асинхронных операций сохранения...")
	h.wg.Wait()
	h.logger.Info("✅ Все асинхронные операции сохранения завершены")
}
