package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"ropebot/internal/arduino"
	"ropebot/internal/cluster"
	"ropebot/internal/config"
	"ropebot/internal/database"
	"ropebot/internal/detector"
	"ropebot/internal/diagnostics"
	"ropebot/internal/input"
	"ropebot/internal/interrupt"
	"ropebot/internal/logger"
	"ropebot/internal/movement"
	"ropebot/internal/opencv"
	"ropebot/internal/robot"
	"ropebot/internal/screenshot"
	"ropebot/internal/scripts"
	"ropebot/internal/templates"
	"ropebot/internal/verifier"
)

// app владеет всеми ресурсами процесса: логом, портом, базой и мониторингом прерываний
type app struct {
	env        *scripts.Env
	interrupts *interrupt.InterruptManager
	closers    []func()
}

func newApp(parent context.Context, configPath string, debug bool) (a *app, err error) {
	c, cfgErr := config.InitConfig(configPath)
	if cfgErr != nil && !errors.Is(cfgErr, config.ErrConfigNotFound) {
		return nil, cfgErr
	}

	// Инициализация логгера
	loggerManager, err := logger.NewLoggerManager(c.LogFilePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	loggerManager.SetDebug(debug)

	a = &app{closers: []func(){func() { loggerManager.Close() }}}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	loggerManager.Info("🚀 Запуск ropebot")
	if cfgErr != nil {
		loggerManager.Warn("⚠️ Файл конфигурации не найден, используются значения по умолчанию")
	}

	// Захват экрана
	capture, err := screenshot.NewScreenshotManager(c.Capture.Display, c.Capture.Region(), loggerManager)
	if err != nil {
		return nil, err
	}
	if c.Capture.AutoWindow {
		if err := capture.FitToGameWindow(); err != nil {
			loggerManager.Warn("⚠️ Окно игры не найдено, захватываем весь экран: %v", err)
		}
	}
	screenW, screenH := robot.ScreenSize()
	loggerManager.Info("🖥️ Экран %dx%d, область захвата %v", screenW, screenH, capture.Bounds())

	// Ввод: robotgo доступен всегда, arduino только с настроенным портом
	backends := []input.Backend{robot.NewRobotgoBackend()}
	if c.Input.Port != "" {
		port, err := arduino.InitializePort(c.Input.Port, c.Input.BaudRate)
		if err != nil {
			if c.Input.Backend == config.BackendArduino {
				return nil, fmt.Errorf("error opening arduino port: %w", err)
			}
			loggerManager.Warn("⚠️ Порт Arduino недоступен: %v", err)
		} else {
			arduinoManager := arduino.NewArduinoManager(port, loggerManager)
			a.closers = append(a.closers, func() {
				if err := arduinoManager.Close(); err != nil {
					loggerManager.LogError(err, "Error closing port")
				}
			})
			backends = append(backends, arduinoManager)
		}
	} else if c.Input.Backend == config.BackendArduino {
		return nil, errors.New("input.backend = arduino, но input.port не задан")
	}
	primary := backends[0]
	for _, b := range backends {
		if b.Name() == c.Input.Backend {
			primary = b
		}
	}
	keyboard := input.NewKeyboard(primary, loggerManager)

	library, err := templates.Load(c.TemplatesDir, loggerManager)
	if err != nil {
		loggerManager.Warn("⚠️ Шаблоны не загружены: %v", err)
		library = &templates.Library{}
	}

	var matcher detector.Matcher = detector.NCC{}
	if c.Detector.Backend == config.BackendOpenCV {
		if matcher, err = opencv.NewMatcher(); err != nil {
			return nil, fmt.Errorf("detector.backend = opencv: %w", err)
		}
	}

	artifacts := diagnostics.NewWriter(c.OutputDir, loggerManager)
	det := detector.NewDetector(matcher, capture, c.Detector, artifacts, loggerManager)

	a.interrupts = interrupt.NewInterruptManager(parent, loggerManager)
	a.interrupts.StartMonitoring()
	a.closers = append(a.closers, a.interrupts.Stop)

	a.env = &scripts.Env{
		Config:     c,
		ConfigPath: configPath,
		Logger:     loggerManager,
		In:         bufio.NewReader(os.Stdin),
		Out:        os.Stdout,
		Sleep:      time.Sleep,
		Capture:    capture,
		Keyboard:   keyboard,
		Backends:   backends,
		Matcher:    matcher,
		Library:    library,
		Detector:   det,
		Scanner:    detector.NewScanner(det, library, loggerManager),
		Selector:   cluster.NewSelector(c.Cluster.Radius),
		Mover:      movement.NewMovementManager(keyboard, c.Keys, c.Agent, loggerManager),
		Verifier:   verifier.NewVerifier(capture, c.Verifier, artifacts, loggerManager),
		Colors:     opencv.NewColorDetector(c.Color, loggerManager),
		Artifacts:  artifacts,
		RunID:      time.Now().Format("20060102_150405"),
	}

	if c.Journal.Enabled {
		journal, db, err := openJournal(c.Journal.DSN, loggerManager)
		if err != nil {
			loggerManager.Warn("⚠️ Журнал отключен: %v", err)
		} else {
			a.env.Journal = journal
			a.closers = append(a.closers, func() {
				journal.WaitForAsyncOperations()
				db.Close()
			})
		}
	}
	return a, nil
}

// openJournal подключается к MySQL и создает таблицы журнала
func openJournal(dsn string, loggerManager *logger.LoggerManager) (*database.DatabaseManager, *sql.DB, error) {
	db, err := database.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	journal := database.NewDatabaseManager(db, loggerManager)
	if err := journal.EnsureSchema(); err != nil {
		db.Close()
		return nil, nil, err
	}
	loggerManager.Info("✅ Успешное подключение к базе данных")
	return journal, db, nil
}

// Context отменяется по Ctrl+C или горячей клавише
func (a *app) Context() context.Context {
	return a.interrupts.Context()
}

// Close отпускает клавиши и закрывает ресурсы в обратном порядке
func (a *app) Close() {
	if a.env != nil {
		a.env.Keyboard.ReleaseAll()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
