// Package arduino передает нажатия клавиш через плату Arduino, подключенную как HID-клавиатура.
// Плата принимает команды "key_down:<key>" и "key_up:<key>" и отвечает "received".
package arduino

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"ropebot/internal/logger"
)

const ackResponse = "received"

// ArduinoManager - бэкенд ввода поверх последовательного порта
type ArduinoManager struct {
	mu     sync.Mutex
	port   io.ReadWriter
	reader *bufio.Reader
	logger *logger.LoggerManager
}

// NewArduinoManager создает бэкенд над открытым портом
func NewArduinoManager(port io.ReadWriter, loggerManager *logger.LoggerManager) *ArduinoManager {
	return &ArduinoManager{port: port, reader: bufio.NewReader(port), logger: loggerManager}
}

// Name возвращает имя бэкенда
func (m *ArduinoManager) Name() string {
	return "arduino"
}

// KeyDown нажимает клавишу и ждет подтверждения
func (m *ArduinoManager) KeyDown(key string) error {
	return m.processAndWait(SendKeyDownToArduino, key)
}

// KeyUp отпускает клавишу и ждет подтверждения
func (m *ArduinoManager) KeyUp(key string) error {
	return m.processAndWait(SendKeyUpToArduino, key)
}

// processAndWait отправляет команду и ждет ответа платы. Команды не перемешиваются.
func (m *ArduinoManager) processAndWait(send func(io.Writer, string) error, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := send(m.port, key); err != nil {
		return err
	}
	if _, err := WaitForArduinoResponse(m.reader, ackResponse); err != nil {
		m.logger.Warn("⚠️ Arduino не подтвердил команду для %s: %v", key, err)
		return fmt.Errorf("error waiting for Arduino response: %w", err)
	}
	return nil
}

// Close закрывает порт, если он это поддерживает
func (m *ArduinoManager) Close() error {
	if c, ok := m.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
