package arduino

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// InitializePort открывает последовательный порт платы
func InitializePort(name string, baud int) (*serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening port %s: %w", name, err)
	}
	return port, nil
}

// SendKeyDownToArduino отправляет команду нажатия клавиши
func SendKeyDownToArduino(port io.Writer, key string) error {
	return send(port, fmt.Sprintf("key_down:%s\n", key))
}

// SendKeyUpToArduino отправляет команду отпускания клавиши
func SendKeyUpToArduino(port io.Writer, key string) error {
	return send(port, fmt.Sprintf("key_up:%s\n", key))
}

func send(port io.Writer, message string) error {
	if _, err := port.Write([]byte(message)); err != nil {
		return fmt.Errorf("error writing to Arduino: %w", err)
	}
	return nil
}

// WaitForArduinoResponse читает строку ответа и сравнивает с ожидаемой.
// Буферизованный reader сохраняет остаток, если плата прислала несколько ответов сразу.
func WaitForArduinoResponse(port *bufio.Reader, expectedResponse string) (string, error) {
	line, err := port.ReadString('\n')
	if err != nil {
		// tarm/serial по ReadTimeout отдает 0 байт, bufio превращает это в io.ErrNoProgress
		return "", fmt.Errorf("error reading from Arduino: %w", err)
	}

	response := strings.TrimSpace(line)
	if response != expectedResponse {
		return "", fmt.Errorf("unexpected response: '%s'", response)
	}
	return response, nil
}
