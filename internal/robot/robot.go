// Package robot отправляет нажатия через robotgo
package robot

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotgoBackend нажимает клавиши через системный API
type RobotgoBackend struct{}

// NewRobotgoBackend создает бэкенд robotgo
func NewRobotgoBackend() *RobotgoBackend {
	return &RobotgoBackend{}
}

// Name возвращает имя бэкенда
func (RobotgoBackend) Name() string {
	return "robotgo"
}

// KeyDown нажимает клавишу
func (RobotgoBackend) KeyDown(key string) error {
	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return fmt.Errorf("robotgo key down %s: %w", key, err)
	}
	return nil
}

// KeyUp отпускает клавишу
func (RobotgoBackend) KeyUp(key string) error {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		return fmt.Errorf("robotgo key up %s: %w", key, err)
	}
	return nil
}

// ScreenSize возвращает размер основного экрана
func ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}
