//go:build windows

package interrupt

import (
	"github.com/moutend/go-hook/pkg/keyboard"
	"github.com/moutend/go-hook/pkg/types"
)

// monitorHotkeys мониторит горячие клавиши Q и F12 через глобальный хук клавиатуры
func (im *InterruptManager) monitorHotkeys() {
	eventChan := make(chan types.KeyboardEvent, 100)
	if err := keyboard.Install(nil, eventChan); err != nil {
		im.loggerManager.LogError(err, "Не удалось установить хук клавиатуры")
		return
	}
	defer keyboard.Uninstall()

	for {
		select {
		case <-im.ctx.Done():
			return
		case event := <-eventChan:
			if event.Message != types.WM_KEYDOWN {
				continue
			}
			switch event.VKCode {
			case types.VK_Q:
				im.Interrupt("горячая клавиша Q")
				return
			case types.VK_F12:
				im.Interrupt("горячая клавиша F12")
				return
			}
		}
	}
}
