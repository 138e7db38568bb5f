//go:build !windows

package interrupt

// monitorHotkeys: глобальный хук клавиатуры есть только в Windows, остается Ctrl+C
func (im *InterruptManager) monitorHotkeys() {
	im.loggerManager.Debug("⌨️ Горячие клавиши недоступны на этой платформе, используйте Ctrl+C")
}
