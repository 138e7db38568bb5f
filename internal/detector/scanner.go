package detector

import (
	"fmt"
	"image"

	imageInternal "ropebot/internal/image"
	"ropebot/internal/logger"
	"ropebot/internal/templates"
)

// Scene - результат одного восприятия: кадр, позиция персонажа и очищенные от дублей объекты
type Scene struct {
	Frame     image.Image
	Character image.Point
	Enemies   []Detection
	Ropes     []Detection
	Platforms []Detection
}

// Scanner собирает сцену из одного кадра для цикла принятия решений
type Scanner struct {
	detector *Detector
	library  *templates.Library
	logger   *logger.LoggerManager
}

// NewScanner создает сканер поверх детектора и библиотеки шаблонов
func NewScanner(detector *Detector, library *templates.Library, loggerManager *logger.LoggerManager) *Scanner {
	return &Scanner{detector: detector, library: library, logger: loggerManager}
}

// Scan захватывает кадр и ищет врагов, верёвки и платформы с порогами своих категорий
func (s *Scanner) Scan() (Scene, error) {
	frame, err := s.detector.Capture()
	if err != nil {
		return Scene{}, fmt.Errorf("ошибка захвата кадра: %w", err)
	}

	scene := s.SceneFromFrame(frame)
	s.logger.Debug("👁️ Врагов: %d, верёвок: %d, платформ: %d", len(scene.Enemies), len(scene.Ropes), len(scene.Platforms))

	if s.detector.cfg.SaveFrames {
		all := append(append(append([]Detection{}, scene.Enemies...), scene.Ropes...), scene.Platforms...)
		s.detector.SaveFrames(frame, "detection_scene", all)
	}
	return scene, nil
}

// SceneFromFrame разбирает уже захваченный кадр
func (s *Scanner) SceneFromFrame(frame image.Image) Scene {
	gray := imageInternal.ToGray(frame)
	minDistance := s.detector.cfg.DedupeMinDistance
	detect := func(c templates.Category) []Detection {
		found := s.detector.DetectGray(gray, s.library.ByCategory(c), s.detector.Threshold(c))
		return Dedupe(found, minDistance)
	}

	return Scene{
		Frame:     frame,
		Character: s.detector.Character(),
		Enemies:   detect(templates.Enemy),
		Ropes:     detect(templates.Rope),
		Platforms: detect(templates.Platform),
	}
}

// OnStructure проверяет, висит ли персонаж на верёвке, по кадру сцены
func (s *Scanner) OnStructure(scene Scene) (OnRopeResult, error) {
	if scene.Frame == nil {
		return OnRopeResult{}, fmt.Errorf("в сцене нет кадра")
	}
	return s.detector.DetectOnRope(scene.Frame, scene.Character, s.library.OnRope, scene.Ropes), nil
}
