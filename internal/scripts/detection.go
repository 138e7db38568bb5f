package scripts

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"ropebot/internal/detector"
	imageInternal "ropebot/internal/image"
	"ropebot/internal/imageutils"
	"ropebot/internal/opencv"
	"ropebot/internal/templates"
)

// Пределы для подсказок диагностики
const (
	tooManyEnemies  = 50
	lowConfidence   = 0.6
	diagnoseTopSize = 10
	thresholdTop    = 5
)

// DetectTest ищет все категории на одном кадре с порогами из конфигурации и показывает выбранную цель
func DetectTest(ctx context.Context, env *Env) error {
	env.printHost()
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	scene, err := env.Scanner.Scan()
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "\nИтого: врагов %d, верёвок %d, платформ %d\n", len(scene.Enemies), len(scene.Ropes), len(scene.Platforms))
	printDetections(env, "Враги", scene.Enemies)
	printDetections(env, "Верёвки", scene.Ropes)

	if target, ok := env.Selector.Select(scene.Enemies); ok {
		fmt.Fprintf(env.Out, "\n🎯 Цель: группа из %d врагов в %v, плотность %d\n", target.Size(), target.Center, target.Density)
	}

	if path, err := env.Artifacts.SaveImage("detection_all", detector.Annotate(scene.Frame, allOf(scene))); err == nil {
		fmt.Fprintf(env.Out, "🖼️ Разметка: %s\n", path)
	}
	return nil
}

// diagnoseReport сохраняется в yaml рядом с размеченным кадром
type diagnoseReport struct {
	Threshold float64         `yaml:"threshold"`
	Templates map[string]int  `yaml:"templates"`
	Found     map[string]int  `yaml:"found"`
	Top       []diagnoseEntry `yaml:"top"`
	Advice    []string        `yaml:"advice,omitempty"`
}

type diagnoseEntry struct {
	Name       string  `yaml:"name"`
	Category   string  `yaml:"category"`
	X          int     `yaml:"x"`
	Y          int     `yaml:"y"`
	Confidence float64 `yaml:"confidence"`
	Scale      float64 `yaml:"scale"`
}

// Diagnose показывает загруженные шаблоны, ищет выбранные категории с введенным порогом
// и сохраняет разметку и yaml отчет
func Diagnose(ctx context.Context, env *Env) error {
	fmt.Fprintln(env.Out, "1. Загруженные шаблоны:")
	for _, c := range []templates.Category{templates.Enemy, templates.Rope, templates.Platform} {
		list := env.Library.ByCategory(c)
		fmt.Fprintf(env.Out, "   %s: %d\n", c, len(list))
		for _, t := range list {
			w, h := t.Size()
			fmt.Fprintf(env.Out, "     - %s (%dx%d, приоритет %d)\n", t.Name, w, h, t.Priority)
		}
	}

	fmt.Fprintln(env.Out, "\n2. Что ищем:")
	fmt.Fprintln(env.Out, "1. Враги\n2. Верёвки\n3. Платформы\n4. Всё")
	categories := map[string][]templates.Category{
		"1": {templates.Enemy},
		"2": {templates.Rope},
		"3": {templates.Platform},
		"4": {templates.Enemy, templates.Rope, templates.Platform},
	}
	selected, ok := categories[env.Prompt("Ваш выбор (1-4): ")]
	if !ok {
		fmt.Fprintln(env.Out, "Нет такого пункта, ищем всё")
		selected = categories["4"]
	}

	threshold, valid := ParseThreshold(env.Prompt("\n3. Порог (0.1-1.0, обычно 0.5-0.8): "))
	if !valid {
		fmt.Fprintf(env.Out, "Используем порог по умолчанию: %.1f\n", threshold)
	}

	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	frame, err := env.Capture.Capture()
	if err != nil {
		return err
	}
	gray := imageInternal.ToGray(frame)

	report := diagnoseReport{
		Threshold: threshold,
		Templates: map[string]int{},
		Found:     map[string]int{},
	}
	for c, n := range env.Library.Summary() {
		report.Templates[c.String()] = n
	}

	var all []detector.Detection
	for _, c := range selected {
		found := detector.Dedupe(env.Detector.DetectGray(gray, env.Library.ByCategory(c), threshold), env.Config.Detector.DedupeMinDistance)
		report.Found[c.String()] = len(found)
		fmt.Fprintf(env.Out, "\n4. %s: найдено %d\n", c, len(found))
		for i, d := range found {
			fmt.Fprintf(env.Out, "  %d. %s - уверенность %.3f - позиция %v\n", i+1, d.Name, d.Confidence, d.Position)
		}
		all = append(all, found...)

		if c == templates.Enemy {
			switch {
			case len(found) == 0:
				report.Advice = append(report.Advice,
					"враги не найдены: шаблоны не похожи на врагов, порог слишком высокий, враги закрыты или их нет на экране")
			case len(found) > tooManyEnemies:
				report.Advice = append(report.Advice,
					"слишком много врагов: порог слишком низкий или шаблон слишком общий")
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Confidence > all[j].Confidence })
	for _, d := range all[:min(len(all), diagnoseTopSize)] {
		report.Top = append(report.Top, diagnoseEntry{
			Name:       d.Name,
			Category:   d.Category.String(),
			X:          d.Position.X,
			Y:          d.Position.Y,
			Confidence: d.Confidence,
			Scale:      d.Scale,
		})
	}
	if len(selected) > 1 {
		fmt.Fprintf(env.Out, "\nЛучшие %d совпадений:\n", len(report.Top))
		for i, e := range report.Top {
			fmt.Fprintf(env.Out, "  %d. %s (%s) - %.3f\n", i+1, e.Name, e.Category, e.Confidence)
		}
	}

	fmt.Fprintln(env.Out, "\n5. Подсказки:")
	if len(report.Advice) == 0 {
		fmt.Fprintln(env.Out, "  ✅ замечаний нет")
	}
	for _, a := range report.Advice {
		fmt.Fprintf(env.Out, "  ⚠️ %s\n", a)
	}

	if path, err := env.Artifacts.SaveImage("diagnose", detector.Annotate(frame, all)); err == nil {
		fmt.Fprintf(env.Out, "🖼️ Разметка: %s\n", path)
	}
	if path, err := env.Artifacts.SaveReport("diagnose", report); err == nil {
		fmt.Fprintf(env.Out, "📄 Отчет: %s\n", path)
	}
	return nil
}

// ColorTest ищет объекты по диапазонам HSV и сохраняет разметку вместе с масками
func ColorTest(ctx context.Context, env *Env) error {
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	frame, err := env.Capture.Capture()
	if err != nil {
		return err
	}

	result, err := env.Colors.Detect(frame)
	if errors.Is(err, opencv.ErrNotCompiled) {
		fmt.Fprintln(env.Out, "❌ Поиск по цвету требует OpenCV: соберите ropebot с -tags opencv")
		return nil
	}
	if err != nil {
		return err
	}

	for _, r := range env.Config.Color.Ranges {
		fmt.Fprintf(env.Out, "🎨 %s: %d\n", r.Name, result.Counts[r.Name])
	}
	for i, b := range result.Blobs[:min(len(result.Blobs), diagnoseTopSize)] {
		fmt.Fprintf(env.Out, "  %d. %s в %v, площадь %.0f\n", i+1, b.Range, b.Center, b.Area)
	}

	if path, err := env.Artifacts.SaveImage("color_detection", result.Annotated); err == nil {
		fmt.Fprintf(env.Out, "🖼️ Разметка: %s\n", path)
	}

	masks := make([]image.Image, 0, len(result.Masks))
	for _, r := range env.Config.Color.Ranges {
		if m, ok := result.Masks[r.Name]; ok {
			masks = append(masks, m)
		}
	}
	if len(masks) > 0 {
		if path, err := env.Artifacts.SaveImage("color_masks", imageutils.CombineImages(masks, 4)); err == nil {
			fmt.Fprintf(env.Out, "🖼️ Маски: %s\n", path)
		}
	}
	return nil
}

// RopeTest проверяет положение персонажа на верёвке и показывает верёвки и врагов на своей платформе
func RopeTest(ctx context.Context, env *Env) error {
	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	scene, err := env.Scanner.Scan()
	if err != nil {
		return err
	}

	result, err := env.Scanner.OnStructure(scene)
	if err != nil {
		return err
	}
	env.rule()
	if result.OnRope {
		fmt.Fprintf(env.Out, "✅ Персонаж на верёвке: %s, уверенность %.3f, позиция %v\n", result.Method, result.Confidence, result.Position)
	} else {
		fmt.Fprintln(env.Out, "❌ Персонаж не на верёвке")
	}
	for _, c := range result.Candidates {
		fmt.Fprintf(env.Out, "   %s: %.3f в %v\n", c.Method, c.Confidence, c.Position)
	}

	env.rule()
	printDetections(env, "Верёвки", scene.Ropes)

	env.rule()
	character := scene.Character
	fmt.Fprintf(env.Out, "Врагов: %d\n", len(scene.Enemies))
	for _, e := range scene.Enemies {
		status := "другая платформа"
		if math.Abs(float64(e.Position.Y-character.Y)) <= env.Config.Agent.PlatformTolerance {
			status = "та же платформа"
		}
		fmt.Fprintf(env.Out, "  %s - %s - позиция %v\n", e.Name, status, e.Position)
	}
	return nil
}

// ThresholdTest ищет шаблон персонажа на верёвке с введенным порогом на исходном и контрастном кадре,
// добавляет кандидатов по геометрии верёвок и сохраняет разметку
func ThresholdTest(ctx context.Context, env *Env) error {
	if env.Library.OnRope == nil {
		fmt.Fprintf(env.Out, "❌ Нет шаблона %s\n", templates.OnRopeFile)
		return nil
	}

	threshold, valid := ParseThreshold(env.Prompt("Порог (0.1-1.0, начните с 0.5): "))
	if !valid {
		fmt.Fprintf(env.Out, "Некорректный порог, используем %.1f\n", threshold)
	}

	if err := env.Countdown(ctx, env.Config.Agent.Countdown); err != nil {
		return err
	}

	frame, err := env.Capture.Capture()
	if err != nil {
		return err
	}

	// отдельный детектор с масштабами для шаблона на верёвке
	cfg := env.Config.Detector
	cfg.Scales = cfg.OnRopeScales
	onRope := detector.NewDetector(env.Matcher, env.Capture, cfg, nil, env.Logger)

	gray := imageInternal.ToGray(frame)
	variants := []struct {
		name string
		img  *image.Gray
	}{
		{detector.MethodTemplate, gray},
		{detector.MethodTemplateEnhanced, imageInternal.Enhance(gray, cfg.EnhanceAlpha, cfg.EnhanceBeta)},
	}

	type match struct {
		method     string
		position   image.Point
		confidence float64
	}
	var matches []match
	var marks []detector.Detection

	tmpl := []templates.Template{*env.Library.OnRope}
	for _, v := range variants {
		found := onRope.DetectGray(v.img, tmpl, threshold)
		fmt.Fprintf(env.Out, "\n%s: %d совпадений\n", v.name, len(found))
		if len(found) == 0 {
			continue
		}
		best := found[0]
		for _, d := range found {
			matches = append(matches, match{v.name, d.Position, d.Confidence})
			if d.Confidence > best.Confidence {
				best = d
			}
		}
		fmt.Fprintf(env.Out, "  ✅ лучшее: %.3f, масштаб %.1f\n", best.Confidence, best.Scale)
		marks = append(marks, best)
	}

	// кандидаты по геометрии верёвок
	ropes := detector.Dedupe(env.Detector.DetectGray(gray, env.Library.Ropes, env.Detector.Threshold(templates.Rope)), cfg.DedupeMinDistance)
	character := env.Detector.Character()
	fmt.Fprintf(env.Out, "\nВерёвок: %d\n", len(ropes))
	for i, r := range ropes {
		dx := math.Abs(float64(character.X - r.Position.X))
		fmt.Fprintf(env.Out, "  Верёвка %d: %v, по горизонтали %.0f px\n", i+1, r.Position, dx)
		if dx < float64(r.Box.Dx())/2+float64(cfg.RopeFallbackSlack) {
			fmt.Fprintf(env.Out, "  ✅ персонаж, вероятно, на верёвке %d\n", i+1)
			matches = append(matches, match{detector.MethodRopeGeometry, image.Pt(r.Position.X, character.Y), cfg.RopeFallbackScore})
		}
	}
	marks = append(marks, ropes...)

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].confidence > matches[j].confidence })

	env.rule()
	fmt.Fprintf(env.Out, "Всего совпадений: %d (порог %.2f)\n", len(matches), threshold)
	for i, m := range matches[:min(len(matches), thresholdTop)] {
		fmt.Fprintf(env.Out, "  %d. %s в %v: %.3f\n", i+1, m.method, m.position, m.confidence)
	}

	if len(matches) == 0 {
		fmt.Fprintln(env.Out, "❌ Ничего не найдено: персонаж не на верёвке, шаблон устарел или порог слишком высокий. Попробуйте 0.5-0.6")
	} else {
		best := matches[0]
		fmt.Fprintf(env.Out, "✅ Лучший способ: %s, %.3f\n", best.method, best.confidence)
		if best.confidence < lowConfidence {
			fmt.Fprintln(env.Out, "⚠️ Низкая уверенность: обновите шаблон или снизьте порог до 0.5-0.6")
		}
		if best.method == detector.MethodRopeGeometry {
			fmt.Fprintln(env.Out, "💡 Геометрия верёвок работает лучше шаблона")
		}
	}

	annotated := detector.Annotate(frame, marks)
	imageutils.DrawCross(annotated, character, 20, imageutils.Cyan)
	imageutils.DrawLabel(annotated, character.X+25, character.Y, "player", imageutils.Cyan)
	if path, err := env.Artifacts.SaveImage("rope_detection_debug", annotated); err == nil {
		fmt.Fprintf(env.Out, "🖼️ Разметка: %s\n", path)
	}
	return nil
}

func printDetections(env *Env, title string, ds []detector.Detection) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(env.Out, "%s:\n", title)
	for i, d := range ds {
		fmt.Fprintf(env.Out, "  %d. %s - уверенность %.3f - позиция %v - приоритет %d\n", i+1, d.Name, d.Confidence, d.Position, d.Priority)
	}
}

func allOf(scene detector.Scene) []detector.Detection {
	all := make([]detector.Detection, 0, len(scene.Enemies)+len(scene.Ropes)+len(scene.Platforms))
	all = append(all, scene.Enemies...)
	all = append(all, scene.Ropes...)
	return append(all, scene.Platforms...)
}
