// Package templates загружает эталонные изображения и раскладывает их по категориям
// по ключевым словам в имени файла.
package templates

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	imageInternal "ropebot/internal/image"
	"ropebot/internal/logger"
)

// ErrNoTemplates возвращается, когда каталог шаблонов отсутствует или не читается
var ErrNoTemplates = errors.New("templates directory not available")

// Category - роль шаблона на экране
type Category int

const (
	Enemy Category = iota
	Rope
	Platform
	OnRope
)

func (c Category) String() string {
	switch c {
	case Enemy:
		return "enemy"
	case Rope:
		return "rope"
	case Platform:
		return "platform"
	case OnRope:
		return "on_rope"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// DefaultPriority присваивается шаблонам без ключевых слов приоритета
const DefaultPriority = 5

// OnRopeFile - имя файла шаблона персонажа на верёвке
const OnRopeFile = "role_on_rope.png"

var keywords = map[Category][]string{
	Enemy:    {"monster", "wolf", "野狼", "白狼", "怪"},
	Rope:     {"rope", "繩", "ladder", "梯", "vertical"},
	Platform: {"platform", "ground", "平台", "地面"},
}

var priorityKeywords = []struct {
	words    []string
	priority int
}{
	{[]string{"boss", "王"}, 10},
	{[]string{"elite", "精英"}, 8},
	{[]string{"rare", "稀有"}, 6},
}

// Template - эталонное изображение. После загрузки не изменяется.
type Template struct {
	Name     string
	Category Category
	Image    *image.Gray
	Priority int
}

// Size возвращает размер эталона в пикселях
func (t Template) Size() (int, int) {
	return t.Image.Rect.Dx(), t.Image.Rect.Dy()
}

// Library - набор шаблонов по категориям
type Library struct {
	Enemies   []Template
	Ropes     []Template
	Platforms []Template
	OnRope    *Template
}

// ByCategory возвращает шаблоны категории
func (l *Library) ByCategory(c Category) []Template {
	switch c {
	case Enemy:
		return l.Enemies
	case Rope:
		return l.Ropes
	case Platform:
		return l.Platforms
	case OnRope:
		if l.OnRope != nil {
			return []Template{*l.OnRope}
		}
	}
	return nil
}

// Summary возвращает количество шаблонов в каждой категории
func (l *Library) Summary() map[Category]int {
	summary := map[Category]int{
		Enemy:    len(l.Enemies),
		Rope:     len(l.Ropes),
		Platform: len(l.Platforms),
		OnRope:   0,
	}
	if l.OnRope != nil {
		summary[OnRope] = 1
	}
	return summary
}

// Empty сообщает, что ни одного шаблона не загружено
func (l *Library) Empty() bool {
	return len(l.Enemies) == 0 && len(l.Ropes) == 0 && len(l.Platforms) == 0 && l.OnRope == nil
}

// Classify возвращает категории, к которым относится файл. Файл может попасть в несколько категорий.
// Ключевые слова ищутся как подстроки имени без учета регистра, поэтому background.png - платформа.
func Classify(filename string) []Category {
	base := filepath.Base(filename)
	if strings.EqualFold(base, OnRopeFile) {
		return []Category{OnRope}
	}

	lower := strings.ToLower(base)
	var categories []Category
	for _, c := range []Category{Enemy, Rope, Platform} {
		for _, word := range keywords[c] {
			if strings.Contains(lower, word) {
				categories = append(categories, c)
				break
			}
		}
	}
	return categories
}

// Priority определяет приоритет по ключевым словам в имени файла; побеждает самое сильное слово
func Priority(filename string) int {
	lower := strings.ToLower(filepath.Base(filename))
	best := DefaultPriority
	for _, p := range priorityKeywords {
		for _, word := range p.words {
			if strings.Contains(lower, word) && p.priority > best {
				best = p.priority
			}
		}
	}
	return best
}

// Load читает все изображения каталога и раскладывает их по категориям.
// Нечитаемые файлы пропускаются с записью в лог.
func Load(dir string, log *logger.LoggerManager) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoTemplates, dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			if len(Classify(entry.Name())) > 0 {
				names = append(names, entry.Name())
			}
		}
	}
	sort.Strings(names)

	// Декодируем параллельно, результат раскладываем по индексу, чтобы порядок не зависел от планировщика
	images := make([]*image.Gray, len(names))
	var g errgroup.Group
	g.SetLimit(4)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			gray, err := loadGray(filepath.Join(dir, name))
			if err != nil {
				log.Warn("⚠️ Пропускаем шаблон %s: %v", name, err)
				return nil
			}
			images[i] = gray
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка загрузки шаблонов: %w", err)
	}

	lib := &Library{}
	for i, name := range names {
		if images[i] == nil {
			continue
		}
		for _, c := range Classify(name) {
			t := Template{
				Name:     strings.TrimSuffix(name, filepath.Ext(name)),
				Category: c,
				Image:    images[i],
				Priority: DefaultPriority,
			}
			switch c {
			case Enemy:
				t.Priority = Priority(name)
				lib.Enemies = append(lib.Enemies, t)
			case Rope:
				lib.Ropes = append(lib.Ropes, t)
			case Platform:
				lib.Platforms = append(lib.Platforms, t)
			case OnRope:
				lib.OnRope = &t
			}
		}
	}

	log.Info("📚 Загружено шаблонов: врагов %d, верёвок %d, платформ %d, на верёвке %t",
		len(lib.Enemies), len(lib.Ropes), len(lib.Platforms), lib.OnRope != nil)
	return lib, nil
}

func loadGray(path string) (*image.Gray, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования: %w", err)
	}
	gray := imageInternal.ToGray(img)
	if gray.Rect.Empty() {
		return nil, errors.New("пустое изображение")
	}
	return gray, nil
}
