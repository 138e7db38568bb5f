package templates

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ropebot/internal/logger"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want []Category
	}{
		{"monster_01.png", []Category{Enemy}},
		{"Wolf_Boss.png", []Category{Enemy}},
		{"野狼.png", []Category{Enemy}},
		{"rope_long.png", []Category{Rope}},
		{"ladder.png", []Category{Rope}},
		{"ground_left.png", []Category{Platform}},
		{"平台.png", []Category{Platform}},
		{"role_on_rope.png", []Category{OnRope}},
		{"wolf_on_platform.png", []Category{Enemy, Platform}},
		// совпадение по подстроке: "background" содержит "ground"
		{"background.png", []Category{Platform}},
		{"sky.png", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"monster.png", 5},
		{"boss_wolf.png", 10},
		{"elite_monster.png", 8},
		{"rare_wolf.png", 6},
		{"rare_elite_boss.png", 10},
		{"稀有怪.png", 6},
		{"精英怪.png", 8},
		{"大王.png", 10},
		{"BOSS_uppercase.png", 10},
		{"plain_platform.png", 5},
	}
	for _, tt := range tests {
		if got := Priority(tt.name); got != tt.want {
			t.Errorf("Priority(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "monster_b.png"), 8, 6)
	writePNG(t, filepath.Join(dir, "boss_monster_a.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "rope.png"), 4, 20)
	writePNG(t, filepath.Join(dir, "ground.png"), 30, 5)
	writePNG(t, filepath.Join(dir, "role_on_rope.png"), 6, 12)
	writePNG(t, filepath.Join(dir, "ignored.png"), 5, 5)
	if err := os.WriteFile(filepath.Join(dir, "broken_monster.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir, logger.Discard())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Enemies) != 2 {
		t.Fatalf("enemies = %d, want 2 (broken file skipped)", len(lib.Enemies))
	}
	if lib.Enemies[0].Name != "boss_monster_a" || lib.Enemies[0].Priority != 10 {
		t.Errorf("first enemy = %s/%d, want boss_monster_a/10", lib.Enemies[0].Name, lib.Enemies[0].Priority)
	}
	if lib.Enemies[1].Priority != DefaultPriority {
		t.Errorf("second enemy priority = %d, want default", lib.Enemies[1].Priority)
	}
	if w, h := lib.Ropes[0].Size(); w != 4 || h != 20 {
		t.Errorf("rope size = %dx%d", w, h)
	}
	if lib.OnRope == nil || lib.OnRope.Category != OnRope {
		t.Fatal("on-rope template not loaded")
	}

	summary := lib.Summary()
	want := map[Category]int{Enemy: 2, Rope: 1, Platform: 1, OnRope: 1}
	if !reflect.DeepEqual(summary, want) {
		t.Errorf("summary = %v, want %v", summary, want)
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"), logger.Discard())
	if !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("err = %v, want ErrNoTemplates", err)
	}
}

func TestByCategory(t *testing.T) {
	lib := &Library{}
	if got := lib.ByCategory(OnRope); got != nil {
		t.Errorf("on-rope without template = %v", got)
	}
	if !lib.Empty() {
		t.Error("empty library reports templates")
	}
}
