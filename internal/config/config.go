package config

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/spf13/viper"
)

// ErrConfigNotFound возвращается, когда файл конфигурации не найден и используются значения по умолчанию
var ErrConfigNotFound = errors.New("config file not found")

// Стратегии спуска с верёвки
const (
	StrategySimple = "simple"
	StrategySmart  = "smart"
)

// Бэкенды
const (
	BackendNative  = "native"
	BackendOpenCV  = "opencv"
	BackendRobotgo = "robotgo"
	BackendArduino = "arduino"
)

// Структура для порогов по категориям шаблонов
type Thresholds struct {
	Enemy    float64 `mapstructure:"enemy"`
	Rope     float64 `mapstructure:"rope"`
	Platform float64 `mapstructure:"platform"`
}

// Настройки детектора
type Detector struct {
	Backend             string     `mapstructure:"backend"`
	Thresholds          Thresholds `mapstructure:"thresholds"`
	Scales              []float64  `mapstructure:"scales"`
	OnRopeScales        []float64  `mapstructure:"on_rope_scales"`
	OnRopeThreshold     float64    `mapstructure:"on_rope_threshold"`
	OnRopeConfident     float64    `mapstructure:"on_rope_confident"`
	RopeFallbackSlack   int        `mapstructure:"rope_fallback_slack"`
	RopeFallbackScore   float64    `mapstructure:"rope_fallback_score"`
	EnhanceAlpha        float64    `mapstructure:"enhance_alpha"`
	EnhanceBeta         float64    `mapstructure:"enhance_beta"`
	SaveFrames          bool       `mapstructure:"save_frames"`
	DedupeMinDistance   float64    `mapstructure:"dedupe_min_distance"`
	DiagnosticThreshold float64    `mapstructure:"diagnostic_threshold"`
}

// Настройки кластеризации
type Cluster struct {
	Radius float64 `mapstructure:"radius"`
}

// Настройки проверки действий
type Verifier struct {
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	NoiseFloor  uint8         `mapstructure:"noise_floor"`
	Strong      float64       `mapstructure:"strong"`
	Moderate    float64       `mapstructure:"moderate"`
	Weak        float64       `mapstructure:"weak"`
}

// Настройки цикла принятия решений
type Agent struct {
	AttackRange       float64       `mapstructure:"attack_range"`
	PlatformTolerance float64       `mapstructure:"platform_tolerance"`
	DescentMargin     float64       `mapstructure:"descent_margin"`
	RopeReach         float64       `mapstructure:"rope_reach"`
	RopeAlign         float64       `mapstructure:"rope_align"`
	MoveThreshold     float64       `mapstructure:"move_threshold"`
	JumpThreshold     float64       `mapstructure:"jump_threshold"`
	DropThreshold     float64       `mapstructure:"drop_threshold"`
	PixelsPerSecond   float64       `mapstructure:"pixels_per_second"`
	MaxMove           time.Duration `mapstructure:"max_move"`
	ClusterAttack     int           `mapstructure:"cluster_attack"`
	MaxAttackCycles   int           `mapstructure:"max_attack_cycles"`
	CycleDelay        time.Duration `mapstructure:"cycle_delay"`
	ExploreMin        time.Duration `mapstructure:"explore_min"`
	ExploreMax        time.Duration `mapstructure:"explore_max"`
	ClearWait         time.Duration `mapstructure:"platform_clear_wait"`
	ClearPoll         time.Duration `mapstructure:"platform_clear_poll"`
	ClimbHold         time.Duration `mapstructure:"climb_hold"`
	DescentHold       time.Duration `mapstructure:"descent_hold"`
	AttackGap         time.Duration `mapstructure:"attack_gap"`
	AttackCooldown    time.Duration `mapstructure:"attack_cooldown"`
	RopeMountDelay    time.Duration `mapstructure:"rope_mount_delay"`
	DescentDelay      time.Duration `mapstructure:"descent_delay"`
	ApproachDelay     time.Duration `mapstructure:"approach_delay"`
	Strategy          string        `mapstructure:"strategy"`
	Countdown         int           `mapstructure:"countdown"`
}

// Раскладка клавиш
type Keys struct {
	Left   string   `mapstructure:"left"`
	Right  string   `mapstructure:"right"`
	Up     string   `mapstructure:"up"`
	Down   string   `mapstructure:"down"`
	Jump   string   `mapstructure:"jump"`
	Attack []string `mapstructure:"attack"`
}

// Настройки ввода
type Input struct {
	Backend  string `mapstructure:"backend"`
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
}

// Настройки журнала в MySQL
type Journal struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Диапазон HSV для цветового детектора
type ColorRange struct {
	Name  string `mapstructure:"name"`
	Lower []int  `mapstructure:"lower"`
	Upper []int  `mapstructure:"upper"`
}

// Настройки цветового детектора
type Color struct {
	MinArea float64      `mapstructure:"min_area"`
	Ranges  []ColorRange `mapstructure:"ranges"`
}

// Настройки захвата экрана
type Capture struct {
	Display    int  `mapstructure:"display"`
	AutoWindow bool `mapstructure:"auto_window"`
	X          int  `mapstructure:"x"`
	Y          int  `mapstructure:"y"`
	Width      int  `mapstructure:"width"`
	Height     int  `mapstructure:"height"`
}

// Region возвращает область захвата; пустая область означает весь дисплей
func (c Capture) Region() image.Rectangle {
	if c.Width <= 0 || c.Height <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Основная структура конфигурации
type Config struct {
	LogFilePath  string   `mapstructure:"log_file_path"`
	OutputDir    string   `mapstructure:"output_dir"`
	TemplatesDir string   `mapstructure:"templates_dir"`
	Capture      Capture  `mapstructure:"capture"`
	Detector     Detector `mapstructure:"detector"`
	Cluster      Cluster  `mapstructure:"cluster"`
	Verifier     Verifier `mapstructure:"verifier"`
	Agent        Agent    `mapstructure:"agent"`
	Keys         Keys     `mapstructure:"keys"`
	Input        Input    `mapstructure:"input"`
	Journal      Journal  `mapstructure:"journal"`
	Color        Color    `mapstructure:"color"`
}

// SetDefaults регистрирует значения по умолчанию
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_file_path", "logs/ropebot.log")
	v.SetDefault("output_dir", "screens")
	v.SetDefault("templates_dir", "templates")

	v.SetDefault("capture.display", 0)
	v.SetDefault("capture.auto_window", false)
	v.SetDefault("capture.x", 0)
	v.SetDefault("capture.y", 0)
	v.SetDefault("capture.width", 0)
	v.SetDefault("capture.height", 0)

	v.SetDefault("detector.backend", BackendNative)
	v.SetDefault("detector.thresholds.enemy", 0.7)
	v.SetDefault("detector.thresholds.rope", 0.8)
	v.SetDefault("detector.thresholds.platform", 0.8)
	v.SetDefault("detector.scales", []float64{0.8, 0.9, 1.0, 1.1, 1.2})
	v.SetDefault("detector.on_rope_scales", []float64{0.7, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3})
	v.SetDefault("detector.on_rope_threshold", 0.55)
	v.SetDefault("detector.on_rope_confident", 0.7)
	v.SetDefault("detector.rope_fallback_slack", 20)
	v.SetDefault("detector.rope_fallback_score", 0.6)
	v.SetDefault("detector.enhance_alpha", 1.2)
	v.SetDefault("detector.enhance_beta", 10.0)
	v.SetDefault("detector.save_frames", false)
	v.SetDefault("detector.dedupe_min_distance", 50.0)
	v.SetDefault("detector.diagnostic_threshold", DefaultThreshold)

	v.SetDefault("cluster.radius", 100.0)

	v.SetDefault("verifier.settle_delay", "1.5s")
	v.SetDefault("verifier.noise_floor", 0)
	v.SetDefault("verifier.strong", 0.02)
	v.SetDefault("verifier.moderate", 0.005)
	v.SetDefault("verifier.weak", 0.001)

	v.SetDefault("agent.attack_range", 150.0)
	v.SetDefault("agent.platform_tolerance", 50.0)
	v.SetDefault("agent.descent_margin", 50.0)
	v.SetDefault("agent.rope_reach", 80.0)
	v.SetDefault("agent.rope_align", 15.0)
	v.SetDefault("agent.move_threshold", 30.0)
	v.SetDefault("agent.jump_threshold", 50.0)
	v.SetDefault("agent.drop_threshold", 100.0)
	v.SetDefault("agent.pixels_per_second", 200.0)
	v.SetDefault("agent.max_move", "1s")
	v.SetDefault("agent.cluster_attack", 2)
	v.SetDefault("agent.max_attack_cycles", 5)
	v.SetDefault("agent.cycle_delay", "200ms")
	v.SetDefault("agent.explore_min", "1s")
	v.SetDefault("agent.explore_max", "2s")
	v.SetDefault("agent.platform_clear_wait", "10s")
	v.SetDefault("agent.platform_clear_poll", "1s")
	v.SetDefault("agent.climb_hold", "1.5s")
	v.SetDefault("agent.descent_hold", "2s")
	v.SetDefault("agent.attack_gap", "200ms")
	v.SetDefault("agent.attack_cooldown", "300ms")
	v.SetDefault("agent.rope_mount_delay", "2s")
	v.SetDefault("agent.descent_delay", "1s")
	v.SetDefault("agent.approach_delay", "500ms")
	v.SetDefault("agent.strategy", StrategySimple)
	v.SetDefault("agent.countdown", 3)

	v.SetDefault("keys.left", "left")
	v.SetDefault("keys.right", "right")
	v.SetDefault("keys.up", "up")
	v.SetDefault("keys.down", "down")
	v.SetDefault("keys.jump", "space")
	v.SetDefault("keys.attack", []string{"x"})

	v.SetDefault("input.backend", BackendRobotgo)
	v.SetDefault("input.port", "COM7")
	v.SetDefault("input.baud_rate", 9600)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.dsn", "root:root@tcp(127.0.0.1:3306)/ropebot?parseTime=true")

	v.SetDefault("color.min_area", 100.0)
	v.SetDefault("color.ranges", []map[string]interface{}{
		{"name": "monster_red", "lower": []int{0, 100, 100}, "upper": []int{10, 255, 255}},
		{"name": "monster_orange", "lower": []int{10, 100, 100}, "upper": []int{25, 255, 255}},
		{"name": "rope_brown", "lower": []int{8, 50, 50}, "upper": []int{20, 200, 200}},
		{"name": "hp_green", "lower": []int{40, 50, 50}, "upper": []int{80, 255, 255}},
		{"name": "text_white", "lower": []int{0, 0, 200}, "upper": []int{180, 30, 255}},
	})
}

// DefaultThreshold используется, когда пользователь ввёл некорректный порог
const DefaultThreshold = 0.7

// Default возвращает конфигурацию только из значений по умолчанию
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return c
}

// InitConfig читает конфигурацию из yaml файла. Пустой путь означает ./config.yaml.
// Если файла нет, возвращаются значения по умолчанию вместе с ErrConfigNotFound.
var InitConfig = func(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // Имя конфигурационного файла без расширения
		v.AddConfigPath(".")      // Путь к файлу конфигурации
		v.SetConfigType("yaml")   // Формат файла
	}

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) || isNotExist(err) {
			notFound = fmt.Errorf("%w: %v", ErrConfigNotFound, err)
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, notFound
}

// Validate проверяет значения, без которых компоненты не могут работать
func (c Config) Validate() error {
	switch c.Agent.Strategy {
	case StrategySimple, StrategySmart:
	default:
		return fmt.Errorf("неизвестная стратегия спуска: %q", c.Agent.Strategy)
	}
	switch c.Detector.Backend {
	case BackendNative, BackendOpenCV:
	default:
		return fmt.Errorf("неизвестный бэкенд детектора: %q", c.Detector.Backend)
	}
	switch c.Input.Backend {
	case BackendRobotgo, BackendArduino:
	default:
		return fmt.Errorf("неизвестный бэкенд ввода: %q", c.Input.Backend)
	}
	if len(c.Detector.Scales) == 0 {
		return errors.New("detector.scales не может быть пустым")
	}
	if c.Cluster.Radius <= 0 {
		return fmt.Errorf("cluster.radius должен быть положительным: %v", c.Cluster.Radius)
	}
	if c.Agent.ExploreMax < c.Agent.ExploreMin {
		return fmt.Errorf("agent.explore_max (%v) меньше agent.explore_min (%v)", c.Agent.ExploreMax, c.Agent.ExploreMin)
	}
	if c.Agent.PixelsPerSecond <= 0 {
		return fmt.Errorf("agent.pixels_per_second должен быть положительным: %v", c.Agent.PixelsPerSecond)
	}
	for name, v := range map[string]float64{
		"agent.attack_range":           c.Agent.AttackRange,
		"agent.platform_tolerance":     c.Agent.PlatformTolerance,
		"detector.dedupe_min_distance": c.Detector.DedupeMinDistance,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s не может быть отрицательным: %v", name, v)
		}
	}
	if len(c.Keys.Attack) == 0 {
		return errors.New("keys.attack не может быть пустым")
	}
	return nil
}
