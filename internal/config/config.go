package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"time"

	"mathdrill/internal/generator"
	"mathdrill/internal/task"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPPort        = "8080"
	defaultGRPCPort        = "8081"
	defaultDBPath          = "./mathdrill.db"
	defaultTokenTTLMinutes = 60
	defaultSessionTTL      = 2 * time.Hour
)

const (
	// MaxOperands - сколько операндов может запросить одно занятие
	MaxOperands = 1000
	// MaxOperandValue ограничивает модуль каждого операнда
	MaxOperandValue = 1_000_000
)

// ErrOperandLimit - занятие просит слишком много операндов или слишком большие числа
var ErrOperandLimit = errors.New("operand limit exceeded")

var envFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	HTTPPort    string
	GRPCPort    string
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	SessionTTL  time.Duration
	PresetsPath string
	Presets     []Preset
}

// Preset - именованное занятие из YAML-файла
type Preset struct {
	Name      string       `yaml:"name" json:"name"`
	Operation string       `yaml:"operation" json:"operation"`
	Operands  []int        `yaml:"operands,omitempty" json:"operands,omitempty"`
	Min       int          `yaml:"min" json:"min"`
	Max       int          `yaml:"max" json:"max"`
	Limit     *int         `yaml:"limit,omitempty" json:"limit,omitempty"`
	Shuffle   *bool        `yaml:"shuffle,omitempty" json:"shuffle,omitempty"`
	Display   task.Display `yaml:"display" json:"display"`
}

// Values возвращает операнды: явный список или диапазон min..max
func (p Preset) Values() []int {
	if len(p.Operands) > 0 {
		return p.Operands
	}
	return generator.Range(p.Min, p.Max)
}

func (p Preset) LimitValue() int {
	if p.Limit == nil {
		return generator.NoLimit
	}
	return *p.Limit
}

func (p Preset) ShuffleValue() bool {
	if p.Shuffle == nil {
		return true
	}
	return *p.Shuffle
}

// Tasks генерирует задания занятия и применяет его настройки отображения
func (p Preset) Tasks(g *generator.Generator) (generator.Operation, []*task.Task, error) {
	op, err := generator.ParseOperation(p.Operation)
	if err != nil {
		return "", nil, err
	}

	if err := p.checkOperands(op); err != nil {
		return "", nil, err
	}

	tasks, err := g.Generate(op, p.Values(), p.LimitValue(), p.ShuffleValue())
	if err != nil {
		return "", nil, err
	}
	for i, t := range tasks {
		tasks[i] = t.WithDisplay(p.Display)
	}
	return op, tasks, nil
}

// Load читает .env (если найден) и переменные окружения
func Load() (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			log.Printf("Загружен файл с переменными окружения: %s", file)
			break
		}
	}

	ttl, err := strconv.Atoi(getEnvOrDefault("TOKEN_TTL_MINUTES", strconv.Itoa(defaultTokenTTLMinutes)))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %q", os.Getenv("TOKEN_TTL_MINUTES"))
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("DRILL_SESSION_TTL", defaultSessionTTL.String()))
	if err != nil || sessionTTL <= 0 {
		return nil, fmt.Errorf("invalid DRILL_SESSION_TTL: %q", os.Getenv("DRILL_SESSION_TTL"))
	}

	cfg := &Config{
		HTTPPort:    getEnvOrDefault("DRILL_HTTP_PORT", defaultHTTPPort),
		GRPCPort:    getEnvOrDefault("DRILL_GRPC_PORT", defaultGRPCPort),
		DBPath:      getEnvOrDefault("DRILL_DB_PATH", defaultDBPath),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    time.Duration(ttl) * time.Minute,
		SessionTTL:  sessionTTL,
		PresetsPath: os.Getenv("DRILL_PRESETS"),
		Presets:     DefaultPresets(),
	}

	if cfg.PresetsPath != "" {
		presets, err := LoadPresets(cfg.PresetsPath)
		if err != nil {
			return nil, err
		}
		cfg.Presets = presets
	}

	return cfg, nil
}

func (c *Config) Preset(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	log.Printf("Загружено занятий из %s: %d", path, len(presets))
	return presets, nil
}

func ParsePresets(data []byte) ([]Preset, error) {
	var file struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset #%d: empty name", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("preset %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		op, err := generator.ParseOperation(p.Operation)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		if p.Limit != nil && (op == generator.Multiplication || op == generator.Division) {
			return nil, fmt.Errorf("preset %q: %w", p.Name, generator.ErrLimitUnsupported)
		}
		if err := p.checkOperands(op); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		if len(p.Values()) == 0 {
			return nil, fmt.Errorf("preset %q: %w", p.Name, errNoOperands)
		}
		file.Presets[i].Operation = string(op)
	}
	return file.Presets, nil
}

var errNoOperands = errors.New("no operands")

// checkOperands проверяет размер занятия до того, как будут построены операнды
// и пары. Таблица умножения строится до наибольшего множителя, поэтому для неё
// множитель ограничен так же, как число операндов.
func (p Preset) checkOperands(op generator.Operation) error {
	lo, hi := p.Min, p.Max
	if len(p.Operands) > 0 {
		if len(p.Operands) > MaxOperands {
			return fmt.Errorf("%w: %d operands, at most %d", ErrOperandLimit, len(p.Operands), MaxOperands)
		}
		lo, hi = slices.Min(p.Operands), slices.Max(p.Operands)
	} else if lo <= hi && uint64(hi)-uint64(lo) >= MaxOperands {
		return fmt.Errorf("%w: range %d..%d, at most %d operands", ErrOperandLimit, lo, hi, MaxOperands)
	}

	if lo > hi {
		return nil
	}
	if lo < -MaxOperandValue || hi > MaxOperandValue {
		return fmt.Errorf("%w: operands must be within ±%d", ErrOperandLimit, MaxOperandValue)
	}
	if op == generator.Multiplication && hi > MaxOperands {
		return fmt.Errorf("%w: multiplier %d, at most %d", ErrOperandLimit, hi, MaxOperands)
	}
	return nil
}

// DefaultPresets - занятия, доступные без файла настроек
func DefaultPresets() []Preset {
	ten := 10
	return []Preset{
		{Name: "sum-10", Operation: string(generator.Sum), Min: 0, Max: 10, Limit: &ten, Display: task.DefaultDisplay()},
		{Name: "difference-10", Operation: string(generator.Difference), Min: 0, Max: 10, Limit: &ten, Display: task.DefaultDisplay()},
		{Name: "multiplication-table", Operation: string(generator.Multiplication), Min: 2, Max: 9, Display: task.Typographic()},
		{Name: "division-table", Operation: string(generator.Division), Min: 2, Max: 9, Display: task.Typographic()},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
