package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"grain-analyzer/internal/domain/entity"
)

const DefaultMaskThreshold = 128

type Config struct {
	TelegramToken string
	LogLevel      string
	Workers       int                   // параллельные анализы в пакете
	MaskThreshold int                   // порог бинаризации файлов масок
	MaskRoot      string                // каталог с масками сегментации по образцам
	Analysis      entity.AnalysisConfig // базовые параметры анализа
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	return FromLookup(os.LookupEnv)
}

// FromLookup собирает конфигурацию из переменных окружения.
// Все ошибки разбора и проверки возвращаются вместе.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		TelegramToken: get("TELEGRAM_TOKEN"),
		LogLevel:      get("LOG_LEVEL"),
		MaskRoot:      get("GRAIN_MASK_ROOT"),
		Workers:       runtime.NumCPU(),
		MaskThreshold: DefaultMaskThreshold,
		Analysis:      entity.DefaultAnalysisConfig(entity.PhaseFerrite),
	}

	var err error
	intVar := func(key string, dst *int) {
		if v := get(key); v != "" {
			n, e := cast.ToIntE(v)
			if e != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", key, e))
				return
			}
			*dst = n
		}
	}
	intVar("GRAIN_WORKERS", &cfg.Workers)
	intVar("GRAIN_THRESHOLD", &cfg.Analysis.Threshold)
	intVar("GRAIN_DENOISE_KERNEL", &cfg.Analysis.DenoiseKernel)
	intVar("GRAIN_DENOISE_CUTOFF", &cfg.Analysis.DenoiseCutoff)
	intVar("GRAIN_MASK_THRESHOLD", &cfg.MaskThreshold)

	if v := get("GRAIN_MIN_AREA"); v != "" {
		f, e := cast.ToFloat64E(v)
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("GRAIN_MIN_AREA: %w", e))
		} else {
			cfg.Analysis.MinContourArea = f
		}
	}

	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения; каждое поле попадает в ошибку не больше одного раза.
func (c *Config) Validate() error {
	var err error
	if c.Workers < 1 {
		err = multierr.Append(err, entity.NewConfigurationError("workers", "%d must be positive", c.Workers))
	}
	if c.MaskThreshold < 0 || c.MaskThreshold > 255 {
		err = multierr.Append(err, entity.NewConfigurationError("mask_threshold", "%d is outside [0,255]", c.MaskThreshold))
	}
	err = multierr.Append(err, c.Analysis.Validate())
	// пользователь может выбрать перлит позже, параметры шумоподавления нужны всегда
	if c.Analysis.Phase != entity.PhasePerlite {
		err = multierr.Append(err, c.Analysis.ValidateDenoise())
	}
	return err
}
