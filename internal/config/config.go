// Package config собирает настройки рендера: встроенные значения, файл из
// XDG_CONFIG_HOME, явно заданный файл и переменные окружения UPD_*.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/nikitaxru/updtemplar"
)

//go:embed defaults.toml
var defaultConfig []byte

const (
	EnvPrefix = "UPD_"
	// UserConfigFile ищется в каталогах XDG_CONFIG_HOME и XDG_CONFIG_DIRS
	UserConfigFile = "updtemplar/config.toml"
)

// Converter — внешний конвертер в PDF
type Converter struct {
	Binary  string `koanf:"binary"`
	TempDir string `koanf:"temp_dir"`
}

// Rule — правило точного совпадения, вычисляемое выражением expr
type Rule struct {
	Match string `koanf:"match"`
	Expr  string `koanf:"expr"`
}

type Config struct {
	Sheet       string    `koanf:"sheet"`
	TemplateRow int       `koanf:"template_row"`
	DateLayout  string    `koanf:"date_layout"`
	NoVATLabel  string    `koanf:"no_vat_label"`
	Converter   Converter `koanf:"converter"`
	Rules       []Rule    `koanf:"rules"`
}

// Load читает настройки по слоям; path может быть пустым.
// UPD_CONVERTER__BINARY задаёт converter.binary, UPD_DATE_LAYOUT — date_layout.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: встроенные настройки: %w", updtemplar.ErrConfig, err)
	}

	if user, err := xdg.SearchConfigFile(UserConfigFile); err == nil {
		if err := k.Load(file.Provider(user), toml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", updtemplar.ErrConfig, user, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %w", updtemplar.ErrConfig, err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", updtemplar.ErrConfig, path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: переменные окружения: %w", updtemplar.ErrConfig, err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("%w: %w", updtemplar.ErrConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TemplateRow < 0 {
		return fmt.Errorf("%w: template_row = %d", updtemplar.ErrConfig, c.TemplateRow)
	}
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Match) == "" {
			return fmt.Errorf("%w: rules[%d]: пустой match", updtemplar.ErrConfig, i)
		}
	}
	return nil
}

// Options переводит настройки в параметры рендера, компилируя правила
func (c *Config) Options() ([]updtemplar.Option, error) {
	opts := []updtemplar.Option{
		updtemplar.WithSheet(c.Sheet),
		updtemplar.WithTemplateRow(c.TemplateRow),
	}
	if c.DateLayout != "" {
		opts = append(opts, updtemplar.WithDateLayout(c.DateLayout))
	}
	if c.NoVATLabel != "" {
		opts = append(opts, updtemplar.WithNoVATLabel(c.NoVATLabel))
	}

	var errs []error
	var rules []updtemplar.Rule
	for _, r := range c.Rules {
		rule, err := updtemplar.ExprRule(r.Match, r.Expr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		opts = append(opts, updtemplar.WithRules(rules...))
	}
	return opts, nil
}

// PDFConverter возвращает конвертер из секции converter
func (c *Config) PDFConverter() updtemplar.SofficeConverter {
	return updtemplar.SofficeConverter{Binary: c.Converter.Binary, TempDir: c.Converter.TempDir}
}
