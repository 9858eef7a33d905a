// Package config loads pageflow configuration and prepares the logger.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"pageflow/pkg/layout"
	"pageflow/pkg/paginate"
	"pageflow/pkg/styled"
	"pageflow/pkg/text"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	LayoutConfig struct {
		NewLayout           bool    `yaml:"new_layout"`
		Diagnostics         bool    `yaml:"diagnostics"`
		InlineBlock         bool    `yaml:"inline_block"`
		Table               bool    `yaml:"table"`
		TableBorderCollapse bool    `yaml:"table_border_collapse"`
		Flex                bool    `yaml:"flex"`
		FallbackLineHeight  float64 `yaml:"fallback_line_height" validate:"gt=0"`
	}

	EdgesConfig struct {
		Top    float64 `yaml:"top" validate:"gte=0"`
		Right  float64 `yaml:"right" validate:"gte=0"`
		Bottom float64 `yaml:"bottom" validate:"gte=0"`
		Left   float64 `yaml:"left" validate:"gte=0"`
	}

	PageConfig struct {
		Width        float64     `yaml:"width" validate:"gt=0"`
		Height       float64     `yaml:"height" validate:"gt=0"`
		Margin       EdgesConfig `yaml:"margin"`
		HeaderHeight float64     `yaml:"header_height" validate:"gte=0"`
		FooterHeight float64     `yaml:"footer_height" validate:"gte=0"`
		HeaderText   string      `yaml:"header_text"`
		FooterText   string      `yaml:"footer_text"`
	}

	TextConfig struct {
		Font     string  `yaml:"font" validate:"omitempty,file"`
		FontSize float64 `yaml:"font_size" validate:"gt=0"`
	}

	RenderConfig struct {
		Scale     float64 `yaml:"scale" validate:"gt=0,lte=8"`
		Outline   bool    `yaml:"outline"`
		PageLabel string  `yaml:"page_label"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Layout  LayoutConfig  `yaml:"layout"`
		Page    PageConfig    `yaml:"page"`
		Text    TextConfig    `yaml:"text"`
		Render  RenderConfig  `yaml:"render"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := validate.Struct(cfg); err != nil {
			return nil, err
		}
		// field rules cannot see that margins and bands eat the page
		if err := cfg.PageConstraints().Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the embedded defaults and performs
// validation. An empty path returns the defaults.
func LoadConfiguration(path string) (*Config, error) {
	haveFile := len(path) > 0

	cfg, err := unmarshalConfig(defaultConfig, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the default configuration file.
func Prepare() []byte {
	return bytes.Clone(defaultConfig)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// LayoutOptions converts the layout section into engine options.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		NewLayout:           c.Layout.NewLayout,
		Diagnostics:         c.Layout.Diagnostics,
		InlineBlock:         c.Layout.InlineBlock,
		Table:               c.Layout.Table,
		TableBorderCollapse: c.Layout.TableBorderCollapse,
		Flex:                c.Layout.Flex,
		FallbackLineHeight:  c.Layout.FallbackLineHeight,
	}
}

// PageConstraints converts the page section into pagination geometry.
func (c *Config) PageConstraints() paginate.PageConstraints {
	return paginate.PageConstraints{
		Width:  c.Page.Width,
		Height: c.Page.Height,
		Margin: styled.Edges{
			Top:    c.Page.Margin.Top,
			Right:  c.Page.Margin.Right,
			Bottom: c.Page.Margin.Bottom,
			Left:   c.Page.Margin.Left,
		},
		HeaderHeight: c.Page.HeaderHeight,
		FooterHeight: c.Page.FooterHeight,
	}
}

// Measurer returns the text measurer the text section asks for.
func (c *Config) Measurer() layout.TextMeasurer {
	if c.Text.Font == "" {
		return text.MonoMeasurer{}
	}
	return text.NewFontMeasurer(c.Text.Font)
}

// BandStyle is the style of header and footer text.
func (c *Config) BandStyle() styled.Style {
	s := styled.DefaultStyle()
	s.FontSize = c.Text.FontSize
	return s
}
