// Package config 读取 YAML 配置：默认纸张与边距、渲染后端、资源目录、全局水印与日志。
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/platen/assets"
	"github.com/ByLCY/platen/compile"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/style"
)

// 可用的渲染后端。
const (
	BackendCanvas = "canvas"
	BackendFPDF   = "fpdf"
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == errs.ErrConfiguration }

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// Config 是完整的应用配置。
type Config struct {
	Page    PageConfig    `yaml:"page" json:"page"`
	Backend string        `yaml:"backend" json:"backend"`
	Assets  AssetsConfig  `yaml:"assets" json:"assets"`
	Binding BindingConfig `yaml:"binding" json:"binding"`

	// Watermark 与 Border 作用于所有文档，DSL 的 overlay 在其之上绘制。
	Watermark *WatermarkConfig `yaml:"watermark" json:"watermark,omitempty"`
	Border    *BorderConfig    `yaml:"border" json:"border,omitempty"`

	Logging *LoggingConfig `yaml:"logging" json:"logging,omitempty"`
}

// PageConfig 是 DSL 中 `page default` 使用的页面设置。
type PageConfig struct {
	// Size 是纸张预设（letter、legal、a4、a5）。
	Size string `yaml:"size" json:"size"`
	// Orientation 为 portrait 或 landscape。
	Orientation string `yaml:"orientation" json:"orientation"`
	// Margin 按 CSS 简写写 1 到 4 个长度，例如 "0.75in" 或 "54pt 36pt"。
	Margin  string `yaml:"margin" json:"margin"`
	Spacing string `yaml:"spacing" json:"spacing"`
}

// AssetsConfig 控制图片的加载位置与分辨率。
type AssetsConfig struct {
	Dir string  `yaml:"dir" json:"dir"`
	DPI float64 `yaml:"dpi" json:"dpi,omitempty"`
}

// BindingConfig 控制数据插值。
type BindingConfig struct {
	// Strict 为 true 时，缺失且没有默认值的占位符会使编译失败。
	Strict bool `yaml:"strict" json:"strict"`
}

// WatermarkConfig 描述全局水印；Text 为空时不绘制。
type WatermarkConfig struct {
	Text    string   `yaml:"text" json:"text"`
	Font    string   `yaml:"font" json:"font,omitempty"`
	Size    float64  `yaml:"size" json:"size,omitempty"`
	Color   string   `yaml:"color" json:"color,omitempty"`
	Opacity *float64 `yaml:"opacity" json:"opacity,omitempty"`
	Angle   *float64 `yaml:"angle" json:"angle,omitempty"`
}

// BorderConfig 描述距页面边缘 Inset 处的矩形边框。
type BorderConfig struct {
	Inset string  `yaml:"inset" json:"inset"`
	Width float64 `yaml:"width" json:"width"`
	Color string  `yaml:"color" json:"color,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`
}

// Load 读取并解析 YAML 配置文件。
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ConfigError{Message: "failed to read config file", Err: err}
	}
	return Parse(data)
}

// Parse 解析 YAML 配置，补全默认值并校验。
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse config", Err: err}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回只包含默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults 补全未设置的字段，已有值不会被覆盖。
func (c *Config) SetDefaults() {
	if c.Page.Size == "" {
		c.Page.Size = "letter"
	}
	if c.Page.Orientation == "" {
		c.Page.Orientation = "portrait"
	}
	if c.Page.Margin == "" {
		c.Page.Margin = "0.75in"
	}
	if c.Page.Spacing == "" {
		c.Page.Spacing = "12pt"
	}
	if c.Backend == "" {
		c.Backend = BackendCanvas
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "."
	}
	if c.Assets.DPI == 0 {
		c.Assets.DPI = assets.DefaultDPI
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Logging.SetDefaults()
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate 检查配置取值是否合法。
func (c *Config) Validate() error {
	if _, err := c.Defaults(); err != nil {
		return err
	}
	switch c.Backend {
	case BackendCanvas, BackendFPDF:
	default:
		return NewConfigError("backend", fmt.Sprintf("unsupported backend %q (canvas, fpdf)", c.Backend))
	}
	if c.Assets.DPI < 0 {
		return NewConfigError("assets.dpi", "must not be negative")
	}
	if w := c.Watermark; w != nil && w.Opacity != nil && (*w.Opacity < 0 || *w.Opacity > 1) {
		return NewConfigError("watermark.opacity", "must be between 0 and 1")
	}
	if c.Logging != nil {
		if _, err := parseLevel(c.Logging.Level); err != nil {
			return err
		}
		switch c.Logging.Format {
		case "", "text", "json":
		default:
			return NewConfigError("logging.format", fmt.Sprintf("unsupported format %q (text, json)", c.Logging.Format))
		}
	}
	return nil
}

// Defaults 把页面、水印与边框设置转换为编译默认值。
func (c *Config) Defaults() (compile.Defaults, error) {
	var def compile.Defaults
	def.PageSize = c.Page.Size
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait":
	case "landscape":
		def.Landscape = true
	default:
		return def, NewConfigError("page.orientation", fmt.Sprintf("unsupported orientation %q", c.Page.Orientation))
	}
	if _, _, err := layout.PageSize(def.PageSize, def.Landscape); err != nil {
		return def, &ConfigError{Field: "page.size", Message: err.Error(), Err: err}
	}
	if c.Page.Margin != "" {
		m, err := layout.ParseMargins(strings.Fields(c.Page.Margin))
		if err != nil {
			return def, &ConfigError{Field: "page.margin", Message: err.Error(), Err: err}
		}
		def.Margins = m
	}
	if c.Page.Spacing != "" {
		s, err := layout.ParseLength(c.Page.Spacing)
		if err != nil {
			return def, &ConfigError{Field: "page.spacing", Message: err.Error(), Err: err}
		}
		def.Spacing = s
	}

	var fns []decorate.Func
	if w := c.Watermark; w != nil && w.Text != "" {
		opts, err := w.options()
		if err != nil {
			return def, err
		}
		fns = append(fns, decorate.Watermark(w.Text, opts...))
	}
	if b := c.Border; b != nil {
		inset := 18.0
		if b.Inset != "" {
			v, err := layout.ParseLength(b.Inset)
			if err != nil {
				return def, &ConfigError{Field: "border.inset", Message: err.Error(), Err: err}
			}
			inset = v
		}
		col := style.Black
		if b.Color != "" {
			v, err := style.ParseColor(b.Color)
			if err != nil {
				return def, &ConfigError{Field: "border.color", Message: err.Error(), Err: err}
			}
			col = v
		}
		width := b.Width
		if width == 0 {
			width = 1
		}
		fns = append(fns, decorate.Border(inset, width, col))
	}
	if len(fns) > 0 {
		def.Decorator = decorate.Chain(fns...)
	}
	return def, nil
}

func (w *WatermarkConfig) options() ([]decorate.WatermarkOption, error) {
	var opts []decorate.WatermarkOption
	if w.Font != "" {
		opts = append(opts, decorate.WithFont(w.Font, true))
	}
	if w.Size > 0 {
		opts = append(opts, decorate.WithSize(w.Size))
	}
	if w.Color != "" {
		col, err := style.ParseColor(w.Color)
		if err != nil {
			return nil, &ConfigError{Field: "watermark.color", Message: err.Error(), Err: err}
		}
		opts = append(opts, decorate.WithColor(col))
	}
	if w.Opacity != nil {
		opts = append(opts, decorate.WithOpacity(*w.Opacity))
	}
	if w.Angle != nil {
		opts = append(opts, decorate.WithAngle(*w.Angle))
	}
	return opts, nil
}

// Loader 返回按 assets 配置创建的图片加载器。
func (c *Config) Loader() *assets.Loader {
	l := assets.NewLoader(c.Assets.Dir)
	if c.Assets.DPI > 0 {
		l.DPI = c.Assets.DPI
	}
	return l
}

func parseLevel(v string) (slog.Level, error) {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, NewConfigError("logging.level", fmt.Sprintf("unsupported level %q", v))
	}
}

// NewLogger 按日志配置创建 slog.Logger。输出到文件时返回的 close 负责关闭文件，其他情况为空操作。
func (c *LoggingConfig) NewLogger() (*slog.Logger, func() error, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	var w io.Writer
	switch c.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, &ConfigError{Field: "logging.output", Message: "failed to open log file", Err: err}
		}
		w = f
		closeFn = f.Close
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
}
