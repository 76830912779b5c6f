package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/platen/compile"
	"github.com/ByLCY/platen/config"
	"github.com/ByLCY/platen/dsl"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/renderer"
	canvasrenderer "github.com/ByLCY/platen/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/platen/renderer/fpdf"
)

func main() {
	input := flag.String("in", "examples/briefing.platen", "DSL 文件路径")
	output := flag.String("out", "output/briefing.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	dataFile := flag.String("data-file", "", "绑定到 DSL 的 JSON 数据文件")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	backend := flag.String("backend", "", "渲染后端（canvas、fpdf），覆盖配置文件")
	strict := flag.Bool("strict", false, "无法解析的占位符视为错误")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *input)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *strict {
		cfg.Binding.Strict = true
	}

	logger, closeLog, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer closeLog()

	data, err := loadData(*dataJSON, *dataFile)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}

	if err := run(*input, *output, *debug, data, cfg, logger); err != nil {
		logger.Error("生成 PDF 失败", "error", err)
		closeLog()
		os.Exit(1)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

// loadConfig 读取配置文件；未指定时使用默认配置，图片相对 DSL 文件所在目录加载。
func loadConfig(path, input string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	cfg.Assets.Dir = filepath.Dir(input)
	return cfg, nil
}

func loadData(raw, path string) (any, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = string(b)
	}
	if raw == "" {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func newBackend(name string) (renderer.Backend, error) {
	switch name {
	case config.BackendCanvas, "":
		return canvasrenderer.New(), nil
	case config.BackendFPDF:
		return fpdfrenderer.New(), nil
	default:
		return nil, config.NewConfigError("backend", fmt.Sprintf("unsupported backend %q (canvas, fpdf)", name))
	}
}

// run 串联解析、编译、排版与渲染。
func run(inputPath, outputPath, debugPath string, data any, cfg *config.Config, logger *slog.Logger) error {
	backend, err := newBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defaults, err := cfg.Defaults()
	if err != nil {
		return err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	ldoc, err := compile.Compile(doc, compile.Options{
		Data:          data,
		StrictBinding: cfg.Binding.Strict,
		Loader:        cfg.Loader(),
		Logger:        logger,
		Defaults:      defaults,
	})
	if err != nil {
		return fmt.Errorf("编译文档失败: %w", err)
	}

	result, err := layout.Compose(ldoc, layout.Options{Measurer: backend, Logger: logger})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Info("排版完成", "pages", len(result.Pages), "backend", cfg.Backend)

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	pdfBytes, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
