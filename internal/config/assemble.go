package config

import (
	"fmt"
	"strings"

	"lettercount/internal/pipeline"
	"lettercount/pkg/contract"
	"lettercount/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
// 数值与文件缺失 → contract.ErrInvalidConfig；组件未注册 → ErrSource。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.File) == "" {
		return fmt.Errorf("%w: input file not set", contract.ErrInvalidConfig)
	}
	if cfg.Threads < 1 {
		return fmt.Errorf("%w: threads must be >= 1, got %d", contract.ErrInvalidConfig, cfg.Threads)
	}
	if cfg.BlockSize < 1 {
		return fmt.Errorf("%w: block_size must be >= 1, got %d", contract.ErrInvalidConfig, cfg.BlockSize)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging level %q", ErrSource, cfg.Logging.Level)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	if name := effName(cfg.Components.Scanner, Defaults().Components.Scanner); registry.Scanner[name] == nil {
		return fmt.Errorf("%w: scanner %q not registered", ErrSource, name)
	}
	if name := effName(cfg.Components.Reporter, Defaults().Components.Reporter); registry.Reporter[name] == nil {
		return fmt.Errorf("%w: reporter %q not registered", ErrSource, name)
	}
	if name := effName(cfg.Components.Writer, Defaults().Components.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("%w: writer %q not registered", ErrSource, name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	d := Defaults()
	sn := effName(cfg.Components.Scanner, d.Components.Scanner)
	rn := effName(cfg.Components.Reporter, d.Components.Reporter)
	wn := effName(cfg.Components.Writer, d.Components.Writer)

	sc, err := registry.Scanner[sn](cfg.Options.Scanner)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("%w: options.scanner: %v", ErrSource, err)
	}
	rep, err := registry.Reporter[rn](cfg.Options.Reporter)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("%w: options.reporter: %v", ErrSource, err)
	}

	w, err := registry.Writer[wn](cfg.Options.Writer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("%w: options.writer: %v", ErrSource, err)
	}

	comp := pipeline.Components{Scanner: sc, Reporter: rep, Writer: w}
	set := pipeline.Settings{
		Path:      strings.TrimSpace(cfg.File),
		Threads:   cfg.Threads,
		BlockSize: cfg.BlockSize,
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
