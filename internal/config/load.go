package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lettercount/pkg/contract"
)

// EnvPrefix 为全部配置类环境变量的前缀。
const EnvPrefix = "LETTERCOUNT_"

// ErrSource: 配置来源错误（JSON 非法、文件缺失、组件未注册等），与 ErrInvalidConfig 区分。
var ErrSource = errors.New("config source")

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：File 不设默认（必须由 JSON/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		Threads:   1,
		BlockSize: 4096,
		Logging:   Logging{Level: "info"},
		Components: Components{
			Scanner:  "fs",
			Reporter: "text",
			Writer:   "fs",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
// 失败统一匹配 ErrSource。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrSource, err)
		}
		defer f.Close()
		r = f
	default:
		return cfg, fmt.Errorf("%w: no config source provided", ErrSource)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。零值视为未覆盖。
func Merge(base, over Config) Config {
	out := base
	if strings.TrimSpace(over.File) != "" {
		out.File = strings.TrimSpace(over.File)
	}
	if over.Threads != 0 {
		out.Threads = over.Threads
	}
	if over.BlockSize != 0 {
		out.BlockSize = over.BlockSize
	}
	if strings.TrimSpace(over.Output) != "" {
		out.Output = strings.TrimSpace(over.Output)
	}
	// show_blocks 只能被打开，不能被上层关闭
	if over.ShowBlocks {
		out.ShowBlocks = true
	}
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}

	// 组件名（空不覆盖）
	if over.Components.Scanner != "" {
		out.Components.Scanner = over.Components.Scanner
	}
	if over.Components.Reporter != "" {
		out.Components.Reporter = over.Components.Reporter
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if len(over.Options.Scanner) > 0 {
		out.Options.Scanner = cloneRaw(over.Options.Scanner)
	}
	if len(over.Options.Reporter) > 0 {
		out.Options.Reporter = cloneRaw(over.Options.Reporter)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 LETTERCOUNT_；集合之外的键忽略。
// 支持：FILE, THREADS, BLOCK_SIZE, SHOW_BLOCKS, OUTPUT, LOGGING_LEVEL,
// COMPONENTS_{SCANNER,REPORTER,WRITER}, OPTIONS_{SCANNER,REPORTER,WRITER}_JSON。
// 数值无法解析 → ErrSource；显式给出的非正数 → contract.ErrInvalidConfig。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "FILE":
			over.File = strings.TrimSpace(val)
		case "THREADS":
			if strings.TrimSpace(val) == "" {
				continue
			}
			v, err := atoi(val)
			if err != nil {
				return over, fmt.Errorf("%w: %s: %v", ErrSource, key, err)
			}
			if v < 1 {
				return over, fmt.Errorf("%w: %s must be >= 1, got %d", contract.ErrInvalidConfig, key, v)
			}
			over.Threads = v
		case "BLOCK_SIZE":
			if strings.TrimSpace(val) == "" {
				continue
			}
			v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return over, fmt.Errorf("%w: %s: %v", ErrSource, key, err)
			}
			if v < 1 {
				return over, fmt.Errorf("%w: %s must be >= 1, got %d", contract.ErrInvalidConfig, key, v)
			}
			over.BlockSize = v
		case "SHOW_BLOCKS":
			if strings.TrimSpace(val) == "" {
				continue
			}
			v, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return over, fmt.Errorf("%w: %s: %v", ErrSource, key, err)
			}
			over.ShowBlocks = v
		case "OUTPUT":
			over.Output = strings.TrimSpace(val)
		case "LOGGING_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "COMPONENTS_SCANNER":
			over.Components.Scanner = strings.TrimSpace(val)
		case "COMPONENTS_REPORTER":
			over.Components.Reporter = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "OPTIONS_SCANNER_JSON":
			// 原样 JSON；空值视为未设置，避免清空现有配置
			if strings.TrimSpace(val) != "" {
				over.Options.Scanner = json.RawMessage(val)
			}
		case "OPTIONS_REPORTER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Reporter = json.RawMessage(val)
			}
		case "OPTIONS_WRITER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Writer = json.RawMessage(val)
			}
		default:
			// CONFIG_FILE / CONFIG_JSON 由 cmd 层处理；其余忽略
		}
	}
	return over, nil
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
