package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	File      string `json:"file"`
	Threads   int    `json:"threads"`
	BlockSize int64  `json:"block_size"`
	// ShowBlocks: 启动 worker 前在 stderr 输出每个 worker 的块表。
	ShowBlocks bool `json:"show_blocks"`
	// Output: 报告输出文件；空表示写 stdout。
	Output string `json:"output"`

	Logging Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Scanner  string `json:"scanner"`
	Reporter string `json:"reporter"`
	Writer   string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Scanner  json.RawMessage `json:"scanner"`
	Reporter json.RawMessage `json:"reporter"`
	Writer   json.RawMessage `json:"writer"`
}
