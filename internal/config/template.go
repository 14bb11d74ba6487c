package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 输入文件留空，需由 CLI/ENV 补齐；
// - 组件名采用仓库内置实现；
// - 选项给出全部键及中性默认值。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Options.Scanner = json.RawMessage(`{
  "buf_size": 65536
}`)
	cfg.Options.Reporter = json.RawMessage(`{}`)
	cfg.Options.Writer = json.RawMessage(`{
  "atomic": true,
  "perm_file": 0,
  "perm_dir": 0,
  "buf_size": 65536
}`)
	return cfg
}

// EnvTemplate 返回 .env 模板内容（全部键注释掉，保持 ENV 不生效）。
func EnvTemplate() string {
	return `# lettercount 环境变量（优先级：CLI > ENV > config.json > 默认）
# LETTERCOUNT_CONFIG_FILE=config.json
# LETTERCOUNT_FILE=
# LETTERCOUNT_THREADS=1
# LETTERCOUNT_BLOCK_SIZE=4096
# LETTERCOUNT_SHOW_BLOCKS=false
# LETTERCOUNT_OUTPUT=
# LETTERCOUNT_LOGGING_LEVEL=info
# LETTERCOUNT_COMPONENTS_SCANNER=fs
# LETTERCOUNT_COMPONENTS_REPORTER=text
# LETTERCOUNT_COMPONENTS_WRITER=fs
# LETTERCOUNT_OPTIONS_SCANNER_JSON={"buf_size":65536}
# LETTERCOUNT_OPTIONS_REPORTER_JSON={}
# LETTERCOUNT_OPTIONS_WRITER_JSON={"atomic":true}
`
}
