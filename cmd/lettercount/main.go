package main

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/env/v2"

	cfgpkg "lettercount/internal/config"
	"lettercount/internal/diag"
	"lettercount/internal/pipeline"
	"lettercount/pkg/contract"
)

var pipelineRun = pipeline.Run

// 报告写 stdout，诊断与终端提示写 stderr；测试可替换。
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// 简化的 CLI：单一动作，统计文件中 26 个字母的出现次数。
// 位置参数（至多一个）为输入文件；--file 优先。
func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := genCorrID()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	// 先占位默认，稍后在解析/合并配置后重建 logger 以使用最终 level
	logger := diag.NewLogger(corrID, "info")
	defer func() { _ = logger.Close() }()

	var (
		flagConfig     string
		flagFile       string
		flagThreads    int
		flagBlock      int64
		flagFormat     string
		flagOutput     string
		flagShowBlocks bool
		flagInitDir    string
		flagStatus     bool
	)
	flag.StringVar(&flagConfig, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	flag.StringVar(&flagFile, "file", "", "输入文件（覆盖配置）")
	flag.StringVar(&flagFile, "f", "", "--file 的简写")
	flag.IntVar(&flagThreads, "threads", 0, "worker 数（覆盖配置）")
	flag.IntVar(&flagThreads, "t", 0, "--threads 的简写")
	flag.Int64Var(&flagBlock, "block", 0, "块大小，字节（覆盖配置）")
	flag.Int64Var(&flagBlock, "b", 0, "--block 的简写")
	flag.StringVar(&flagFormat, "format", "", "报告格式：text | json（覆盖配置）")
	flag.StringVar(&flagOutput, "output", "", "报告写入文件（原子替换）；缺省写 stdout")
	flag.StringVar(&flagOutput, "o", "", "--output 的简写")
	flag.BoolVar(&flagShowBlocks, "show-blocks", false, "启动前在 stderr 输出每个 worker 的块表")
	flag.StringVar(&flagInitDir, "init-config", "", "在指定目录生成默认配置 config.json 和 .env 模板（若已存在则跳过，不覆盖）；不带值时默认当前目录")
	flag.BoolVar(&flagStatus, "status", false, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	normalizeInitArg()
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return diag.ExitOK
		}
		return diag.ExitUsage
	}
	set := visited()

	// --init-config: 生成模板并退出
	if initDir := strings.TrimSpace(flagInitDir); initDir != "" {
		if err := os.MkdirAll(initDir, 0o755); err != nil {
			fprintf(stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init-config", &start)
			return diag.ExitConfigSource
		}
		if err := writeConfig(filepath.Join(initDir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
			fprintf(stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init-config", &start)
			return diag.ExitConfigSource
		}
		if err := writeDotEnv(filepath.Join(initDir, ".env")); err != nil {
			fprintf(stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
		}
		return diag.ExitOK
	}

	// 位置参数：至多一个输入文件
	args := flag.Args()
	if len(args) > 1 {
		fprintf(stderr, "参数过多: %s\n", strings.Join(args, " "))
		return diag.ExitUsage
	}
	if len(args) == 1 && !set["file"] && !set["f"] {
		flagFile = args[0]
		set["file"] = true
	}

	// JSON 配置（文件或 ENV: LETTERCOUNT_CONFIG_JSON）
	cfgJSON := []byte(env.Str(cfgpkg.EnvPrefix + "CONFIG_JSON"))
	if flagConfig == "" {
		flagConfig = env.Str(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	// 默认读取工作目录下 config.json（若存在）
	if flagConfig == "" {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(flagConfig, cfgJSON)
		if err != nil {
			fprintf(stderr, "配置解析失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "load", &start)
			return diag.ExitConfigSource
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	// ENV 覆盖（最小集合）
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(stderr, "环境变量解析失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "env", &start)
		return exitFor(err)
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖：仅显式给出的旗标生效，0 与负数原样交给校验
	if set["file"] || set["f"] {
		cfg.File = flagFile
	}
	if set["threads"] || set["t"] {
		cfg.Threads = flagThreads
	}
	if set["block"] || set["b"] {
		cfg.BlockSize = flagBlock
	}
	if set["format"] {
		cfg.Components.Reporter = strings.TrimSpace(flagFormat)
	}
	if set["output"] || set["o"] {
		cfg.Output = strings.TrimSpace(flagOutput)
	}
	if set["show-blocks"] {
		cfg.ShowBlocks = flagShowBlocks
	}

	// 基本校验 & 装配
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(stderr, "配置校验失败: %v\n", err)
		// 提示打印有效配置，便于诊断
		_ = dumpConfig(cfg)
		logger.Error("config", string(diag.Classify(err)), "validate", &start)
		return exitFor(err)
	}

	// 使用最终配置中的日志级别重建 logger
	if lvl := strings.TrimSpace(cfg.Logging.Level); lvl != "" {
		_ = logger.Close()
		logger = diag.NewLogger(corrID, lvl)
	}

	comp, rset, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "assemble", &start)
		return exitFor(err)
	}
	if cfg.ShowBlocks {
		rset.BlockDump = stderr
	}

	// 终端信息提示（非日志）：按 CLI 启用，默认关闭
	term := diag.NewTerminal(stderr, flagStatus)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	logger.DebugStart("config", "effective", map[string]string{
		"file":       cfg.File,
		"threads":    strconv.Itoa(cfg.Threads),
		"block_size": strconv.FormatInt(cfg.BlockSize, 10),
		"scanner":    cfg.Components.Scanner,
		"reporter":   cfg.Components.Reporter,
	})

	t := logger.Start("pipeline", "run")
	h, err := pipelineRun(context.Background(), comp, rset, logger)
	if err != nil {
		code := diag.Classify(err)
		logger.Error("pipeline", string(code), "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		fprintf(stderr, "运行失败: %v\n", err)
		term.RunFinish(false, time.Since(start))
		return diag.ExitCode(err)
	}
	term.RunFinish(true, time.Since(start))

	if err := report(comp, cfg.Output, h.Entries()); err != nil {
		logger.Error("reporter", string(diag.Classify(err)), "report", &start)
		diag.IncOp("reporter", "error", "error")
		fprintf(stderr, "输出失败: %v\n", err)
		return diag.ExitCode(err)
	}
	t.Finish("run", h.Total())
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	return diag.ExitOK
}

// report 写出报告：output 为空或 "-" 时写 stdout，否则经 Writer 整体落盘。
func report(comp pipeline.Components, output string, entries []contract.Entry) error {
	if output == "" || output == "-" {
		return comp.Reporter.Report(stdout, entries)
	}
	var buf bytes.Buffer
	if err := comp.Reporter.Report(&buf, entries); err != nil {
		return err
	}
	return comp.Writer.Write(context.Background(), output, &buf)
}

// exitFor 将配置阶段错误映射为退出码：来源错误 3，其余按运行期规则。
func exitFor(err error) int {
	if errors.Is(err, cfgpkg.ErrSource) {
		return diag.ExitConfigSource
	}
	return diag.ExitCode(err)
}

// visited 返回命令行中显式出现的旗标名集合。
func visited() map[string]bool {
	m := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { m[f.Name] = true })
	return m
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = stderr.Write([]byte("\n"))
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, _ = f.Write([]byte("\n"))
	return nil
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 规则：
// - 忽略不存在的文件；无法读取时返回错误（但调用处可忽略）。
// - 跳过空行与以 # 开头的行；支持可选的前缀 "export "。
// - 仅按首个 '=' 分割；key 与 value 去首尾空白；成对的单/双引号去除外层。
// - 不覆盖已存在的环境变量（保持系统/调用者优先）。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if len(val) >= 2 {
			if (val[0] == '\'' && val[len(val)-1] == '\'') || (val[0] == '"' && val[len(val)-1] == '"') {
				val = val[1 : len(val)-1]
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

// normalizeInitArg: 允许 --init-config 在未提供路径值时采用默认值当前目录 "."。
//
//	--init-config                => 等价于 --init-config .
//	--init-config=out
//	--init-config out
func normalizeInitArg() {
	args := os.Args
	if len(args) <= 1 {
		return
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	for i := 1; i < len(args); i++ {
		a := args[i]
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
			}
		}
	}
	os.Args = out
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
func writeDotEnv(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(cfgpkg.EnvTemplate())
	return err
}
