package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"lettercount/pkg/contract"
)

// UT-DIAG-01: 日志轮转写入
func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 30)
	if _, err := w.Write([]byte("first line that is very long\n")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("第二次写入失败: %v", err)
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	defer w.Close()
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("应存在轮转文件, got %d", len(files))
	}
	hasCurrent := false
	for _, f := range files {
		if f.Name() == "lettercount-current.txt" {
			hasCurrent = true
		}
	}
	if !hasCurrent {
		t.Fatalf("缺少 current 文件")
	}
}

// 直接覆盖 ensureOpen 与 rotate 内部分支
func TestRotatingFileEnsureAndRotate(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 0)
	if w.maxBytes != 10*1024*1024 {
		t.Fatalf("默认上限错误: %d", w.maxBytes)
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("未打开时 Sync 应为 no-op: %v", err)
	}
	if err := w.ensureOpen(); err != nil {
		t.Fatalf("ensureOpen: %v", err)
	}
	if err := w.rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(ents) < 2 {
		t.Fatalf("expect >=2 files, got %d", len(ents))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// UT-DIAG-02: 指标计数
func TestMetrics(t *testing.T) {
	before := OpCount("comp", "stage", "success")
	IncOp("comp", "stage", "success")
	IncError("comp", "io")
	ObserveDuration("comp", "stage", 3)
	if OpCount("comp", "stage", "success") != before+1 {
		t.Fatalf("op 计数未累加")
	}
	if ErrorCount("comp", "io") < 1 {
		t.Fatalf("error 计数未累加")
	}
	if OpCount("none", "x", "y") != 0 {
		t.Fatalf("未知键应为 0")
	}
}

// 补充覆盖: 错误分类
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{context.Canceled, CodeCancel},
		{fmt.Errorf("x: %w", contract.ErrInvalidConfig), CodeInvalidConfig},
		{contract.ErrConcurrency, CodeConcurrency},
		{contract.ErrInvariantViolation, CodeInvariant},
		{&contract.IOError{Op: contract.OpRead, Err: errors.New("x")}, CodeIO},
		{&fs.PathError{Op: "open", Path: "/", Err: errors.New("x")}, CodeIO},
		{errors.New("other"), CodeUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v)=%s want %s", c.err, got, c.want)
		}
	}
}

// 退出码：每类失败一个值
func TestExitCode(t *testing.T) {
	io := func(op string) error {
		return fmt.Errorf("pipeline: %w", &contract.IOError{Op: op, Err: errors.New("x")})
	}
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{contract.ErrInvalidConfig, ExitInvalidConfig},
		{contract.ErrConcurrency, ExitConcurrency},
		{contract.ErrInvariantViolation, ExitConcurrency},
		{io(contract.OpStat), ExitStat},
		{io(contract.OpOpen), ExitOpen},
		{io(contract.OpSeek), ExitRead},
		{io(contract.OpRead), ExitRead},
		{io(contract.OpWrite), ExitWrite},
		{&fs.PathError{Op: "read", Path: "x", Err: errors.New("x")}, ExitRead},
		{errors.New("other"), 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Fatalf("ExitCode(%v)=%d want %d", c.err, got, c.want)
		}
	}
}

// 补充覆盖: Logger 事件结构与级别过滤
func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("corr", "info", zapcore.AddSync(&buf))
	timer := l.Start("pipeline", "run")
	timer.Finish("run", 3)
	l.StartWorker("worker", "scan", 2).Finish("scan", 5)
	l.StartWithKV("planner", "layout", map[string]string{"blocks": "4"}).Finish("layout", 4)
	start := time.Now()
	l.Error("pipeline", "io", "first error", &start)
	l.ErrorWorker("worker", "io", "scan failed", nil, 1)
	l.InfoFinish("pipeline", "done", start, 1)
	l.DebugStart("config", "effective", map[string]string{"k": "v"}) // info 级别下应被过滤

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 9 {
		t.Fatalf("期望 9 行日志, got %d: %s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("非 JSON 日志: %v", err)
	}
	if ev["corr_id"] != "corr" || ev["comp"] != "pipeline" || ev["stage"] != "finish" || ev["level"] != "info" {
		t.Fatalf("字段错误: %v", ev)
	}
	if ev["count"] != float64(3) {
		t.Fatalf("count 错误: %v", ev["count"])
	}
	if _, ok := ev["ts"]; !ok {
		t.Fatalf("缺少 ts")
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil || ev["worker"] != float64(2) {
		t.Fatalf("worker 字段错误: %v %v", err, ev)
	}
	if !strings.Contains(lines[4], `"kv":{"blocks":"4"}`) {
		t.Fatalf("kv 字段缺失: %s", lines[4])
	}
	if !strings.Contains(lines[6], `"stage":"error"`) || !strings.Contains(lines[6], `"code":"io"`) {
		t.Fatalf("error 事件错误: %s", lines[6])
	}
	if strings.Contains(buf.String(), "effective") {
		t.Fatalf("debug 事件不应输出")
	}
}

// nil Logger 为 no-op
func TestLoggerNil(t *testing.T) {
	var l *Logger
	l.Start("c", "m").Finish("m", 1)
	l.Error("c", "x", "m", nil)
	l.DebugStart("c", "m", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

// NewLogger 写入默认 logs 目录
func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(cwd)
	l := NewLogger("corr", "debug")
	l.DebugStart("config", "effective", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile("logs/lettercount-current.txt")
	if err != nil || !strings.Contains(string(b), `"msg":"effective"`) {
		t.Fatalf("日志文件内容错误: %v %s", err, b)
	}
}

// 补充覆盖: NowUTC
func TestNowUTC(t *testing.T) {
	if NowUTC() == "" {
		t.Fatalf("应返回时间字符串")
	}
}

// UT-DIAG-03: 终端（非 TTY）关键节点输出
func TestTerminalNonTTYFlow(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	if term.isTTY {
		t.Fatalf("expect non-tty")
	}
	term.RunStart(2, 4, "docs/input.txt")
	term.WorkerFinish(0, 2, true)
	term.WorkerFinish(1, 2, false)
	term.RunFinish(true, 1300*time.Millisecond)

	out := sb.String()
	if strings.Contains(out, "\r") {
		t.Fatalf("non-tty should not contain carriage returns: %q", out)
	}
	for _, want := range []string{
		"[run] input.txt | 线程=2 | 块=4",
		"[worker] #0 | 块 2 | done",
		"[worker] #1 | 块 2 | fail",
		"[ok] 全部完成 | worker 2/2 | 总用时 1.3s",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

// TTY 模式：进度行以 \r 覆盖
func TestTerminalTTYInline(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	term.isTTY = true
	term.RunStart(1, 1, "a.txt")
	term.WorkerFinish(0, 1, true)
	term.RunFinish(false, 20*time.Millisecond)
	out := sb.String()
	if !strings.Contains(out, "\r[run] a.txt | 进度 1/1") {
		t.Fatalf("缺少进度行: %q", out)
	}
	if !strings.Contains(out, "[fail] 全部完成 | worker 1/1 | 总用时 20ms") {
		t.Fatalf("缺少结束行: %q", out)
	}
}

// 禁用与 nil 终端为 no-op
func TestTerminalDisabled(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, false)
	term.RunStart(1, 1, "a")
	term.WorkerFinish(0, 1, true)
	term.RunFinish(true, time.Second)
	if sb.Len() != 0 {
		t.Fatalf("禁用时不应输出: %q", sb.String())
	}
	var nilTerm *Terminal
	nilTerm.RunStart(1, 1, "a")
	nilTerm.RunFinish(true, 0)
	SetTerminal(term)
	if GetTerminal() != term {
		t.Fatalf("全局终端未设置")
	}
	SetTerminal(nil)
}

func TestShortenBase(t *testing.T) {
	if got := shortenBase("dir/abcdefghij.txt", 5); got != "abcd…" {
		t.Fatalf("截断错误: %q", got)
	}
	if got := shortenBase("x", 0); got != "" {
		t.Fatalf("max=0 应为空")
	}
}
