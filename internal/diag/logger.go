package diag

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 为结构化日志器：单行 JSON（zap JSON encoder），默认写入 logs/ 并按大小轮转。
// 事件字段：level, ts, corr_id, comp, stage(start|finish|error), code, dur_ms, count, worker, kv, msg。
// nil *Logger 的所有方法均为 no-op。
type Logger struct {
	z    *zap.Logger
	sink *RotatingFile
}

// NewLogger 通过配置的 level 初始化，并将日志写入默认目录 logs，10MiB 轮转。
func NewLogger(corrID, level string) *Logger {
	sink := NewRotatingFile("logs", 10*1024*1024)
	l := newLogger(corrID, level, sink)
	l.sink = sink
	return l
}

func newLogger(corrID, level string, ws zapcore.WriteSyncer) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.LevelKey = "level"
	enc.MessageKey = "msg"
	enc.StacktraceKey = ""
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, parseLevel(strings.TrimSpace(level)))
	// sink 写失败时 zap 将错误写到 stderr
	z := zap.New(core, zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(os.Stderr))))
	return &Logger{z: z.With(zap.String("corr_id", corrID))}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// noWorker 表示事件不属于某个 worker。
const noWorker = -1

func fields(comp, stage string, worker int, kv map[string]string) []zap.Field {
	fs := make([]zap.Field, 0, 4)
	fs = append(fs, zap.String("comp", comp), zap.String("stage", stage))
	if worker >= 0 {
		fs = append(fs, zap.Int("worker", worker))
	}
	if len(kv) > 0 {
		fs = append(fs, zap.Any("kv", kv))
	}
	return fs
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.start(comp, msg, noWorker, nil)
}

// StartWorker 记录带 worker 编号的 start。
func (l *Logger) StartWorker(comp, msg string, worker int) *Timer {
	return l.start(comp, msg, worker, nil)
}

// StartWithKV 记录带键值的 start。
func (l *Logger) StartWithKV(comp, msg string, kv map[string]string) *Timer {
	return l.start(comp, msg, noWorker, kv)
}

func (l *Logger) start(comp, msg string, worker int, kv map[string]string) *Timer {
	if l == nil {
		return nil
	}
	l.z.Info(msg, fields(comp, "start", worker, kv)...)
	return &Timer{l: l, comp: comp, worker: worker, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWorker(comp, code, msg, durSince, noWorker)
}

// ErrorWorker 记录带 worker 编号的 error 事件。
func (l *Logger) ErrorWorker(comp, code, msg string, durSince *time.Time, worker int) {
	if l == nil {
		return
	}
	fs := fields(comp, "error", worker, nil)
	if code != "" {
		fs = append(fs, zap.String("code", code))
	}
	if durSince != nil {
		fs = append(fs, zap.Int64("dur_ms", time.Since(*durSince).Milliseconds()))
	}
	l.z.Error(msg, fs...)
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	if l == nil {
		return
	}
	fs := fields(comp, "finish", noWorker, nil)
	fs = append(fs, zap.Int64("dur_ms", time.Since(start).Milliseconds()), zap.Int64("count", count))
	l.z.Info(msg, fs...)
}

// DebugStart 输出调试级别的 start 类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	if l == nil {
		return
	}
	l.z.Debug(msg, fields(comp, "start", noWorker, kv)...)
}

// Close 刷新并关闭日志文件。
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	worker int
	t0     time.Time
}

// Finish 记录 finish；count 为该阶段处理量（块数/字节数等）。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	fs := fields(t.comp, "finish", t.worker, nil)
	fs = append(fs, zap.Int64("dur_ms", time.Since(t.t0).Milliseconds()), zap.Int64("count", count))
	t.l.z.Info(msg, fs...)
}
