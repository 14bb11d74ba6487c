package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"lettercount/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总；退出码见 ExitCode。
type Code string

const (
	CodeUnknown       Code = "unknown"
	CodeInvalidConfig Code = "invalid_config"
	CodeInvariant     Code = "invariant"
	CodeConcurrency   Code = "concurrency"
	CodeCancel        Code = "cancel"
	CodeIO            Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrInvalidConfig) {
		return CodeInvalidConfig
	}
	if errors.Is(err, contract.ErrConcurrency) {
		return CodeConcurrency
	}
	if errors.Is(err, contract.ErrInvariantViolation) {
		return CodeInvariant
	}
	if errors.Is(err, contract.ErrIO) {
		return CodeIO
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// 进程退出码：每类失败一个值，仅由 cmd 层使用。
const (
	ExitOK            = 0
	ExitInvalidConfig = 1
	ExitUsage         = 2
	ExitConfigSource  = 3
	ExitConcurrency   = 4
	ExitStat          = 20
	ExitOpen          = 21
	ExitRead          = 22
	ExitWrite         = 23
)

// ExitCode 将运行期错误映射为退出码；未识别的错误归 1。
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ioe *contract.IOError
	if errors.As(err, &ioe) {
		switch ioe.Op {
		case contract.OpStat:
			return ExitStat
		case contract.OpOpen:
			return ExitOpen
		case contract.OpSeek, contract.OpRead:
			return ExitRead
		case contract.OpWrite:
			return ExitWrite
		}
	}
	switch Classify(err) {
	case CodeInvalidConfig:
		return ExitInvalidConfig
	case CodeConcurrency, CodeInvariant:
		return ExitConcurrency
	case CodeIO:
		return ExitRead
	}
	return 1
}

// NowUTC 返回 RFC3339 UTC 时间字符串。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
