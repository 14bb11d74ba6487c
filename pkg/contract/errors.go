package contract

import "errors"

// 最小错误分类（哨兵）。I/O 类错误见 IOError。
var (
	// ErrInvalidConfig: 线程数/块大小非正、缺少输入文件等；在任何工作开始前拒绝。
	ErrInvalidConfig = errors.New("invalid config")
	// ErrConcurrency: worker 级故障（panic 等），视为进程级不可恢复错误。
	ErrConcurrency = errors.New("concurrency failure")
	// ErrInvariantViolation: 领域不变量违例（块覆盖/分配完整性）。
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrIO: 所有 *IOError 均匹配该哨兵（errors.Is）。
	ErrIO = errors.New("io failure")
)

// I/O 操作名，写入 IOError.Op，供退出码映射与诊断使用。
const (
	OpStat  = "stat"
	OpOpen  = "open"
	OpSeek  = "seek"
	OpRead  = "read"
	OpWrite = "write"
)

// IOError 记录失败的 I/O 操作与路径；错误文本即为面向用户的诊断信息。
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrIO) 对任意 *IOError 成立。
func (e *IOError) Is(target error) bool { return target == ErrIO }
