package contract

import (
	"context"
	"io"
)

// Writer 将报告字节整体落盘到 path（覆盖已有文件）。
// 失败以 *IOError{Op: OpWrite} 返回。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader) error
}
