package filesystem

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"lettercount/pkg/contract"
)

// Options 为 FileSystem Scanner 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	// 每块的实际读取量受块长度限制，不会越过块尾预读。
	BufSize int `json:"buf_size"`
}

// FileSystem 基于本地文件的计数 worker。
type FileSystem struct {
	bufSize int
}

// New 创建 FileSystem Scanner。
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{bufSize: b}
}

// Scan 独立打开 path，按分配顺序逐块 seek 并逐字节读取 ReadLen 个字节，
// 每个字节经 c.Increment 计入共享直方图。块内遇到 EOF 即结束该块。
// ctx 仅在块之间检查；open/seek/read 失败以 *contract.IOError 返回。
func (s *FileSystem) Scan(ctx context.Context, path string, a contract.Assignment, c contract.Counter) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if len(a.Blocks) == 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return &contract.IOError{Op: contract.OpOpen, Path: path, Err: unwrapPath(err)}
	}
	defer f.Close()

	// 复用同一 LimitedReader 与 bufio.Reader，块间不再分配
	lr := &io.LimitedReader{R: f}
	br := bufio.NewReaderSize(lr, s.bufSize)
	for _, b := range a.Blocks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := f.Seek(b.Offset, io.SeekStart); err != nil {
			return &contract.IOError{Op: contract.OpSeek, Path: path, Err: unwrapPath(err)}
		}
		lr.N = b.ReadLen()
		br.Reset(lr)
		for i := int64(0); i < b.ReadLen(); i++ {
			ch, err := br.ReadByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return &contract.IOError{Op: contract.OpRead, Path: path, Err: unwrapPath(err)}
			}
			c.Increment(ch)
		}
	}
	return nil
}

func unwrapPath(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

var _ contract.Scanner = (*FileSystem)(nil)
