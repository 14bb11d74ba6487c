package filesystem

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lettercount/pkg/contract"
)

func noTmp(t *testing.T, dir string) {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("tmp file not cleaned: %s", e.Name())
		}
	}
}

// TestWriteAtomic 原子写入
func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.txt")
	w := New(nil)
	if err := w.Write(context.Background(), dest, bytes.NewBufferString("a:1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil || string(b) != "a:1\n" {
		t.Fatalf("unexpected file %v %q", err, string(b))
	}
	noTmp(t, dir)
}

// 当目标已存在时，原子写应替换为新内容。
func TestWriteAtomicReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.txt")
	w := New(&Options{})
	for _, v := range []string{"v1", "v2"} {
		if err := w.Write(context.Background(), dest, bytes.NewBufferString(v)); err != nil {
			t.Fatalf("write %s: %v", v, err)
		}
	}
	b, _ := os.ReadFile(dest)
	if string(b) != "v2" {
		t.Fatalf("expect replaced content v2, got %q", string(b))
	}
	noTmp(t, dir)
}

// TestWriteNonAtomic 非原子写入，自动创建父目录
func TestWriteNonAtomic(t *testing.T) {
	dir := t.TempDir()
	a := false
	w := New(&Options{Atomic: &a})
	dest := filepath.Join(dir, "sub", "out.txt")
	if err := w.Write(context.Background(), dest, bytes.NewBufferString("v")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b, err := os.ReadFile(dest); err != nil || string(b) != "v" {
		t.Fatalf("file not created: %v %q", err, b)
	}
}

// TestWriteEmptyPath 空路径
func TestWriteEmptyPath(t *testing.T) {
	err := New(nil).Write(context.Background(), " ", strings.NewReader("x"))
	var ioe *contract.IOError
	if !errors.As(err, &ioe) || ioe.Op != contract.OpWrite {
		t.Fatalf("expect write IOError, got %v", err)
	}
}

// TestWriteToDirectory 目标为目录时报 write 错误
func TestWriteToDirectory(t *testing.T) {
	dir := t.TempDir()
	a := false
	err := New(&Options{Atomic: &a}).Write(context.Background(), dir, strings.NewReader("x"))
	var ioe *contract.IOError
	if !errors.As(err, &ioe) || ioe.Op != contract.OpWrite || ioe.Path != dir {
		t.Fatalf("expect write IOError, got %v", err)
	}
}

// TestWriteCtxCancel 上下文取消
func TestWriteCtxCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(nil).Write(ctx, filepath.Join(dir, "a.txt"), strings.NewReader("data"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expect ctx error, got %v", err)
	}
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

// TestWriteAtomicCopyError 原子写入时拷贝失败，不残留临时文件
func TestWriteAtomicCopyError(t *testing.T) {
	dir := t.TempDir()
	err := New(nil).Write(context.Background(), filepath.Join(dir, "a.txt"), errReader{})
	if !errors.Is(err, contract.ErrIO) {
		t.Fatalf("expect io error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp files left %v", entries)
	}
}

// TestReaderWithCtxCancel reader 在读取前取消
func TestReaderWithCtxCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := readerWithCtx(ctx, strings.NewReader("data"))
	cancel()
	if _, err := r.Read(make([]byte, 1)); err == nil {
		t.Fatalf("expect ctx error")
	}
}
