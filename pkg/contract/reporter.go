package contract

import "io"

// Reporter: 将最终直方图（26 项，'a'..'z' 顺序）写出。
// 写失败以 *IOError{Op: OpWrite} 上抛。
type Reporter interface {
	Report(w io.Writer, entries []Entry) error
}
