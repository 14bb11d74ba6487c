package text

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"

	"lettercount/pkg/contract"
)

// Options: 预留占位，文本报告无需配置。
type Options struct{}

type reporter struct{}

// New 从原样 JSON Options 创建文本报告器（当前忽略选项）。
func New(raw json.RawMessage) (contract.Reporter, error) {
	_ = raw
	return &reporter{}, nil
}

// Report 逐行写出 "<letter>:<count>"，共 26 行，'a'..'z' 顺序。
func (r *reporter) Report(w io.Writer, entries []contract.Entry) error {
	if err := contract.ValidateEntries(entries); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, e := range entries {
		buf = append(buf[:0], e.Letter, ':')
		buf = strconv.AppendInt(buf, e.Count, 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return &contract.IOError{Op: contract.OpWrite, Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &contract.IOError{Op: contract.OpWrite, Err: err}
	}
	return nil
}

var _ contract.Reporter = (*reporter)(nil)
