package jsonarray

import (
	"encoding/json"
	"io"

	"lettercount/pkg/contract"
)

// Options 控制 JSON 报告的排版。
type Options struct {
	// Indent 为 true 时按两个空格缩进输出。
	Indent bool `json:"indent"`
}

// JSON 将直方图写为有序数组：[{"letter":"a","count":N},...]。
type JSON struct {
	indent bool
}

type item struct {
	Letter string `json:"letter"`
	Count  int64  `json:"count"`
}

// New 创建 JSON 报告器。
func New(opts *Options) *JSON {
	j := &JSON{}
	if opts != nil {
		j.indent = opts.Indent
	}
	return j
}

// Report 写出 26 项 JSON 数组（末尾换行）。
func (j *JSON) Report(w io.Writer, entries []contract.Entry) error {
	if err := contract.ValidateEntries(entries); err != nil {
		return err
	}
	arr := make([]item, len(entries))
	for i, e := range entries {
		arr[i] = item{Letter: string(e.Letter), Count: e.Count}
	}
	enc := json.NewEncoder(w)
	if j.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(arr); err != nil {
		return &contract.IOError{Op: contract.OpWrite, Err: err}
	}
	return nil
}

var _ contract.Reporter = (*JSON)(nil)
