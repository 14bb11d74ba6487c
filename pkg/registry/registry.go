package registry

import (
	"bytes"
	"encoding/json"

	"lettercount/pkg/contract"
	rjson "lettercount/plugins/reporter/jsonarray"
	rtext "lettercount/plugins/reporter/text"
	sfs "lettercount/plugins/scanner/filesystem"
	wfs "lettercount/plugins/writer/filesystem"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewScanner 工厂签名：接收原样 JSON Options。
type NewScanner func(raw json.RawMessage) (contract.Scanner, error)

// NewReporter 工厂签名：接收原样 JSON Options。
type NewReporter func(raw json.RawMessage) (contract.Reporter, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Scanner 工厂注册表（显式、零反射）。
var Scanner = map[string]NewScanner{
	// fs: 按块 seek + 逐字节读取的文件系统计数 worker
	"fs": func(raw json.RawMessage) (contract.Scanner, error) {
		var opts sfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return sfs.New(&opts), nil
	},
}

// Reporter 工厂注册表。
var Reporter = map[string]NewReporter{
	// text: 每行 <letter>:<count>
	"text": func(raw json.RawMessage) (contract.Reporter, error) {
		var opts rtext.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rtext.New(raw)
	},
	// json: [{"letter":"a","count":N},...]
	"json": func(raw json.RawMessage) (contract.Reporter, error) {
		var opts rjson.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rjson.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（默认原子替换）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts), nil
	},
}
