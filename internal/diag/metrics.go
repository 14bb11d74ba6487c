package diag

import "expvar"

// 最小指标：经 expvar 发布（/debug/vars 可见，若进程挂载了 HTTP 处理器）。
// - lettercount_op_total{comp.stage.result}
// - lettercount_error_total{comp.code}
// - lettercount_op_duration_ms{comp.stage}（累计毫秒）
var (
	opTotal    = expvar.NewMap("lettercount_op_total")
	errorTotal = expvar.NewMap("lettercount_error_total")
	opDuration = expvar.NewMap("lettercount_op_duration_ms")
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) { opTotal.Add(comp+"."+stage+"."+result, 1) }

// IncError 按分类累加错误计数。
func IncError(comp, code string) { errorTotal.Add(comp+"."+code, 1) }

// ObserveDuration 累计阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) { opDuration.Add(comp+"."+stage, durMS) }

// OpCount 读取操作计数（测试与诊断用）。
func OpCount(comp, stage, result string) int64 { return read(opTotal, comp+"."+stage+"."+result) }

// ErrorCount 读取错误计数。
func ErrorCount(comp, code string) int64 { return read(errorTotal, comp+"."+code) }

func read(m *expvar.Map, key string) int64 {
	if v, ok := m.Get(key).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
