package contract

import "context"

// Counter: 共享计数上下文的唯一变更入口。
// 实现需保证并发安全；调用方逐字节调用。
type Counter interface {
	Increment(c byte)
}

// Scanner: 计数 worker。
// 约束：
// 1) 每次调用独立打开文件句柄，不与其他 worker 共享读位置；
// 2) 按分配顺序处理块，块内按文件顺序逐字节读取；
// 3) 读错误（非 EOF）直接上抛，不重试；
// 4) 不在内部起并发。
type Scanner interface {
	Scan(ctx context.Context, path string, a Assignment, c Counter) error
}
