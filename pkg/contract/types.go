package contract

// Letters 为直方图的固定字母表（顺序即输出顺序）。
const Letters = "abcdefghijklmnopqrstuvwxyz"

// AlphabetSize 固定为 26。
const AlphabetSize = len(Letters)

// Entry: 直方图的一项（字母 → 计数）。
type Entry struct {
	Letter byte
	Count  int64
}

// Block: 输入文件中的一段连续字节区间。
// 约束：
// - Offset 自 0 起顺序排布；
// - 非末块 Size = blockSize-1（历史边界规则，保留），读取 Size+1 字节；
// - 末块 Size = fileSize-Offset，读取到 EOF 为止。
type Block struct {
	Offset int64
	Size   int64
}

// ReadLen 返回 worker 对该块需要读取的字节数（含闭区间的 +1）。
func (b Block) ReadLen() int64 { return b.Size + 1 }

// End 返回读取区间的开区间上界（可能越过文件末尾一字节）。
func (b Block) End() int64 { return b.Offset + b.ReadLen() }

// Assignment: 单个 worker 的有序块列表（只读）。
type Assignment struct {
	Worker int
	Blocks []Block
}

// Bytes 返回该分配计划读取的字节总数（按 ReadLen 计）。
func (a Assignment) Bytes() int64 {
	var n int64
	for _, b := range a.Blocks {
		n += b.ReadLen()
	}
	return n
}
