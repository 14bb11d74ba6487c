// Package histogram 提供 26 字母计数器及其互斥保护的共享视图。
package histogram

import (
	"sync"

	"lettercount/pkg/contract"
)

// Histogram 按 letter-'a' 下标保存计数；顺序固定为 'a'..'z'。
// 非并发安全，共享时经由 Shared 访问。
type Histogram struct {
	counts [contract.AlphabetSize]int64
}

// New 返回全零直方图。
func New() *Histogram { return &Histogram{} }

// Increment 对 c 做 ASCII 小写折叠；不在 'a'..'z' 的字节静默忽略。
func (h *Histogram) Increment(c byte) {
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	if c < 'a' || c > 'z' {
		return
	}
	h.counts[c-'a']++
}

// Count 返回字母的计数（大小写不敏感）；非字母返回 0。
func (h *Histogram) Count(letter byte) int64 {
	if 'A' <= letter && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	if letter < 'a' || letter > 'z' {
		return 0
	}
	return h.counts[letter-'a']
}

// Total 返回所有字母计数之和。
func (h *Histogram) Total() int64 {
	var n int64
	for _, c := range h.counts {
		n += c
	}
	return n
}

// Entries 返回 26 项有序视图。
func (h *Histogram) Entries() []contract.Entry {
	out := make([]contract.Entry, contract.AlphabetSize)
	for i := range out {
		out[i] = contract.Entry{Letter: contract.Letters[i], Count: h.counts[i]}
	}
	return out
}

// Merge 将 other 的计数累加到 h。
func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	for i, c := range other.counts {
		h.counts[i] += c
	}
}

// Reset 清零全部计数。
func (h *Histogram) Reset() { h.counts = [contract.AlphabetSize]int64{} }

// Shared: 所有 worker 可见的 (Histogram, 互斥锁) 二元组。
// 每次 Increment 只持锁处理一个字节。
type Shared struct {
	mu sync.Mutex
	h  *Histogram
}

// NewShared 包装 h；h 为 nil 时新建。
func NewShared(h *Histogram) *Shared {
	if h == nil {
		h = New()
	}
	return &Shared{h: h}
}

// Increment 实现 contract.Counter。
func (s *Shared) Increment(c byte) {
	s.mu.Lock()
	s.h.Increment(c)
	s.mu.Unlock()
}

// Snapshot 在锁内复制当前计数。
func (s *Shared) Snapshot() *Histogram {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.h
	return &cp
}

var _ contract.Counter = (*Shared)(nil)
