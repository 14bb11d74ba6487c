package histogram

import (
	"sync"
	"testing"

	"lettercount/pkg/contract"
)

// UT-HIST-01: 初始为 26 个零，顺序 a..z
func TestNewEntries(t *testing.T) {
	h := New()
	es := h.Entries()
	if len(es) != 26 {
		t.Fatalf("应有 26 项, got %d", len(es))
	}
	for i, e := range es {
		if e.Letter != byte('a'+i) || e.Count != 0 {
			t.Fatalf("第 %d 项错误: %+v", i, e)
		}
	}
}

// UT-HIST-02: 大小写折叠与非字母忽略
func TestIncrementFold(t *testing.T) {
	h := New()
	for _, c := range []byte("aAzZ") {
		h.Increment(c)
	}
	if h.Count('a') != 2 || h.Count('Z') != 2 {
		t.Fatalf("折叠错误: a=%d z=%d", h.Count('a'), h.Count('z'))
	}
	for c := 0; c < 256; c++ {
		b := byte(c)
		if ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') {
			continue
		}
		h.Increment(b)
	}
	if h.Total() != 4 {
		t.Fatalf("非字母字节不应计数, total=%d", h.Total())
	}
	if h.Count('1') != 0 {
		t.Fatalf("非字母 Count 应为 0")
	}
}

func TestMergeReset(t *testing.T) {
	a, b := New(), New()
	a.Increment('x')
	b.Increment('x')
	b.Increment('y')
	a.Merge(b)
	a.Merge(nil)
	if a.Count('x') != 2 || a.Count('y') != 1 {
		t.Fatalf("merge 错误: %+v", a.Entries())
	}
	a.Reset()
	if a.Total() != 0 {
		t.Fatalf("reset 后应为 0")
	}
}

// UT-HIST-03: 并发递增结果与顺序无关
func TestSharedConcurrent(t *testing.T) {
	s := NewShared(nil)
	var c contract.Counter = s
	const workers, per = 8, 1000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				c.Increment("Ab"[i%2])
			}
		}()
	}
	wg.Wait()
	snap := s.Snapshot()
	if snap.Count('a') != workers*per/2 || snap.Count('b') != workers*per/2 {
		t.Fatalf("并发计数错误: a=%d b=%d", snap.Count('a'), snap.Count('b'))
	}
	// 快照与后续写入隔离
	s.Increment('a')
	if snap.Count('a') != workers*per/2 {
		t.Fatalf("快照不应随共享状态变化")
	}
}
