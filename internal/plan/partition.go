package plan

import (
	"fmt"

	"lettercount/pkg/contract"
)

// Partition 将块 i 分配给 worker i%threads，worker 内保持相对顺序。
// 所有块一次性拷入同一 arena，各 Assignment 为容量受限的切片视图；
// 块数少于 threads 时多余 worker 得到空列表。
func Partition(blocks []contract.Block, threads int) ([]contract.Assignment, error) {
	per, err := BlocksPerWorker(threads, int64(len(blocks)))
	if err != nil {
		return nil, err
	}
	n := len(blocks)
	arena := make([]contract.Block, n)
	out := make([]contract.Assignment, threads)
	start := 0
	for w := 0; w < threads; w++ {
		cnt := n / threads
		if w < n%threads {
			cnt++
		}
		if int64(cnt) > per {
			return nil, fmt.Errorf("%w: worker %d gets %d blocks, capacity %d", contract.ErrInvariantViolation, w, cnt, per)
		}
		seg := arena[start : start+cnt : start+cnt]
		for j := range seg {
			seg[j] = blocks[j*threads+w]
		}
		out[w] = contract.Assignment{Worker: w, Blocks: seg}
		start += cnt
	}
	return out, nil
}
