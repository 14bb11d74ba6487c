package contract

import "fmt"

// 校验库函数（纯函数，无 I/O）：
// - ValidateLayout:    块序列从 0 起连续排布，读取区间恰好覆盖 [0, fileSize)；
// - ValidatePartition: 轮转分配完整，每个块恰属于一个 worker 且保持相对顺序。

// ValidateLayout 按边界规则逐块复核规划结果。
func ValidateLayout(fileSize, blockSize int64, blocks []Block) error {
	if blockSize <= 0 {
		return fmt.Errorf("%w: block size must be > 0", ErrInvalidConfig)
	}
	if fileSize < 0 {
		return fmt.Errorf("%w: negative file size %d", ErrInvariantViolation, fileSize)
	}
	want := fileSize / blockSize
	if fileSize%blockSize > 0 {
		want++
	}
	if int64(len(blocks)) != want {
		return fmt.Errorf("%w: expect %d blocks, got %d", ErrInvariantViolation, want, len(blocks))
	}
	next := int64(0)
	for i, b := range blocks {
		if b.Offset != next {
			return fmt.Errorf("%w: block %d offset %d, expect %d", ErrInvariantViolation, i, b.Offset, next)
		}
		if b.Offset+blockSize > fileSize {
			// 余数块必须是最后一块
			if i != len(blocks)-1 {
				return fmt.Errorf("%w: short block %d is not last", ErrInvariantViolation, i)
			}
			if b.Size != fileSize-b.Offset {
				return fmt.Errorf("%w: tail block size %d, expect %d", ErrInvariantViolation, b.Size, fileSize-b.Offset)
			}
			continue
		}
		if b.Size != blockSize-1 {
			return fmt.Errorf("%w: block %d size %d, expect %d", ErrInvariantViolation, i, b.Size, blockSize-1)
		}
		next += blockSize
	}
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		covered := last.End()
		if covered > fileSize {
			covered = fileSize
		}
		if covered != fileSize {
			return fmt.Errorf("%w: blocks cover [0,%d), file size %d", ErrInvariantViolation, covered, fileSize)
		}
	}
	return nil
}

// ValidatePartition 校验 as 是 blocks 在 threads 个 worker 上的轮转分配。
func ValidatePartition(blocks []Block, threads int, as []Assignment) error {
	if threads <= 0 {
		return fmt.Errorf("%w: threads must be > 0", ErrInvalidConfig)
	}
	if len(as) != threads {
		return fmt.Errorf("%w: expect %d assignments, got %d", ErrInvariantViolation, threads, len(as))
	}
	seen := 0
	for w, a := range as {
		if a.Worker != w {
			return fmt.Errorf("%w: assignment %d labelled worker %d", ErrInvariantViolation, w, a.Worker)
		}
		for j, b := range a.Blocks {
			idx := j*threads + w
			if idx >= len(blocks) || blocks[idx] != b {
				return fmt.Errorf("%w: worker %d slot %d does not hold block %d", ErrInvariantViolation, w, j, idx)
			}
			seen++
		}
	}
	if seen != len(blocks) {
		return fmt.Errorf("%w: %d of %d blocks assigned", ErrInvariantViolation, seen, len(blocks))
	}
	return nil
}

// ValidateEntries 校验直方图视图：恰 26 项、'a'..'z' 顺序、计数非负。
func ValidateEntries(entries []Entry) error {
	if len(entries) != AlphabetSize {
		return fmt.Errorf("%w: expect %d entries, got %d", ErrInvariantViolation, AlphabetSize, len(entries))
	}
	for i, e := range entries {
		if e.Letter != Letters[i] {
			return fmt.Errorf("%w: entry %d letter %q", ErrInvariantViolation, i, e.Letter)
		}
		if e.Count < 0 {
			return fmt.Errorf("%w: negative count for %q", ErrInvariantViolation, e.Letter)
		}
	}
	return nil
}
