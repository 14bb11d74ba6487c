// Package plan 计算文件的块布局与每个 worker 的块分配。
//
// 边界规则（保留历史行为）：块自偏移 0 顺序排布，游标 count 初值 0。
// 若 count+blockSize > fileSize，该块 Size = fileSize-count（余数块，覆盖至文件尾），
// count 不再前进；否则 Size = blockSize-1，count += blockSize。
// 非末块的 Size 比名义块大小少 1，worker 按 Size+1 读取，覆盖结果仍然无缝无重叠。
package plan

import (
	"errors"
	"fmt"
	"os"

	"lettercount/pkg/contract"
)

var errNotRegular = errors.New("not a regular file")

// FileSize 返回 path 的字节长度；无法 stat 或不是常规文件时返回 *contract.IOError。
func FileSize(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, &contract.IOError{Op: contract.OpStat, Path: path, Err: unwrapPath(err)}
	}
	if !st.Mode().IsRegular() {
		return 0, &contract.IOError{Op: contract.OpStat, Path: path, Err: errNotRegular}
	}
	return st.Size(), nil
}

// BlockCount = ceil(fileSize/blockSize)；fileSize==0 时为 0。
func BlockCount(fileSize, blockSize int64) (int64, error) {
	if blockSize <= 0 {
		return 0, fmt.Errorf("%w: block size must be > 0, got %d", contract.ErrInvalidConfig, blockSize)
	}
	if fileSize <= 0 {
		return 0, nil
	}
	n := fileSize / blockSize
	if fileSize%blockSize > 0 {
		n++
	}
	return n, nil
}

// BlocksPerWorker = ceil(blockCount/threads)，即单个 worker 块列表的容量上限。
func BlocksPerWorker(threads int, blockCount int64) (int64, error) {
	if threads <= 0 {
		return 0, fmt.Errorf("%w: threads must be > 0, got %d", contract.ErrInvalidConfig, threads)
	}
	t := int64(threads)
	n := blockCount / t
	if blockCount%t > 0 {
		n++
	}
	return n, nil
}

// Layout 生成覆盖 [0, fileSize) 的有序块序列。
func Layout(fileSize, blockSize int64) ([]contract.Block, error) {
	n, err := BlockCount(fileSize, blockSize)
	if err != nil {
		return nil, err
	}
	blocks := make([]contract.Block, n)
	count := int64(0)
	for i := range blocks {
		b := contract.Block{Offset: count}
		if count+blockSize > fileSize {
			b.Size = fileSize - count
		} else {
			b.Size = blockSize - 1
			count += blockSize
		}
		blocks[i] = b
	}
	return blocks, nil
}

// unwrapPath 去掉 *os.PathError 外壳，避免诊断文本重复 op 与路径。
func unwrapPath(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
