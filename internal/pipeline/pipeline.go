package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"lettercount/internal/diag"
	"lettercount/internal/histogram"
	"lettercount/internal/plan"
	"lettercount/pkg/contract"
)

// - 单点并发：仅此层启动 goroutine；Scanner 为同步实现，无内部并发。
// - 静态分配：块布局与轮转分配在任何 worker 启动前一次算定，运行期不再调整。
// - 共享状态：唯一可变共享资源为 histogram.Shared，逐字节持锁递增。
// - 首错取消：任一 worker 出错即取消其余 worker；仍等待全部返回后才交出结果。

// Components 聚合运行所需的组件。Run 只使用 Scanner；
// Reporter 与 Writer 由调用方在汇合后使用。
type Components struct {
	Scanner  contract.Scanner
	Reporter contract.Reporter
	Writer   contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Path      string
	Threads   int
	BlockSize int64
	// BlockDump 非空时，在启动 worker 前写出每个 worker 的块表。
	BlockDump io.Writer
}

// Run 执行完整计数：校验 → 规划 → 分配 → 并发计数 → 汇合。
// 返回的直方图为全部 worker 结束后的快照。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (*histogram.Histogram, error) {
	if err := sanity(comp, set); err != nil {
		return nil, fmt.Errorf("sanity: %w", err)
	}

	ptimer := logger.Start("planner", "layout")
	size, err := plan.FileSize(set.Path)
	if err != nil {
		return nil, stageErr(logger, "planner", err)
	}
	blocks, err := plan.Layout(size, set.BlockSize)
	if err != nil {
		return nil, stageErr(logger, "planner", err)
	}
	if err := contract.ValidateLayout(size, set.BlockSize, blocks); err != nil {
		return nil, stageErr(logger, "planner", err)
	}
	ptimer.Finish("layout", int64(len(blocks)))
	diag.IncOp("planner", "finish", "success")

	assignments, err := plan.Partition(blocks, set.Threads)
	if err != nil {
		return nil, stageErr(logger, "partitioner", err)
	}
	if err := contract.ValidatePartition(blocks, set.Threads, assignments); err != nil {
		return nil, stageErr(logger, "partitioner", err)
	}
	per, _ := plan.BlocksPerWorker(set.Threads, int64(len(blocks)))
	logger.DebugStart("partitioner", "assign", map[string]string{
		"file_size":         strconv.FormatInt(size, 10),
		"block_size":        strconv.FormatInt(set.BlockSize, 10),
		"blocks":            strconv.Itoa(len(blocks)),
		"threads":           strconv.Itoa(set.Threads),
		"blocks_per_worker": strconv.FormatInt(per, 10),
	})
	if set.BlockDump != nil {
		if err := dumpBlocks(set.BlockDump, assignments); err != nil {
			return nil, stageErr(logger, "partitioner", &contract.IOError{Op: contract.OpWrite, Err: err})
		}
	}

	shared := histogram.NewShared(histogram.New())
	if t := diag.GetTerminal(); t != nil {
		t.RunStart(set.Threads, int64(len(blocks)), set.Path)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range assignments {
		a := a
		g.Go(func() error {
			return scanOne(gctx, comp.Scanner, set.Path, a, shared, logger)
		})
	}
	// 屏障：全部 worker 返回后才读取结果
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return shared.Snapshot(), nil
}

// scanOne 运行单个 worker；panic 转为 ErrConcurrency。
func scanOne(ctx context.Context, sc contract.Scanner, path string, a contract.Assignment, c contract.Counter, logger *diag.Logger) (err error) {
	start := time.Now()
	wtimer := logger.StartWorker("worker", "scan", a.Worker)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d panicked: %v", contract.ErrConcurrency, a.Worker, r)
		}
		if t := diag.GetTerminal(); t != nil {
			t.WorkerFinish(a.Worker, len(a.Blocks), err == nil)
		}
		if err != nil {
			code := diag.Classify(err)
			// 被兄弟 worker 的首错取消时不重复计错
			if code != diag.CodeCancel {
				logger.ErrorWorker("worker", string(code), "scan failed", &start, a.Worker)
				diag.IncOp("worker", "error", "error")
				diag.IncError("worker", string(code))
			}
			return
		}
		wtimer.Finish("scan", a.Bytes())
		diag.IncOp("worker", "finish", "success")
		diag.ObserveDuration("worker", "scan", time.Since(start).Milliseconds())
	}()
	return sc.Scan(ctx, path, a, c)
}

func sanity(comp Components, set Settings) error {
	if comp.Scanner == nil {
		return errors.New("scanner is nil")
	}
	if set.Threads <= 0 {
		return fmt.Errorf("%w: threads must be > 0, got %d", contract.ErrInvalidConfig, set.Threads)
	}
	if set.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be > 0, got %d", contract.ErrInvalidConfig, set.BlockSize)
	}
	if set.Path == "" {
		return fmt.Errorf("%w: file path is empty", contract.ErrInvalidConfig)
	}
	return nil
}

func stageErr(logger *diag.Logger, comp string, err error) error {
	code := diag.Classify(err)
	logger.Error(comp, string(code), "failed", nil)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	return fmt.Errorf("%s: %w", comp, err)
}

// dumpBlocks 输出每个 worker 的块表：
//
//	Thread #0:
//		off=0, size=4
func dumpBlocks(w io.Writer, as []contract.Assignment) error {
	for _, a := range as {
		if _, err := fmt.Fprintf(w, "Thread #%d:\n", a.Worker); err != nil {
			return err
		}
		for _, b := range a.Blocks {
			if _, err := fmt.Fprintf(w, "\toff=%d, size=%d\n", b.Offset, b.Size); err != nil {
				return err
			}
		}
	}
	return nil
}
