package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrNoPanoramas means none of the inputs formed a complete panorama
var ErrNoPanoramas = errors.New("no valid panorama sets found")

// Summary counts the outcome of one batch
type Summary struct {
	Processed int
	Failed    int

	// Failures maps each failed input to its error
	Failures map[string]error
}

// OK reports whether every input succeeded
func (s Summary) OK() bool { return s.Failed == 0 }

func (s *Summary) fail(input string, err error) {
	s.Failed++
	if s.Failures == nil {
		s.Failures = make(map[string]error)
	}
	s.Failures[input] = err
}

// Merge adds another summary's counts into s
func (s *Summary) Merge(o Summary) {
	s.Processed += o.Processed
	for input, err := range o.Failures {
		s.fail(input, err)
	}
}

// processFunc handles a single input
type processFunc func(ctx context.Context, input string) error

// runBatch applies fn to every input in order. A failing input is logged
// and counted; the remaining inputs still run. Only a cancelled context
// stops the batch early.
func runBatch(ctx context.Context, log *zap.Logger, what string, inputs []string, checkExists bool, fn processFunc) Summary {
	var s Summary
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			for _, rest := range inputs[i:] {
				s.fail(rest, err)
			}
			log.Error("batch cancelled", zap.Int("remaining", len(inputs)-i), zap.Error(err))
			break
		}

		if checkExists {
			if info, err := os.Stat(input); err != nil || info.IsDir() {
				err = fmt.Errorf("file not found: %s", input)
				log.Error(what+" failed", zap.String("input", input), zap.Error(err))
				s.fail(input, err)
				continue
			}
		}

		start := time.Now()
		if err := fn(ctx, input); err != nil {
			log.Error(what+" failed", zap.String("input", input), zap.Error(err))
			s.fail(input, err)
			continue
		}
		s.Processed++
		log.Info(what+" done", zap.String("input", input), zap.Duration("elapsed", time.Since(start)))
	}
	return s
}
