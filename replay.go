package canvas2pdf

import (
	"context"
	"fmt"
)

// Replay performs the live records of log on dst in order. Calls are invoked and writes are
// assigned, reads are skipped. It stops at the first error.
func Replay(log Log, dst Context) error {
	return ReplayContext(context.Background(), log, dst)
}

// ReplayContext is like Replay but stops early when ctx is done.
func ReplayContext(ctx context.Context, log Log, dst Context) error {
	for i, op := range log {
		if err := ctx.Err(); err != nil {
			return err
		} else if op.Skip {
			continue
		}

		var err error
		switch op.Kind {
		case CallOp:
			_, err = Invoke(dst, op.Name, op.Args...)
		case WriteOp:
			err = Assign(dst, op.Name, op.Value)
		}
		if err != nil {
			return fmt.Errorf("record %d %s: %w", i, op.Name, err)
		}
	}
	return nil
}
