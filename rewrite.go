package canvas2pdf

import (
	"errors"
	"fmt"
)

// ErrUnclosedPath is returned by a strict Rewrite for a beginPath without a matching closePath.
var ErrUnclosedPath = errors.New("unclosed path")

// RewriteOptions are the options of Rewrite.
type RewriteOptions struct {
	// Strict fails on a beginPath without a matching closePath, instead of taking the path up
	// to the end of the log.
	Strict bool
}

// DefaultRewriteOptions are the default options of Rewrite.
var DefaultRewriteOptions = RewriteOptions{
	Strict: false,
}

// Rewrite converts a log recorded from a canvas host into one that can be replayed on a PDF
// page, which differs from a canvas in three ways: a path must start with a move, a fill and a
// stroke of the same path must be a single painting operation, and a corner arc needs its start
// point. Rewrite makes a single forward pass and returns a new log; the input is not modified.
//
// A beginPath directly followed by a lineTo turns the lineTo into a moveTo. A fill directly
// followed by a stroke becomes a fillAndStroke and the stroke a tombstone. Any other stroke
// after a fill is preceded by the last path, from beginPath up to closePath, so that it strokes
// the same geometry. Each arcTo gets the current point appended as two extra arguments.
func Rewrite(log Log, opts *RewriteOptions) (Log, error) {
	if opts == nil {
		opts = &DefaultRewriteOptions
	}

	r := rewriter{
		out: make(Log, 0, len(log)),
	}
	for i := 0; i < len(log); i++ {
		op := log[i].Clone()
		if op.Kind != CallOp || op.Skip {
			r.out = append(r.out, op)
			continue
		}

		switch op.Name {
		case OpBeginPath:
			checkpoint, closed := r.capture(log, i)
			if !closed {
				if opts.Strict {
					return nil, fmt.Errorf("%w: beginPath at %d", ErrUnclosedPath, i)
				}
				Logger().Warn("path is not closed, taking it up to the end", "index", i)
			}
			r.checkpoint = checkpoint
			r.hasCheckpoint = true
			r.closed = closed
			r.emit(op)
			if i+1 < len(log) && log[i+1].Is(OpLineTo) {
				move := log[i+1].Clone()
				move.Name = OpMoveTo
				r.emit(move)
				i++
			}
			continue
		case OpFill:
			if i+1 < len(log) && log[i+1].Is(OpStroke) {
				op.Name = OpFillAndStroke
				stroke := log[i+1].Clone()
				stroke.Skip = true
				r.out = append(r.out, op, stroke)
				r.pending = false
				i++
				continue
			}
			r.pending = true
		case OpStroke:
			if r.pending && r.hasCheckpoint {
				r.emit(Call(OpBeginPath))
				for _, cp := range r.checkpoint {
					r.emit(cp.Clone())
				}
				if r.closed {
					r.emit(Call(OpClosePath))
				}
			}
			r.pending = false
		}
		r.emit(op)
	}
	return r.out, nil
}

type rewriter struct {
	out           Log
	pen           Pen
	checkpoint    []Op
	hasCheckpoint bool
	closed        bool // the checkpoint ends in a closePath
	pending       bool // a fill was not directly followed by its stroke
}

// emit appends op to the output and moves the pen.
func (r *rewriter) emit(op Op) {
	normalize(&r.pen, &op)
	r.out = append(r.out, op)
}

// capture copies the path following the beginPath at index i up to its closePath, normalized
// as it will be emitted. It returns false if the path is painted or the log ends before the
// path is closed, in which case the copy stops there.
func (r *rewriter) capture(log Log, i int) ([]Op, bool) {
	pen := r.pen
	checkpoint := []Op{}
	for j := i + 1; j < len(log); j++ {
		if log[j].Is(OpClosePath) {
			return checkpoint, true
		} else if log[j].Skip {
			continue
		} else if isPaint(log[j]) {
			break
		}
		op := log[j].Clone()
		if j == i+1 && op.Is(OpLineTo) {
			op.Name = OpMoveTo
		}
		normalize(&pen, &op)
		checkpoint = append(checkpoint, op)
	}
	return checkpoint, false
}

func isPaint(op Op) bool {
	return op.Is(OpFill) || op.Is(OpStroke) || op.Is(OpFillAndStroke) || op.Is(OpClip)
}

// normalize appends the pen position to a corner arc without a start point, and then moves
// the pen to the end of op.
func normalize(pen *Pen, op *Op) {
	if op.Kind != CallOp || op.Skip {
		return
	}
	if op.Name == OpArcTo && len(op.Args) == 5 {
		op.Args = append(op.Args, pen.X, pen.Y)
	}
	pen.Update(op.Name, op.Args)
}
