package canvas2pdf

import (
	"fmt"
	"slices"
	"strings"
)

// Operation names of the drawing surface, named after the HTML canvas 2D context.
const (
	OpSave                 = "save"
	OpRestore              = "restore"
	OpScale                = "scale"
	OpRotate               = "rotate"
	OpTranslate            = "translate"
	OpTransform            = "transform"
	OpSetTransform         = "setTransform"
	OpBeginPath            = "beginPath"
	OpMoveTo               = "moveTo"
	OpLineTo               = "lineTo"
	OpArcTo                = "arcTo"
	OpBezierCurveTo        = "bezierCurveTo"
	OpQuadraticCurveTo     = "quadraticCurveTo"
	OpClosePath            = "closePath"
	OpRect                 = "rect"
	OpArc                  = "arc"
	OpEllipse              = "ellipse"
	OpFill                 = "fill"
	OpStroke               = "stroke"
	OpClip                 = "clip"
	OpFillRect             = "fillRect"
	OpStrokeRect           = "strokeRect"
	OpClearRect            = "clearRect"
	OpFillText             = "fillText"
	OpStrokeText           = "strokeText"
	OpMeasureText          = "measureText"
	OpDrawImage            = "drawImage"
	OpSetLineDash          = "setLineDash"
	OpCreateLinearGradient = "createLinearGradient"
	OpCreateRadialGradient = "createRadialGradient"
	OpBackground           = "background"
	OpEnd                  = "end"

	// OpFillAndStroke only exists on the target side, it is produced by Rewrite.
	OpFillAndStroke = "fillAndStroke"
)

// Property names of the drawing surface.
const (
	PropFillStyle      = "fillStyle"
	PropStrokeStyle    = "strokeStyle"
	PropLineWidth      = "lineWidth"
	PropLineCap        = "lineCap"
	PropLineJoin       = "lineJoin"
	PropMiterLimit     = "miterLimit"
	PropLineDashOffset = "lineDashOffset"
	PropGlobalAlpha    = "globalAlpha"
	PropFont           = "font"
	PropTextAlign      = "textAlign"
	PropTextBaseline   = "textBaseline"
)

// Operations lists every operation a host may call, in a fixed order.
var Operations = []string{
	OpSave, OpRestore, OpScale, OpRotate, OpTranslate, OpTransform, OpSetTransform,
	OpBeginPath, OpMoveTo, OpLineTo, OpArcTo, OpBezierCurveTo, OpQuadraticCurveTo, OpClosePath,
	OpRect, OpArc, OpEllipse, OpFill, OpStroke, OpClip, OpFillRect, OpStrokeRect, OpClearRect,
	OpFillText, OpStrokeText, OpMeasureText, OpDrawImage, OpSetLineDash,
	OpCreateLinearGradient, OpCreateRadialGradient, OpBackground, OpEnd,
}

// Properties lists every tracked state property.
var Properties = []string{
	PropFillStyle, PropStrokeStyle, PropLineWidth, PropLineCap, PropLineJoin, PropMiterLimit,
	PropLineDashOffset, PropGlobalAlpha, PropFont, PropTextAlign, PropTextBaseline,
}

// IsOperation returns true if name is a supported operation.
func IsOperation(name string) bool {
	return slices.Contains(Operations, name) || name == OpFillAndStroke
}

// IsProperty returns true if name is a tracked property.
func IsProperty(name string) bool {
	return slices.Contains(Properties, name)
}

////////////////////////////////////////////////////////////////

// Kind is the kind of an operation record.
type Kind int

// see Kind
const (
	CallOp Kind = iota
	ReadOp
	WriteOp
)

func (k Kind) String() string {
	switch k {
	case CallOp:
		return "call"
	case ReadOp:
		return "read"
	case WriteOp:
		return "write"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Op is a single recorded operation. Args holds the arguments of a call, Value the value of a
// read or write. A record with Skip set is a tombstone and is never replayed.
type Op struct {
	Kind  Kind
	Name  string
	Args  []any
	Value any
	Skip  bool
}

// Call returns a call record.
func Call(name string, args ...any) Op {
	return Op{Kind: CallOp, Name: name, Args: args}
}

// Write returns a write record.
func Write(name string, value any) Op {
	return Op{Kind: WriteOp, Name: name, Value: value}
}

// Is returns true if op is a live call of the named operation.
func (op Op) Is(name string) bool {
	return op.Kind == CallOp && !op.Skip && op.Name == name
}

// Clone returns a copy of op that does not share its arguments.
func (op Op) Clone() Op {
	op.Args = slices.Clone(op.Args)
	return op
}

// Float returns argument i as a float64 and whether it is numeric.
func (op Op) Float(i int) (float64, bool) {
	if i < 0 || len(op.Args) <= i {
		return 0.0, false
	}
	return toFloat(op.Args[i])
}

func (op Op) String() string {
	sb := strings.Builder{}
	if op.Skip {
		sb.WriteString("~")
	}
	switch op.Kind {
	case CallOp:
		sb.WriteString(op.Name)
		sb.WriteByte('(')
		for i, arg := range op.Args {
			if i != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatValue(arg))
		}
		sb.WriteByte(')')
	case ReadOp:
		sb.WriteString(op.Name)
	case WriteOp:
		sb.WriteString(op.Name)
		sb.WriteString(" = ")
		sb.WriteString(formatValue(op.Value))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case []float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}

// Log is an ordered sequence of operation records.
type Log []Op

// Live returns the records that are not tombstones.
func (l Log) Live() Log {
	live := make(Log, 0, len(l))
	for _, op := range l {
		if !op.Skip {
			live = append(live, op)
		}
	}
	return live
}

// Count returns the number of live calls of the named operation.
func (l Log) Count(name string) int {
	n := 0
	for _, op := range l {
		if op.Is(name) {
			n++
		}
	}
	return n
}

func (l Log) String() string {
	sb := strings.Builder{}
	for i, op := range l {
		fmt.Fprintf(&sb, "%4d %-5v %v\n", i, op.Kind, op)
	}
	return sb.String()
}

// toFloat converts numeric values as produced by hosts (Go or JavaScript) to float64.
func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case bool:
		if v {
			return 1.0, true
		}
		return 0.0, true
	}
	return 0.0, false
}
