package canvas2pdf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestOp(t *testing.T) {
	op := Call(OpFillText, "a\"b", 1.5, -2)
	test.String(t, op.String(), "fillText(\"a\\\"b\", 1.5, -2)")
	test.That(t, op.Is(OpFillText))
	test.That(t, !op.Is(OpStrokeText))

	x, ok := op.Float(1)
	test.That(t, ok)
	test.Float(t, x, 1.5)
	y, ok := op.Float(2)
	test.That(t, ok)
	test.Float(t, y, -2.0)
	_, ok = op.Float(0)
	test.That(t, !ok)
	_, ok = op.Float(3)
	test.That(t, !ok)

	clone := op.Clone()
	clone.Args[1] = 3.0
	test.T(t, op.Args[1], any(1.5))

	op.Skip = true
	test.That(t, !op.Is(OpFillText))
	test.String(t, op.String(), "~fillText(\"a\\\"b\", 1.5, -2)")
}

func TestLog(t *testing.T) {
	log := Log{
		Call(OpBeginPath),
		Write(PropLineWidth, 2.0),
		{Kind: ReadOp, Name: PropFont, Value: DefaultFont},
		{Kind: CallOp, Name: OpStroke, Skip: true},
		Call(OpStroke),
	}
	test.T(t, len(log.Live()), 4)
	test.T(t, log.Count(OpStroke), 1)
	test.String(t, log.String(), ""+
		"   0 call  beginPath()\n"+
		"   1 write lineWidth = 2\n"+
		"   2 read  font\n"+
		"   3 call  ~stroke()\n"+
		"   4 call  stroke()\n")
}

func TestNames(t *testing.T) {
	test.That(t, IsOperation(OpArcTo))
	test.That(t, IsOperation(OpFillAndStroke))
	test.That(t, !IsOperation(PropFont))
	test.That(t, IsProperty(PropFont))
	test.That(t, !IsProperty("direction"))
	for _, name := range Operations {
		_, ok := methods[name]
		test.That(t, ok, name)
	}
	test.String(t, WriteOp.String(), "write")
}
