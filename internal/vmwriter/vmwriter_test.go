package vmwriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_OneInstructionPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.WritePush(Constant, 7)
	w.WritePop(Local, 1)
	w.WriteArithmetic(Add)
	w.WriteArithmetic(Not)
	w.WriteLabel("WHILE0")
	w.WriteGoto("WHILE0")
	w.WriteIfGoto("END_WHILE0")
	w.WriteCall("Math.multiply", 2)
	w.WriteFunction("Main.main", 3)
	w.WriteReturn()

	expected := "push constant 7\n" +
		"pop local 1\n" +
		"add\n" +
		"not\n" +
		"label WHILE0\n" +
		"goto WHILE0\n" +
		"if-goto END_WHILE0\n" +
		"call Math.multiply 2\n" +
		"function Main.main 3\n" +
		"return\n"

	assert.Nil(t, w.Err())
	assert.Equal(t, expected, buf.String())
}

func TestSegmentString(t *testing.T) {
	testData := []struct {
		seg      Segment
		expected string
	}{
		{Constant, "constant"},
		{Argument, "argument"},
		{Local, "local"},
		{Static, "static"},
		{This, "this"},
		{That, "that"},
		{Pointer, "pointer"},
		{Temp, "temp"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, data.seg.String())
	}
}

func TestArithOpString(t *testing.T) {
	testData := []struct {
		op       ArithOp
		expected string
	}{
		{Add, "add"},
		{Sub, "sub"},
		{Neg, "neg"},
		{Eq, "eq"},
		{Gt, "gt"},
		{Lt, "lt"},
		{And, "and"},
		{Or, "or"},
		{Not, "not"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, data.op.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestWriter_SticksOnFirstError(t *testing.T) {
	w := New(failingWriter{})
	w.WritePush(Constant, 1)
	assert.NotNil(t, w.Err())

	firstErr := w.Err()
	w.WritePop(Local, 0)
	assert.Equal(t, firstErr, w.Err())
}
