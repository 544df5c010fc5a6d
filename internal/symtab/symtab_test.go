package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable_DenseIndicesPerKind(t *testing.T) {
	st := New()
	f1 := st.Define("x", "int", Field)
	f2 := st.Define("y", "int", Field)
	s1 := st.Define("count", "int", Static)

	assert.Equal(t, uint16(0), f1.Index)
	assert.Equal(t, uint16(1), f2.Index)
	assert.Equal(t, uint16(0), s1.Index)
	assert.Equal(t, uint16(2), st.VarCount(Field))
	assert.Equal(t, uint16(1), st.VarCount(Static))
}

func TestSymbolTable_StartSubroutineResetsOnlySubroutineCounts(t *testing.T) {
	st := New()
	st.Define("f", "int", Field)
	st.StartSubroutine()
	st.Define("a", "int", Argument)
	st.Define("b", "int", Local)

	assert.Equal(t, uint16(1), st.VarCount(Field))
	assert.Equal(t, uint16(1), st.VarCount(Argument))
	assert.Equal(t, uint16(1), st.VarCount(Local))

	st.StartSubroutine()
	assert.Equal(t, uint16(0), st.VarCount(Argument))
	assert.Equal(t, uint16(0), st.VarCount(Local))
	assert.Equal(t, uint16(1), st.VarCount(Field))
}

func TestSymbolTable_SubroutineScopeShadowsClassScope(t *testing.T) {
	st := New()
	st.Define("x", "int", Field)
	st.StartSubroutine()
	st.Define("x", "boolean", Local)

	assert.Equal(t, Local, st.KindOf("x"))
	assert.Equal(t, "boolean", st.TypeOf("x"))
	assert.Equal(t, uint16(0), st.IndexOf("x"))
}

func TestSymbolTable_UndefinedNameHasKindNone(t *testing.T) {
	st := New()
	assert.Equal(t, None, st.KindOf("nope"))
}

func TestSymbolTable_DefineWithKindNonePanics(t *testing.T) {
	st := New()
	assert.Panics(t, func() {
		st.Define("x", "int", None)
	})
}

func TestSymbolTable_TypeOfUndefinedPanics(t *testing.T) {
	st := New()
	assert.Panics(t, func() {
		st.TypeOf("nope")
	})
}

func TestSymbolTable_IndexOfUndefinedPanics(t *testing.T) {
	st := New()
	assert.Panics(t, func() {
		st.IndexOf("nope")
	})
}

func TestKindString(t *testing.T) {
	testData := []struct {
		kind     Kind
		expected string
	}{
		{Static, "static"},
		{Field, "field"},
		{Argument, "argument"},
		{Local, "local"},
		{None, "none"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, data.kind.String())
	}
}
