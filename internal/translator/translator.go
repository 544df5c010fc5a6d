// Package translator implements TR: the recursive-descent grammar
// recognizer that drives symtab definitions and vmwriter emissions as
// it consumes tokenizer tokens, fused with no intermediate tree, per
// spec.md §4.4.
package translator

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/libklein/jackc/internal/symtab"
	"github.com/libklein/jackc/internal/token"
	"github.com/libklein/jackc/internal/tokenizer"
	"github.com/libklein/jackc/internal/vmwriter"
)

// ParseError reports a structural failure: the token stream did not
// conform to the grammar at the named position (spec.md §4.4, §7.3).
type ParseError struct {
	Expected string
	Got      token.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Got.Position, e.Expected, e.Got)
}

// Translator drives TK, ST, and IW through one class's translation.
type Translator struct {
	tk *tokenizer.Tokenizer
	st *symtab.SymbolTable
	w  *vmwriter.Writer

	trace *log.Logger

	// arrayTempSlot is the temp segment index used to stash the RHS of
	// an array-element let statement; see SPEC_FULL.md §4.5 and
	// DESIGN.md's Open Question decision. Default 0 matches spec.md's
	// own worked Scenario E.
	arrayTempSlot int

	className    string
	whileCounter int
	ifCounter    int
}

// New constructs a Translator over tk, emitting via w. trace may be
// nil to disable verbose tracing.
func New(tk *tokenizer.Tokenizer, w *vmwriter.Writer, arrayTempSlot int, trace *log.Logger) *Translator {
	return &Translator{
		tk:            tk,
		st:            symtab.New(),
		w:             w,
		trace:         trace,
		arrayTempSlot: arrayTempSlot,
	}
}

func (t *Translator) tracef(format string, args ...any) {
	if t.trace != nil {
		t.trace.Printf(format, args...)
	}
}

// Compile translates exactly one class file, per spec.md's "each
// source compilation unit is a single class file."
func (t *Translator) Compile() error {
	if err := t.compileClass(); err != nil {
		return err
	}
	return t.w.Err()
}

func (t *Translator) cur() token.Token {
	if !t.tk.HasMore() {
		return token.Token{Kind: token.Invalid}
	}
	return t.tk.Current()
}

func (t *Translator) advance() {
	t.tk.Advance()
}

func (t *Translator) fail(expected string) error {
	return &ParseError{Expected: expected, Got: t.cur()}
}

func (t *Translator) isSymbol(c byte) bool {
	cur := t.cur()
	return cur.Kind == token.SymbolKind && cur.Symbol == c
}

func (t *Translator) isKeyword(k token.Keyword) bool {
	cur := t.cur()
	return cur.Kind == token.KeywordKind && cur.Keyword == k
}

func (t *Translator) expectSymbol(c byte) error {
	if !t.isSymbol(c) {
		return t.fail(fmt.Sprintf("symbol %q", string(c)))
	}
	t.advance()
	return nil
}

func (t *Translator) expectKeyword(k token.Keyword) error {
	if !t.isKeyword(k) {
		return t.fail(fmt.Sprintf("keyword %q", k))
	}
	t.advance()
	return nil
}

func (t *Translator) expectIdentifier() (string, error) {
	cur := t.cur()
	if cur.Kind != token.IdentifierKind {
		return "", t.fail("identifier")
	}
	t.advance()
	return cur.Ident, nil
}

// parseType consumes int|char|boolean|className.
func (t *Translator) parseType() (string, error) {
	cur := t.cur()
	switch {
	case cur.Kind == token.KeywordKind && (cur.Keyword == token.Int || cur.Keyword == token.Char || cur.Keyword == token.Boolean):
		t.advance()
		return string(cur.Keyword), nil
	case cur.Kind == token.IdentifierKind:
		t.advance()
		return cur.Ident, nil
	default:
		return "", t.fail("type")
	}
}

func segmentOf(kind symtab.Kind) vmwriter.Segment {
	switch kind {
	case symtab.Static:
		return vmwriter.Static
	case symtab.Field:
		return vmwriter.This
	case symtab.Argument:
		return vmwriter.Argument
	case symtab.Local:
		return vmwriter.Local
	default:
		panic("translator: segmentOf called with an undefined identifier kind")
	}
}

// compileClass := 'class' ID '{' classVarDec* subroutineDec* '}'
func (t *Translator) compileClass() error {
	t.tracef("compiling class")
	if err := t.expectKeyword(token.Class); err != nil {
		return err
	}
	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}
	t.className = name

	if err := t.expectSymbol('{'); err != nil {
		return err
	}

	for t.isKeyword(token.Static) || t.isKeyword(token.Field) {
		if err := t.compileClassVarDec(); err != nil {
			return err
		}
	}

	for t.isKeyword(token.Constructor) || t.isKeyword(token.Function) || t.isKeyword(token.Method) {
		if err := t.compileSubroutine(); err != nil {
			return err
		}
	}

	return t.expectSymbol('}')
}

// classVarDec := ('static'|'field') type ID (',' ID)* ';'
func (t *Translator) compileClassVarDec() error {
	var kind symtab.Kind
	switch {
	case t.isKeyword(token.Static):
		kind = symtab.Static
	case t.isKeyword(token.Field):
		kind = symtab.Field
	default:
		return t.fail("'static' or 'field'")
	}
	t.advance()

	typ, err := t.parseType()
	if err != nil {
		return err
	}

	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}
	t.st.Define(name, typ, kind)

	for t.isSymbol(',') {
		t.advance()
		name, err := t.expectIdentifier()
		if err != nil {
			return err
		}
		t.st.Define(name, typ, kind)
	}

	return t.expectSymbol(';')
}

// subroutineDec := ('constructor'|'function'|'method') (type|'void') ID
//
//	'(' paramList ')' subroutineBody
func (t *Translator) compileSubroutine() error {
	var kind token.Keyword
	switch {
	case t.isKeyword(token.Constructor):
		kind = token.Constructor
	case t.isKeyword(token.Function):
		kind = token.Function
	case t.isKeyword(token.Method):
		kind = token.Method
	default:
		return t.fail("'constructor', 'function' or 'method'")
	}
	t.advance()
	t.tracef("compiling subroutine (%s)", kind)

	if t.isKeyword(token.Void) {
		t.advance()
	} else if _, err := t.parseType(); err != nil {
		return err
	}

	subName, err := t.expectIdentifier()
	if err != nil {
		return err
	}

	t.st.StartSubroutine()
	t.whileCounter = 0
	t.ifCounter = 0

	if kind == token.Method {
		t.st.Define("this", t.className, symtab.Argument)
	}

	if err := t.expectSymbol('('); err != nil {
		return err
	}
	if err := t.compileParameterList(); err != nil {
		return err
	}
	if err := t.expectSymbol(')'); err != nil {
		return err
	}

	return t.compileSubroutineBody(kind, subName)
}

// paramList := (type ID (',' type ID)*)?
func (t *Translator) compileParameterList() error {
	if t.isSymbol(')') {
		return nil
	}

	typ, err := t.parseType()
	if err != nil {
		return err
	}
	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}
	t.st.Define(name, typ, symtab.Argument)

	for t.isSymbol(',') {
		t.advance()
		typ, err := t.parseType()
		if err != nil {
			return err
		}
		name, err := t.expectIdentifier()
		if err != nil {
			return err
		}
		t.st.Define(name, typ, symtab.Argument)
	}

	return nil
}

// subroutineBody := '{' varDec* statements '}'
func (t *Translator) compileSubroutineBody(kind token.Keyword, subName string) error {
	if err := t.expectSymbol('{'); err != nil {
		return err
	}

	for t.isKeyword(token.Var) {
		if err := t.compileVarDec(); err != nil {
			return err
		}
	}

	nLocals := int(t.st.VarCount(symtab.Local))
	t.w.WriteFunction(t.className+"."+subName, nLocals)

	switch kind {
	case token.Constructor:
		nFields := int(t.st.VarCount(symtab.Field))
		t.w.WritePush(vmwriter.Constant, nFields)
		t.w.WriteCall("Memory.alloc", 1)
		t.w.WritePop(vmwriter.Pointer, 0)
	case token.Method:
		t.w.WritePush(vmwriter.Argument, 0)
		t.w.WritePop(vmwriter.Pointer, 0)
	}

	endedWithReturn, err := t.compileStatements()
	if err != nil {
		return err
	}

	// No control-flow analysis is performed (spec.md Non-goals): the
	// only syntactic guarantee available is whether the body's last
	// top-level statement was itself a return. If not, a fallback
	// void return is appended so every emitted function still has a
	// return on every path.
	if !endedWithReturn {
		t.w.WritePush(vmwriter.Constant, 0)
		t.w.WriteReturn()
	}

	return t.expectSymbol('}')
}

// varDec := 'var' type ID (',' ID)* ';'
func (t *Translator) compileVarDec() error {
	if err := t.expectKeyword(token.Var); err != nil {
		return err
	}
	typ, err := t.parseType()
	if err != nil {
		return err
	}
	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}
	t.st.Define(name, typ, symtab.Local)

	for t.isSymbol(',') {
		t.advance()
		name, err := t.expectIdentifier()
		if err != nil {
			return err
		}
		t.st.Define(name, typ, symtab.Local)
	}

	return t.expectSymbol(';')
}

// statements := (let|if|while|do|return)*
// Reports whether the last statement compiled was a return statement.
func (t *Translator) compileStatements() (endedWithReturn bool, err error) {
	for {
		switch {
		case t.isKeyword(token.Let):
			if err = t.compileLet(); err != nil {
				return
			}
			endedWithReturn = false
		case t.isKeyword(token.If):
			if err = t.compileIf(); err != nil {
				return
			}
			endedWithReturn = false
		case t.isKeyword(token.While):
			if err = t.compileWhile(); err != nil {
				return
			}
			endedWithReturn = false
		case t.isKeyword(token.Do):
			if err = t.compileDo(); err != nil {
				return
			}
			endedWithReturn = false
		case t.isKeyword(token.Return):
			if err = t.compileReturn(); err != nil {
				return
			}
			endedWithReturn = true
		default:
			return
		}
	}
}

func (t *Translator) compileLet() error {
	if err := t.expectKeyword(token.Let); err != nil {
		return err
	}
	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}

	isArray := t.isSymbol('[')
	if isArray {
		t.advance()
		t.w.WritePush(segmentOf(t.st.KindOf(name)), int(t.st.IndexOf(name)))
		if err := t.compileExpression(); err != nil {
			return err
		}
		if err := t.expectSymbol(']'); err != nil {
			return err
		}
		t.w.WriteArithmetic(vmwriter.Add)
	}

	if err := t.expectSymbol('='); err != nil {
		return err
	}
	if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(';'); err != nil {
		return err
	}

	if isArray {
		t.w.WritePop(vmwriter.Temp, t.arrayTempSlot)
		t.w.WritePop(vmwriter.Pointer, 1)
		t.w.WritePush(vmwriter.Temp, t.arrayTempSlot)
		t.w.WritePop(vmwriter.That, 0)
	} else {
		t.w.WritePop(segmentOf(t.st.KindOf(name)), int(t.st.IndexOf(name)))
	}
	return nil
}

func (t *Translator) compileIf() error {
	if err := t.expectKeyword(token.If); err != nil {
		return err
	}
	if err := t.expectSymbol('('); err != nil {
		return err
	}
	if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(')'); err != nil {
		return err
	}

	suffix := t.ifCounter
	t.ifCounter++
	falseLabel := fmt.Sprintf("IF_FALSE%d", suffix)
	endLabel := fmt.Sprintf("END_IF%d", suffix)

	t.w.WriteArithmetic(vmwriter.Not)
	t.w.WriteIfGoto(falseLabel)

	if err := t.expectSymbol('{'); err != nil {
		return err
	}
	if _, err := t.compileStatements(); err != nil {
		return err
	}
	if err := t.expectSymbol('}'); err != nil {
		return err
	}

	hasElse := t.isKeyword(token.Else)
	if hasElse {
		t.w.WriteGoto(endLabel)
	}
	t.w.WriteLabel(falseLabel)

	if hasElse {
		t.advance()
		if err := t.expectSymbol('{'); err != nil {
			return err
		}
		if _, err := t.compileStatements(); err != nil {
			return err
		}
		if err := t.expectSymbol('}'); err != nil {
			return err
		}
		t.w.WriteLabel(endLabel)
	}

	return nil
}

func (t *Translator) compileWhile() error {
	if err := t.expectKeyword(token.While); err != nil {
		return err
	}

	suffix := t.whileCounter
	t.whileCounter++
	whileLabel := fmt.Sprintf("WHILE%d", suffix)
	endLabel := fmt.Sprintf("END_WHILE%d", suffix)

	t.w.WriteLabel(whileLabel)

	if err := t.expectSymbol('('); err != nil {
		return err
	}
	if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(')'); err != nil {
		return err
	}

	t.w.WriteArithmetic(vmwriter.Not)
	t.w.WriteIfGoto(endLabel)

	if err := t.expectSymbol('{'); err != nil {
		return err
	}
	if _, err := t.compileStatements(); err != nil {
		return err
	}
	if err := t.expectSymbol('}'); err != nil {
		return err
	}

	t.w.WriteGoto(whileLabel)
	t.w.WriteLabel(endLabel)
	return nil
}

func (t *Translator) compileDo() error {
	if err := t.expectKeyword(token.Do); err != nil {
		return err
	}
	if err := t.compileSubroutineCall(); err != nil {
		return err
	}
	if err := t.expectSymbol(';'); err != nil {
		return err
	}
	t.w.WritePop(vmwriter.Temp, 0)
	return nil
}

func (t *Translator) compileReturn() error {
	if err := t.expectKeyword(token.Return); err != nil {
		return err
	}
	if t.isSymbol(';') {
		t.w.WritePush(vmwriter.Constant, 0)
	} else if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(';'); err != nil {
		return err
	}
	t.w.WriteReturn()
	return nil
}

// expression := term (op term)*, strictly left-to-right with no
// precedence (spec.md §9 Open Question).
func (t *Translator) compileExpression() error {
	if err := t.compileTerm(); err != nil {
		return err
	}
	for t.isOpSymbol() {
		op := t.cur().Symbol
		t.advance()
		if err := t.compileTerm(); err != nil {
			return err
		}
		t.emitOp(op)
	}
	return nil
}

func (t *Translator) isOpSymbol() bool {
	cur := t.cur()
	if cur.Kind != token.SymbolKind {
		return false
	}
	switch cur.Symbol {
	case '+', '-', '*', '/', '&', '|', '<', '>', '=':
		return true
	default:
		return false
	}
}

func (t *Translator) emitOp(op byte) {
	switch op {
	case '+':
		t.w.WriteArithmetic(vmwriter.Add)
	case '-':
		t.w.WriteArithmetic(vmwriter.Sub)
	case '=':
		t.w.WriteArithmetic(vmwriter.Eq)
	case '<':
		t.w.WriteArithmetic(vmwriter.Lt)
	case '>':
		t.w.WriteArithmetic(vmwriter.Gt)
	case '&':
		t.w.WriteArithmetic(vmwriter.And)
	case '|':
		t.w.WriteArithmetic(vmwriter.Or)
	case '*':
		t.w.WriteCall("Math.multiply", 2)
	case '/':
		t.w.WriteCall("Math.divide", 2)
	}
}

// term := INT | STR | keywordConst | ID
//
//	| ID '[' expression ']' | subroutineCall
//	| '(' expression ')' | ('-'|'~') term
func (t *Translator) compileTerm() error {
	cur := t.cur()
	switch cur.Kind {
	case token.IntConstKind:
		t.w.WritePush(vmwriter.Constant, cur.IntVal)
		t.advance()
		return nil

	case token.StringConstKind:
		t.compileStringConstant(cur.StrVal)
		t.advance()
		return nil

	case token.KeywordKind:
		switch cur.Keyword {
		case token.True:
			t.w.WritePush(vmwriter.Constant, 0)
			t.w.WriteArithmetic(vmwriter.Not)
		case token.False, token.Null:
			t.w.WritePush(vmwriter.Constant, 0)
		case token.This:
			t.w.WritePush(vmwriter.Pointer, 0)
		default:
			return t.fail("keyword constant")
		}
		t.advance()
		return nil

	case token.SymbolKind:
		switch cur.Symbol {
		case '(':
			t.advance()
			if err := t.compileExpression(); err != nil {
				return err
			}
			return t.expectSymbol(')')
		case '-':
			t.advance()
			if err := t.compileTerm(); err != nil {
				return err
			}
			t.w.WriteArithmetic(vmwriter.Neg)
			return nil
		case '~':
			t.advance()
			if err := t.compileTerm(); err != nil {
				return err
			}
			t.w.WriteArithmetic(vmwriter.Not)
			return nil
		default:
			return t.fail("term")
		}

	case token.IdentifierKind:
		return t.compileIdentifierTerm()

	default:
		return t.fail("term")
	}
}

// compileStringConstant emits the string literal per spec.md §4.4: the
// return value of each appendChar call is the same object pointer,
// left on the stack to serve as the next call's implicit receiver, so
// no temp stashing is required (cf. Scenario F).
func (t *Translator) compileStringConstant(s string) {
	t.w.WritePush(vmwriter.Constant, utf8.RuneCountInString(s))
	t.w.WriteCall("String.new", 1)
	for _, c := range s {
		t.w.WritePush(vmwriter.Constant, int(c))
		t.w.WriteCall("String.appendChar", 2)
	}
}

func (t *Translator) compileIdentifierTerm() error {
	name := t.cur().Ident
	t.advance()

	switch {
	case t.isSymbol('['):
		t.advance()
		t.w.WritePush(segmentOf(t.st.KindOf(name)), int(t.st.IndexOf(name)))
		if err := t.compileExpression(); err != nil {
			return err
		}
		if err := t.expectSymbol(']'); err != nil {
			return err
		}
		t.w.WriteArithmetic(vmwriter.Add)
		t.w.WritePop(vmwriter.Pointer, 1)
		t.w.WritePush(vmwriter.That, 0)
		return nil

	case t.isSymbol('(') || t.isSymbol('.'):
		return t.compileSubroutineCallTail(name)

	default:
		t.w.WritePush(segmentOf(t.st.KindOf(name)), int(t.st.IndexOf(name)))
		return nil
	}
}

// compileSubroutineCall is the do-statement entry point: it must
// itself consume the leading identifier before dispatching.
func (t *Translator) compileSubroutineCall() error {
	name, err := t.expectIdentifier()
	if err != nil {
		return err
	}
	return t.compileSubroutineCallTail(name)
}

// compileSubroutineCallTail disambiguates the three call forms spec.md
// §4.4 describes, given the leading identifier already consumed.
func (t *Translator) compileSubroutineCallTail(name string) error {
	switch {
	case t.isSymbol('('):
		t.advance()
		t.w.WritePush(vmwriter.Pointer, 0)
		argCount, err := t.compileExpressionList()
		if err != nil {
			return err
		}
		if err := t.expectSymbol(')'); err != nil {
			return err
		}
		t.w.WriteCall(t.className+"."+name, argCount+1)
		return nil

	case t.isSymbol('.'):
		t.advance()
		subName, err := t.expectIdentifier()
		if err != nil {
			return err
		}
		if err := t.expectSymbol('('); err != nil {
			return err
		}

		kind := t.st.KindOf(name)
		isMethodOnKnownVar := kind != symtab.None
		var fullName string
		if isMethodOnKnownVar {
			t.w.WritePush(segmentOf(kind), int(t.st.IndexOf(name)))
			fullName = t.st.TypeOf(name) + "." + subName
		} else {
			fullName = name + "." + subName
		}

		argCount, err := t.compileExpressionList()
		if err != nil {
			return err
		}
		if err := t.expectSymbol(')'); err != nil {
			return err
		}

		if isMethodOnKnownVar {
			argCount++
		}
		t.w.WriteCall(fullName, argCount)
		return nil

	default:
		return t.fail("'(' or '.'")
	}
}

// expressionList := (expression (',' expression)*)?
func (t *Translator) compileExpressionList() (int, error) {
	if t.isSymbol(')') {
		return 0, nil
	}

	count := 1
	if err := t.compileExpression(); err != nil {
		return 0, err
	}
	for t.isSymbol(',') {
		t.advance()
		if err := t.compileExpression(); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
