// Package symtab implements ST: the two-level scoped identifier table
// spec.md §4.2 describes, mapping a name to (kind, type, index).
package symtab

// Kind is the closed set of identifier kinds. None is the sentinel
// result of a failed lookup.
type Kind int

const (
	None Kind = iota
	Static
	Field
	Argument
	Local
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "field"
	case Argument:
		return "argument"
	case Local:
		return "local"
	default:
		return "none"
	}
}

func isClassScope(k Kind) bool {
	return k == Static || k == Field
}

// Entry is the stored record for a defined identifier.
type Entry struct {
	Type  string
	Kind  Kind
	Index uint16
}

// SymbolTable holds a persistent class scope and a subroutine scope
// that is discarded and recreated on every StartSubroutine call.
type SymbolTable struct {
	class      map[string]Entry
	subroutine map[string]Entry
	counts     map[Kind]uint16
}

// New returns an empty table with a fresh class scope.
func New() *SymbolTable {
	return &SymbolTable{
		class:      make(map[string]Entry),
		subroutine: make(map[string]Entry),
		counts:     map[Kind]uint16{Static: 0, Field: 0, Argument: 0, Local: 0},
	}
}

// StartSubroutine discards the subroutine scope and resets its
// counters. Class-scope counters (Static, Field) are untouched.
func (s *SymbolTable) StartSubroutine() {
	s.subroutine = make(map[string]Entry)
	s.counts[Argument] = 0
	s.counts[Local] = 0
}

// Define inserts name into the scope implied by kind, assigning the
// next dense index for that kind. Defining with kind None panics: it
// is a caller contract violation, not a recoverable input error.
func (s *SymbolTable) Define(name, typ string, kind Kind) Entry {
	if kind == None {
		panic("symtab: Define called with kind None")
	}

	index := s.counts[kind]
	s.counts[kind] = index + 1

	entry := Entry{Type: typ, Kind: kind, Index: index}
	if isClassScope(kind) {
		s.class[name] = entry
	} else {
		s.subroutine[name] = entry
	}
	return entry
}

// VarCount returns the current counter for kind; None always yields 0.
func (s *SymbolTable) VarCount(kind Kind) uint16 {
	if kind == None {
		return 0
	}
	return s.counts[kind]
}

// lookup resolves name with subroutine-then-class precedence.
func (s *SymbolTable) lookup(name string) (Entry, bool) {
	if e, ok := s.subroutine[name]; ok {
		return e, true
	}
	if e, ok := s.class[name]; ok {
		return e, true
	}
	return Entry{}, false
}

// KindOf returns the resolved kind, or None if name is undefined.
func (s *SymbolTable) KindOf(name string) Kind {
	if e, ok := s.lookup(name); ok {
		return e.Kind
	}
	return None
}

// TypeOf must only be called once KindOf(name) != None.
func (s *SymbolTable) TypeOf(name string) string {
	e, ok := s.lookup(name)
	if !ok {
		panic("symtab: TypeOf called on undefined identifier " + name)
	}
	return e.Type
}

// IndexOf must only be called once KindOf(name) != None.
func (s *SymbolTable) IndexOf(name string) uint16 {
	e, ok := s.lookup(name)
	if !ok {
		panic("symtab: IndexOf called on undefined identifier " + name)
	}
	return e.Index
}
