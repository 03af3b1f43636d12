package element

import "strconv"

// AtomKind identifies the payload type of an Atom.
type AtomKind uint8

const (
	// AtomInvalid represents an invalid atom.
	AtomInvalid AtomKind = iota
	// AtomText represents a text payload.
	AtomText
	// AtomInt represents a 64-bit integer payload.
	AtomInt
)

// Atom is a comparable element value: a text or an integer.
//
// Atoms are deduplicated by the store, so at most one live element exists
// per distinct Atom value. The struct is comparable and usable as a map
// key. The zero Atom is invalid and rejected on insert.
//
// NOTE: This is also used for persistence; keep it stable.
type Atom struct {
	Kind AtomKind `json:"k"`
	Text string   `json:"t,omitempty"`
	Int  int64    `json:"i,omitempty"`
}

// Text creates a text atom.
func Text(s string) Atom {
	return Atom{Kind: AtomText, Text: s}
}

// Int creates an integer atom.
func Int(i int64) Atom {
	return Atom{Kind: AtomInt, Int: i}
}

// Valid reports whether the atom holds a usable payload.
func (a Atom) Valid() bool {
	return a.Kind == AtomText || a.Kind == AtomInt
}

// String renders the payload for logs and errors. Text is quoted so that
// Text("42") and Int(42) stay distinguishable.
func (a Atom) String() string {
	switch a.Kind {
	case AtomText:
		return strconv.Quote(a.Text)
	case AtomInt:
		return strconv.FormatInt(a.Int, 10)
	default:
		return "invalid"
	}
}
