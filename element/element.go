// Package element defines the value types stored in a graph: atoms, links
// and entities, addressed by dense slot indices.
package element

import "strconv"

// Index addresses one element slot in a graph store.
//
// Indices are dense, start at 0, and stay stable for the lifetime of the
// element they name. The numeric value may be handed out again after the
// element is removed, so holders of long-lived indices must re-validate
// them against the store before use.
type Index uint32

// String formats the index in decimal.
func (i Index) String() string {
	return strconv.FormatUint(uint64(i), 10)
}

// Kind identifies the concrete variant stored in an Element.
type Kind uint8

const (
	// KindInvalid represents an invalid element.
	KindInvalid Kind = iota
	// KindAtom represents a deduplicated atom value.
	KindAtom
	// KindLink represents a directed link between two elements.
	KindLink
	// KindEntity represents an identity-only element.
	KindEntity
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindLink:
		return "link"
	case KindEntity:
		return "entity"
	default:
		return "invalid"
	}
}

// Link is a directed edge identified by its ordered endpoint pair:
// (a, b) and (b, a) are distinct links. Endpoints may name any live
// element, including other links.
//
// NOTE: This is also used for persistence; keep it stable.
type Link struct {
	From Index `json:"f"`
	To   Index `json:"t"`
}

// String renders the link as "from->to".
func (l Link) String() string {
	return l.From.String() + "->" + l.To.String()
}

// Element is the stored form of one graph element. Exactly one variant is
// meaningful, selected by Kind: Atom for KindAtom, Link for KindLink,
// neither for KindEntity.
//
// Element values must never be compared to establish identity: two distinct
// entities are indistinguishable by value, and only their Index tells them
// apart.
type Element struct {
	Kind Kind
	Atom Atom
	Link Link
}

// AtomElement wraps an atom value as an element.
func AtomElement(a Atom) Element {
	return Element{Kind: KindAtom, Atom: a}
}

// LinkElement wraps a link as an element.
func LinkElement(l Link) Element {
	return Element{Kind: KindLink, Link: l}
}

// EntityElement returns an identity-only element.
func EntityElement() Element {
	return Element{Kind: KindEntity}
}

// String renders the element for logs and errors.
func (e Element) String() string {
	switch e.Kind {
	case KindAtom:
		return "atom(" + e.Atom.String() + ")"
	case KindLink:
		return "link(" + e.Link.String() + ")"
	case KindEntity:
		return "entity"
	default:
		return "invalid"
	}
}
