// Package doctree builds and holds the documentation model: a namespace tree
// of classified C++ entities, built once per run and immutable afterwards.
package doctree

import (
	"sort"

	"git.home.luguber.info/inful/flashdoc/internal/cppast"
)

// ItemKind tags the closed set of documentation item variants.
type ItemKind int

const (
	ItemNamespace ItemKind = iota
	ItemClass
	ItemStruct
	ItemFunction
)

func (k ItemKind) String() string {
	switch k {
	case ItemNamespace:
		return "namespace"
	case ItemClass:
		return "class"
	case ItemStruct:
		return "struct"
	case ItemFunction:
		return "function"
	default:
		return "unknown"
	}
}

// CategorySegment returns the docs URL category for the kind. Classes and
// structs share a category.
func (k ItemKind) CategorySegment() string {
	switch k {
	case ItemNamespace:
		return "namespaces"
	case ItemClass, ItemStruct:
		return "classes"
	case ItemFunction:
		return "functions"
	default:
		return ""
	}
}

// Classify maps an AST node to a documentation item kind. Nodes outside the
// documented set (fields, methods, typedefs, ...) are declined.
func Classify(n cppast.Node) (ItemKind, bool) {
	switch n.Kind() {
	case cppast.KindNamespace:
		return ItemNamespace, true
	case cppast.KindClass, cppast.KindClassTemplate:
		return ItemClass, true
	case cppast.KindStruct:
		return ItemStruct, true
	case cppast.KindFunction, cppast.KindFunctionTemplate:
		return ItemFunction, true
	default:
		return 0, false
	}
}

// Item is one node of the documentation model.
type Item interface {
	// Name returns the simple name keying the item in its owning namespace.
	Name() string
	// ItemKind returns the variant tag.
	ItemKind() ItemKind
	// Node returns the underlying AST node; nil only for the synthetic root
	// namespace.
	Node() cppast.Node
}

// Namespace is a namespace item owning its entries by simple name. Entries
// with the same key overwrite each other except namespace-namespace pairs,
// which merge.
type Namespace struct {
	name    string
	node    cppast.Node
	isRoot  bool
	Entries map[string]Item
}

// NewNamespace creates an empty namespace item for the given AST node.
func NewNamespace(node cppast.Node) *Namespace {
	return &Namespace{
		name:    node.Name(),
		node:    node,
		Entries: make(map[string]Item),
	}
}

func newRootNamespace() *Namespace {
	return &Namespace{
		isRoot:  true,
		Entries: make(map[string]Item),
	}
}

func (ns *Namespace) Name() string       { return ns.name }
func (ns *Namespace) ItemKind() ItemKind { return ItemNamespace }
func (ns *Namespace) Node() cppast.Node  { return ns.node }

// IsRoot reports whether this is the synthetic tree root. The root never
// carries a URL segment and is never removed by cleanup.
func (ns *Namespace) IsRoot() bool { return ns.isRoot }

// Merge folds other's entries into ns. Both namespaces must share a name;
// a mismatch is a programming-invariant violation, not a recoverable error.
// Namespace entries present on both sides merge recursively; anything else
// is last-write-wins.
func (ns *Namespace) Merge(other *Namespace) {
	if ns.name != other.name {
		panic("doctree: merging namespaces with different names: " + ns.name + " != " + other.name)
	}
	for name, entry := range other.Entries {
		if otherNS, ok := entry.(*Namespace); ok {
			if selfNS, ok := ns.Entries[name].(*Namespace); ok {
				selfNS.Merge(otherNS)
				continue
			}
		}
		ns.Entries[name] = entry
	}
}

// SortedEntries returns the namespace's entries with namespaces first, each
// group sorted by name. Used for navigation rendering.
func (ns *Namespace) SortedEntries() []Item {
	out := make([]Item, 0, len(ns.Entries))
	for _, e := range ns.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		iNS := out[i].ItemKind() == ItemNamespace
		jNS := out[j].ItemKind() == ItemNamespace
		if iNS != jNS {
			return iNS
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Select returns every item in the subtree (the namespace itself excluded)
// matching the predicate, in unspecified order.
func (ns *Namespace) Select(matcher func(Item) bool) []Item {
	var out []Item
	ns.collect(matcher, &out)
	return out
}

func (ns *Namespace) collect(matcher func(Item) bool, out *[]Item) {
	for _, entry := range ns.Entries {
		if matcher(entry) {
			*out = append(*out, entry)
		}
		if sub, ok := entry.(*Namespace); ok {
			sub.collect(matcher, out)
		}
	}
}

// Class is a class definition item.
type Class struct {
	name string
	node cppast.Node
}

// NewClass creates a class item for the given definition node.
func NewClass(node cppast.Node) *Class {
	return &Class{name: node.Name(), node: node}
}

func (c *Class) Name() string       { return c.name }
func (c *Class) ItemKind() ItemKind { return ItemClass }
func (c *Class) Node() cppast.Node  { return c.node }

// Struct is a struct definition item.
type Struct struct {
	name string
	node cppast.Node
}

// NewStruct creates a struct item for the given definition node.
func NewStruct(node cppast.Node) *Struct {
	return &Struct{name: node.Name(), node: node}
}

func (s *Struct) Name() string       { return s.name }
func (s *Struct) ItemKind() ItemKind { return ItemStruct }
func (s *Struct) Node() cppast.Node  { return s.node }

// Function is a free-function item. Overload sets are not resolved: the last
// declaration inserted under a simple name wins.
type Function struct {
	name string
	node cppast.Node
}

// NewFunction creates a function item for the given node.
func NewFunction(node cppast.Node) *Function {
	return &Function{name: node.Name(), node: node}
}

func (f *Function) Name() string       { return f.name }
func (f *Function) ItemKind() ItemKind { return ItemFunction }
func (f *Function) Node() cppast.Node  { return f.node }

// IsClasslike reports whether the item is a class or struct.
func IsClasslike(it Item) bool {
	return it.ItemKind() == ItemClass || it.ItemKind() == ItemStruct
}
