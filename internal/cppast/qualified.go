package cppast

import "strings"

// AnonymousName substitutes for unnamed entities inside qualified names.
const AnonymousName = "_anon"

// Ancestry returns the semantic ancestors of n in root-to-leaf order, ending
// with n itself. The walk stops at translation-unit and unexposed boundaries,
// and leading anonymous-namespace ancestors are dropped so qualified names
// start at the first named scope.
func Ancestry(n Node) []Node {
	var ancestors []Node
	if parent := n.SemanticParent(); parent != nil {
		switch parent.Kind() {
		case KindTranslationUnit, KindUnexposed, KindUnknown:
		default:
			ancestors = append(ancestors, Ancestry(parent)...)
		}
	}
	for len(ancestors) > 0 && ancestors[0].Name() == "" {
		ancestors = ancestors[1:]
	}
	return append(ancestors, n)
}

// QualifiedName returns the root-to-leaf name segments of n's ancestry.
// Unnamed segments render as AnonymousName.
func QualifiedName(n Node) []string {
	chain := Ancestry(n)
	out := make([]string, len(chain))
	for i, a := range chain {
		name := a.Name()
		if name == "" {
			name = AnonymousName
		}
		out[i] = name
	}
	return out
}

// QualifiedNameString joins QualifiedName with the C++ scope operator.
func QualifiedNameString(n Node) string {
	return strings.Join(QualifiedName(n), "::")
}
