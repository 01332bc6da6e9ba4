package doctree

import (
	"sort"

	"git.home.luguber.info/inful/flashdoc/internal/cppast"
)

// DerivedClasses returns every classlike item in the tree whose declared
// base specifiers resolve, by unique symbol id, to target. Access specifiers
// and virtual inheritance do not affect the result. The returned slice is
// sorted ascending by simple name.
//
// This is a deliberate linear scan over the finished tree: it runs once per
// rendered classlike page, not per comparison, and the tree is the public
// API surface of one project. A usr→subclass index built after tree
// finalization would be the replacement if entity counts ever make the scan
// noticeable.
func DerivedClasses(root *Namespace, target cppast.Node) []Item {
	targetUSR := target.USR()
	matches := root.Select(func(it Item) bool {
		if !IsClasslike(it) {
			return false
		}
		for _, base := range cppast.Bases(it.Node()) {
			ref := base.Referenced()
			if ref != nil && ref.USR() == targetUSR {
				return true
			}
		}
		return false
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Name() < matches[j].Name()
	})
	return matches
}
