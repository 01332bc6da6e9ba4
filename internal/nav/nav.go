// Package nav builds the navigation sidebar model from the documentation
// tree and serializes it to the JSON shape the site frontend consumes.
package nav

import (
	"encoding/json"

	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
)

// Icon names a frontend icon plus its variant flag. It serializes as a
// two-element array; a nil *Icon serializes as null.
type Icon struct {
	Name    string
	Variant bool
}

func (ic Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{ic.Name, ic.Variant})
}

// SubItem is a secondary entry under a link, used for member listings in the
// sidebar search index.
type SubItem struct {
	Title string `json:"title"`
}

// Node is one element of the navigation model.
type Node interface {
	json.Marshaler
	navNode()
}

// Link is a leaf pointing at one documentation page.
type Link struct {
	Name     string
	URL      string
	Icon     *Icon
	SubItems []SubItem
}

func (*Link) navNode() {}

func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string    `json:"type"`
		Icon     *Icon     `json:"icon"`
		Name     string    `json:"name"`
		URL      string    `json:"url"`
		SubItems []SubItem `json:"subitems,omitempty"`
	}{
		Type:     "link",
		Icon:     l.Icon,
		Name:     l.Name,
		URL:      l.URL,
		SubItems: l.SubItems,
	})
}

// Dir is a collapsible directory of child nodes.
type Dir struct {
	Name  string
	Icon  *Icon
	Open  bool
	Items []Node
}

func (*Dir) navNode() {}

func (d *Dir) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Icon  *Icon  `json:"icon"`
		Name  string `json:"name"`
		Open  bool   `json:"open"`
		Items []Node `json:"items"`
	}{
		Type:  "dir",
		Icon:  d.Icon,
		Name:  d.Name,
		Open:  d.Open,
		Items: items(d.Items),
	})
}

// Root is the top-level container; its name is optional and serializes as
// null when absent.
type Root struct {
	Name  *string
	Items []Node
}

func (*Root) navNode() {}

func (r *Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Name  *string `json:"name"`
		Items []Node  `json:"items"`
	}{
		Type:  "root",
		Name:  r.Name,
		Items: items(r.Items),
	})
}

// items keeps empty directories serializing as [] rather than null.
func items(in []Node) []Node {
	if in == nil {
		return []Node{}
	}
	return in
}

// Build constructs the navigation model for the tree. Each namespace becomes
// a directory holding its entries with namespaces first in sorted order;
// classlikes and functions become links, classlikes carrying their member
// functions as subitems. An item without a resolvable documentation URL
// still appears, as a link with an empty url the frontend renders inert.
func Build(root *doctree.Namespace, res *resolve.Resolver) *Root {
	return &Root{Items: buildEntries(root, res)}
}

func buildEntries(ns *doctree.Namespace, res *resolve.Resolver) []Node {
	var out []Node
	for _, entry := range ns.SortedEntries() {
		out = append(out, buildItem(entry, res))
	}
	return out
}

func buildItem(it doctree.Item, res *resolve.Resolver) Node {
	if sub, ok := it.(*doctree.Namespace); ok {
		return &Dir{Name: sub.Name(), Items: buildEntries(sub, res)}
	}

	url, _ := res.ItemAbsoluteURL(it)
	return &Link{
		Name:     it.Name(),
		URL:      url,
		Icon:     &Icon{Name: it.ItemKind().String()},
		SubItems: subItems(it),
	}
}

// subItems lists the member-function names of a classlike item, mirroring
// what its page documents. Other kinds carry none.
func subItems(it doctree.Item) []SubItem {
	if !doctree.IsClasslike(it) {
		return nil
	}
	var out []SubItem
	for _, m := range cppast.MemberFunctions(it.Node(), cppast.VisibilityAll, cppast.MembersAll) {
		if name := m.Name(); name != "" {
			out = append(out, SubItem{Title: name})
		}
	}
	return out
}
