// Package render turns the documentation tree into output pages, fanning the
// work out over a bounded worker pool.
package render

import (
	"os"
	"strings"
	"sync"

	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
	"git.home.luguber.info/inful/flashdoc/internal/urlpath"
)

// Relation is one end of an inheritance edge, shown on classlike pages. URL
// is empty when the related entity has no documentation page of its own.
type Relation struct {
	Name    string
	URL     string
	Access  cppast.Access
	Virtual bool
}

// Member is one member function listed on a classlike page.
type Member struct {
	Name        string
	Signature   string
	Access      cppast.Access
	Static      bool
	Virtual     bool
	Const       bool
	PureVirtual bool
	Description string
}

// Page is the fully resolved content of one documentation page, independent
// of the output format.
type Page struct {
	Title         string
	Kind          doctree.ItemKind
	QualifiedName string
	// URL is the page's docs path below the site base.
	URL urlpath.Path
	// Description is autolinked markdown prose from the entity's comment.
	Description string
	// Include is the #include text, empty when no source root owns the header.
	Include string
	Browse  *resolve.BrowseLink
	Bases   []Relation
	Derived []Relation
	Members []Member
	// Entries lists child pages on namespace pages.
	Entries []Relation
}

// sourceCache memoizes header file contents so signature extraction reads
// each file once per build. Safe for concurrent use.
type sourceCache struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newSourceCache() *sourceCache {
	return &sourceCache{files: make(map[string][]byte)}
}

// snippet returns the node's source text with runs of whitespace collapsed
// to single spaces, or "" when the file or extent is unavailable.
func (sc *sourceCache) snippet(n cppast.Node) string {
	start, end, ok := n.Extent()
	if !ok || n.File() == "" {
		return ""
	}
	sc.mu.Lock()
	data, cached := sc.files[n.File()]
	if !cached {
		data, _ = os.ReadFile(n.File())
		sc.files[n.File()] = data
	}
	sc.mu.Unlock()
	if start < 0 || end > len(data) || start >= end {
		return ""
	}
	return strings.Join(strings.Fields(string(data[start:end])), " ")
}

// cleanComment strips C++ documentation comment markers, leaving plain
// markdown prose.
func cleanComment(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "///"):
			line = strings.TrimPrefix(line, "///")
		case strings.HasPrefix(line, "//!"):
			line = strings.TrimPrefix(line, "//!")
		case strings.HasPrefix(line, "/**"):
			line = strings.TrimPrefix(line, "/**")
		case strings.HasPrefix(line, "/*!"):
			line = strings.TrimPrefix(line, "/*!")
		case strings.HasPrefix(line, "*/"):
			line = strings.TrimPrefix(line, "*/")
		case strings.HasPrefix(line, "*"):
			line = strings.TrimPrefix(line, "*")
		}
		line = strings.TrimSuffix(line, "*/")
		lines = append(lines, strings.TrimPrefix(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// buildPage assembles the page model for one tree item. Tree and resolver
// access is read-only, so pages for different items may build concurrently.
func (o *Orchestrator) buildPage(it doctree.Item, root *doctree.Namespace) (*Page, error) {
	url, ok := o.res.ItemRelativeURL(it)
	if !ok {
		return nil, errNoPageURL
	}
	page := &Page{
		Title: it.Name(),
		Kind:  it.ItemKind(),
		URL:   url,
	}

	node := it.Node()
	if node == nil {
		// synthetic root namespace
		page.Title = o.cfg.Project.Name
		page.Entries = o.childRelations(it)
		return page, nil
	}
	page.QualifiedName = cppast.QualifiedNameString(node)

	if raw := node.Comment(); raw != "" {
		prose, linked := o.links.Rewrite(cleanComment(raw), root)
		o.rec.AddAutolinkReplacements(linked)
		page.Description = prose
	}
	if inc, ok := o.res.IncludePath(node); ok {
		page.Include = inc.String()
	}
	if browse, ok := o.res.BrowseURL(node); ok {
		page.Browse = &browse
	}

	switch {
	case it.ItemKind() == doctree.ItemNamespace:
		page.Entries = o.childRelations(it)
	case doctree.IsClasslike(it):
		page.Bases = o.baseRelations(node)
		page.Derived = o.derivedRelations(root, node)
		page.Members = o.memberList(node, root)
	}
	return page, nil
}

func (o *Orchestrator) childRelations(it doctree.Item) []Relation {
	ns, ok := it.(*doctree.Namespace)
	if !ok {
		return nil
	}
	var out []Relation
	for _, entry := range ns.SortedEntries() {
		rel := Relation{Name: entry.Name()}
		if url, ok := o.res.ItemAbsoluteURL(entry); ok {
			rel.URL = url
		}
		out = append(out, rel)
	}
	return out
}

func (o *Orchestrator) baseRelations(node cppast.Node) []Relation {
	var out []Relation
	for _, base := range cppast.Bases(node) {
		rel := Relation{
			Name:    base.Name(),
			Access:  base.Access(),
			Virtual: base.IsVirtualBase(),
		}
		if ref := base.Referenced(); ref != nil {
			rel.Name = ref.Name()
			if url, ok := o.res.AbsoluteURL(ref); ok {
				rel.URL = url
			}
		}
		out = append(out, rel)
	}
	return out
}

func (o *Orchestrator) derivedRelations(root *doctree.Namespace, node cppast.Node) []Relation {
	var out []Relation
	for _, sub := range doctree.DerivedClasses(root, node) {
		rel := Relation{Name: sub.Name()}
		if url, ok := o.res.AbsoluteURL(sub.Node()); ok {
			rel.URL = url
		}
		out = append(out, rel)
	}
	return out
}

func (o *Orchestrator) memberList(node cppast.Node, root *doctree.Namespace) []Member {
	var out []Member
	for _, m := range cppast.MemberFunctions(node, cppast.VisibilityAll, cppast.MembersAll) {
		member := Member{
			Name:        m.Name(),
			Signature:   o.src.snippet(m),
			Access:      m.Access(),
			Static:      m.IsStatic(),
			Virtual:     m.IsVirtual(),
			Const:       m.IsConst(),
			PureVirtual: m.IsPureVirtual(),
		}
		if raw := m.Comment(); raw != "" {
			prose, linked := o.links.Rewrite(cleanComment(raw), root)
			o.rec.AddAutolinkReplacements(linked)
			member.Description = prose
		}
		out = append(out, member)
	}
	return out
}
