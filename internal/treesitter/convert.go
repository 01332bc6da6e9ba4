package treesitter

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/diag"
	"git.home.luguber.info/inful/flashdoc/internal/logfields"
)

// converter materializes one parsed header as a cppast.Decl tree.
type converter struct {
	src  []byte
	file string
	diag diag.Collector
}

func (c *converter) text(n *tree_sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func (c *converter) newDecl(kind cppast.Kind, name string, n *tree_sitter.Node) *cppast.Decl {
	return &cppast.Decl{
		DeclKind:  kind,
		DeclName:  name,
		DefFile:   c.file,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		HasExtent: true,
	}
}

// convertScope walks the children of a declaration scope (translation unit,
// namespace body, class body) and appends the declarations it recognizes to
// parent. access tracks the current member accessibility inside class
// bodies; comments accumulate and attach to the next declaration.
func (c *converter) convertScope(scope *tree_sitter.Node, parent *cppast.Decl, access cppast.Access) {
	var comment []string
	count := scope.ChildCount()
	for i := uint(0); i < count; i++ {
		child := scope.Child(i)
		kind := child.Kind()

		if kind == "comment" {
			comment = append(comment, c.text(child))
			continue
		}
		pending := strings.Join(comment, "\n")
		comment = comment[:0]

		switch kind {
		case "access_specifier":
			access = parseAccess(c.text(child))

		case "namespace_definition":
			c.convertNamespace(child, parent, pending)

		case "class_specifier", "struct_specifier":
			c.convertClasslike(child, parent, access, pending, false, nil)

		case "template_declaration":
			c.convertTemplate(child, parent, access, pending)

		case "function_definition":
			c.convertFunction(child, parent, access, pending, true, false)

		case "declaration", "field_declaration":
			c.convertDeclaration(child, parent, access, pending)

		case "linkage_specification":
			if body := child.ChildByFieldName("body"); body != nil {
				c.convertScope(body, parent, access)
			}

		case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif":
			c.convertScope(child, parent, access)
		}
	}
}

func (c *converter) convertNamespace(n *tree_sitter.Node, parent *cppast.Decl, comment string) {
	name := ""
	if id := n.ChildByFieldName("name"); id != nil {
		name = c.text(id)
	}
	decl := c.newDecl(cppast.KindNamespace, name, n)
	decl.Definition = true
	decl.RawComment = comment
	parent.Add(decl)

	// C++17 nested namespace definitions (namespace a::b::c) arrive as one
	// node with a qualified name; expand them into the chain they denote.
	if strings.Contains(name, "::") {
		segs := strings.Split(name, "::")
		decl.DeclName = segs[0]
		inner := decl
		for _, seg := range segs[1:] {
			next := c.newDecl(cppast.KindNamespace, seg, n)
			next.Definition = true
			inner.Add(next)
			inner = next
		}
		decl = inner
	}
	if body := n.ChildByFieldName("body"); body != nil {
		c.convertScope(body, decl, cppast.AccessNone)
	}
}

func (c *converter) convertClasslike(n *tree_sitter.Node, parent *cppast.Decl, access cppast.Access, comment string, template bool, tparams []*cppast.Decl) {
	var kind cppast.Kind
	switch {
	case n.Kind() == "struct_specifier":
		kind = cppast.KindStruct
	case template:
		kind = cppast.KindClassTemplate
	default:
		kind = cppast.KindClass
	}

	name := ""
	if id := n.ChildByFieldName("name"); id != nil {
		name = c.text(id)
	}
	// Out-of-scope definitions (class ns::Foo) document under their home
	// scope, which the qualified-name walk cannot reconstruct here.
	if strings.Contains(name, "::") {
		c.diag.Warn("skipping out-of-scope class definition",
			logfields.Name(name), logfields.File(c.file))
		return
	}

	body := n.ChildByFieldName("body")
	decl := c.newDecl(kind, name, n)
	decl.Definition = body != nil
	decl.DeclAccess = access
	decl.RawComment = comment
	parent.Add(decl)
	decl.Add(tparams...)

	defaultAccess := cppast.AccessPrivate
	if kind == cppast.KindStruct {
		defaultAccess = cppast.AccessPublic
	}
	c.convertBases(n, decl, defaultAccess)
	if body != nil {
		c.convertScope(body, decl, defaultAccess)
	}
}

// convertBases turns a base_class_clause into base-specifier children. The
// clause interleaves access and virtual keywords with the base type names.
func (c *converter) convertBases(n *tree_sitter.Node, decl *cppast.Decl, defaultAccess cppast.Access) {
	var clause *tree_sitter.Node
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if child := n.Child(i); child.Kind() == "base_class_clause" {
			clause = child
			break
		}
	}
	if clause == nil {
		return
	}

	access := defaultAccess
	virtual := false
	count = clause.ChildCount()
	for i := uint(0); i < count; i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "access_specifier", "public", "protected", "private":
			access = parseAccess(c.text(child))
		case "virtual":
			virtual = true
		case "type_identifier", "qualified_identifier", "template_type":
			base := c.newDecl(cppast.KindBaseSpecifier, c.text(child), child)
			base.DeclAccess = access
			base.VirtualBase = virtual
			decl.Add(base)
			access = defaultAccess
			virtual = false
		}
	}
}

// convertTemplate unwraps a template_declaration into the templated entity,
// carrying its type parameters along.
func (c *converter) convertTemplate(n *tree_sitter.Node, parent *cppast.Decl, access cppast.Access, comment string) {
	var tparams []*cppast.Decl
	if params := n.ChildByFieldName("parameters"); params != nil {
		count := params.ChildCount()
		for i := uint(0); i < count; i++ {
			child := params.Child(i)
			switch child.Kind() {
			case "type_parameter_declaration", "optional_type_parameter_declaration":
				name := ""
				if last := lastNamedChild(child); last != nil && last.Kind() == "type_identifier" {
					name = c.text(last)
				}
				tparams = append(tparams, c.newDecl(cppast.KindTemplateTypeParam, name, child))
			}
		}
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "class_specifier", "struct_specifier":
			c.convertClasslike(child, parent, access, comment, true, tparams)
			return
		case "function_definition":
			if fn := c.convertFunction(child, parent, access, comment, true, true); fn != nil {
				fn.Add(tparams...)
			}
			return
		case "declaration", "field_declaration":
			if fn := c.convertFunctionDecl(child, parent, access, comment, true); fn != nil {
				fn.Add(tparams...)
			}
			return
		}
	}
}

// convertDeclaration handles declaration and field_declaration nodes, which
// cover forward classlike declarations, method declarations and free
// function prototypes. Data members and variables are not documented.
func (c *converter) convertDeclaration(n *tree_sitter.Node, parent *cppast.Decl, access cppast.Access, comment string) {
	if t := n.ChildByFieldName("type"); t != nil && n.ChildByFieldName("declarator") == nil {
		if t.Kind() == "class_specifier" || t.Kind() == "struct_specifier" {
			c.convertClasslike(t, parent, access, comment, false, nil)
			return
		}
	}
	c.convertFunctionDecl(n, parent, access, comment, false)
}

func (c *converter) convertFunctionDecl(n *tree_sitter.Node, parent *cppast.Decl, access cppast.Access, comment string, template bool) *cppast.Decl {
	if findFunctionDeclarator(n.ChildByFieldName("declarator")) == nil {
		return nil
	}
	return c.convertFunction(n, parent, access, comment, false, template)
}

func (c *converter) convertFunction(n *tree_sitter.Node, parent *cppast.Decl, access cppast.Access, comment string, definition, template bool) *cppast.Decl {
	fnDecl := findFunctionDeclarator(n.ChildByFieldName("declarator"))
	if fnDecl == nil {
		return nil
	}
	name := c.declaratorName(fnDecl)
	if name == "" {
		return nil
	}
	// Out-of-line member definitions (void Foo::bar()) belong to the class
	// already declared in its own scope.
	if strings.Contains(name, "::") {
		return nil
	}

	inClass := classlike(parent.DeclKind)
	kind := cppast.KindFunction
	switch {
	case template:
		kind = cppast.KindFunctionTemplate
	case inClass:
		kind = cppast.KindMethod
	}

	decl := c.newDecl(kind, name, n)
	decl.Definition = definition
	decl.RawComment = comment
	if inClass {
		decl.DeclAccess = access
	}
	c.applyQualifiers(n, fnDecl, decl)
	c.convertParams(fnDecl, decl)
	parent.Add(decl)
	return decl
}

// applyQualifiers reads storage and virtual specifiers off the declaration
// node and constness plus pure-virtual marking off its declarator.
func (c *converter) applyQualifiers(n, fnDecl *tree_sitter.Node, decl *cppast.Decl) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "storage_class_specifier":
			if c.text(child) == "static" {
				decl.Static = true
			}
		case "virtual", "virtual_function_specifier":
			decl.Virtual = true
		case "pure_virtual_clause":
			decl.PureVirtual = true
		}
	}
	count = fnDecl.ChildCount()
	for i := uint(0); i < count; i++ {
		child := fnDecl.Child(i)
		if child.Kind() == "type_qualifier" && c.text(child) == "const" {
			decl.Const = true
		}
	}
	if decl.PureVirtual {
		decl.Virtual = true
		return
	}
	// Grammar versions differ on exposing "= 0"; fall back to the text.
	if decl.Virtual && strings.HasSuffix(strings.TrimSuffix(strings.TrimSpace(c.text(n)), ";"), "= 0") {
		decl.PureVirtual = true
	}
}

func (c *converter) convertParams(fnDecl *tree_sitter.Node, decl *cppast.Decl) {
	params := fnDecl.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	count := params.ChildCount()
	for i := uint(0); i < count; i++ {
		child := params.Child(i)
		if child.Kind() != "parameter_declaration" && child.Kind() != "optional_parameter_declaration" {
			continue
		}
		name := ""
		if d := child.ChildByFieldName("declarator"); d != nil {
			if id := unwrapDeclarator(d); id != nil {
				name = c.text(id)
			}
		}
		decl.Add(c.newDecl(cppast.KindParam, name, child))
	}
}

// declaratorName returns the identifier named by a function_declarator.
func (c *converter) declaratorName(fnDecl *tree_sitter.Node) string {
	id := unwrapDeclarator(fnDecl.ChildByFieldName("declarator"))
	if id == nil {
		return ""
	}
	return c.text(id)
}

// findFunctionDeclarator descends through pointer and reference declarators
// to the function_declarator, or nil when the declaration is not a function.
func findFunctionDeclarator(d *tree_sitter.Node) *tree_sitter.Node {
	for d != nil {
		if d.Kind() == "function_declarator" {
			return d
		}
		d = d.ChildByFieldName("declarator")
	}
	return nil
}

// unwrapDeclarator descends a declarator chain to the terminal name node.
func unwrapDeclarator(d *tree_sitter.Node) *tree_sitter.Node {
	for d != nil {
		switch d.Kind() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "operator_cast":
			return d
		}
		next := d.ChildByFieldName("declarator")
		if next == nil {
			return nil
		}
		d = next
	}
	return nil
}

func lastNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	count := n.NamedChildCount()
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}

func parseAccess(text string) cppast.Access {
	switch {
	case strings.HasPrefix(text, "public"):
		return cppast.AccessPublic
	case strings.HasPrefix(text, "protected"):
		return cppast.AccessProtected
	case strings.HasPrefix(text, "private"):
		return cppast.AccessPrivate
	default:
		return cppast.AccessNone
	}
}

func classlike(k cppast.Kind) bool {
	return k == cppast.KindClass || k == cppast.KindClassTemplate || k == cppast.KindStruct
}

// unit is one parsed translation unit plus its classlike symbol table.
type unit struct {
	root       *cppast.Decl
	classlikes map[string]*cppast.Decl
	bases      []*cppast.Decl
}

// index assigns symbol ids and records classlikes and base specifiers for
// the resolution pass. Definitions shadow forward declarations.
func (u *unit) index(d *cppast.Decl) {
	if u.classlikes == nil {
		u.classlikes = make(map[string]*cppast.Decl)
	}
	for _, child := range d.Kids {
		switch {
		case classlike(child.DeclKind):
			fqn := cppast.QualifiedNameString(child)
			child.SymbolUSR = symbolID(child.DeclKind, fqn)
			if existing, ok := u.classlikes[fqn]; !ok || !existing.Definition {
				u.classlikes[fqn] = child
			}
		case child.DeclKind == cppast.KindBaseSpecifier:
			u.bases = append(u.bases, child)
		default:
			if child.DeclName != "" {
				child.SymbolUSR = symbolID(child.DeclKind, cppast.QualifiedNameString(child))
			}
		}
		u.index(child)
	}
}

// symbolID derives a stable unique symbol id from kind and qualified name.
// Classlikes hash without the template distinction so that forward
// declarations, definitions and base references all agree.
func symbolID(kind cppast.Kind, fqn string) string {
	k := kind
	if classlike(k) && k != cppast.KindStruct {
		k = cppast.KindClass
	}
	return fmt.Sprintf("c:%016x", xxhash.Sum64String(k.String()+"|"+fqn))
}

// resolveBases links every base specifier to the classlike it names,
// searching enclosing scopes innermost first, across all units.
func resolveBases(units []*unit) {
	table := make(map[string]*cppast.Decl)
	for _, u := range units {
		for fqn, decl := range u.classlikes {
			if existing, ok := table[fqn]; !ok || !existing.Definition {
				table[fqn] = decl
			}
		}
	}
	for _, u := range units {
		for _, base := range u.bases {
			resolveBase(base, table)
		}
	}
}

func resolveBase(base *cppast.Decl, table map[string]*cppast.Decl) {
	name := strings.TrimSpace(base.DeclName)
	// Drop template arguments: Base<T> resolves to Base.
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if strings.HasPrefix(name, "::") {
		if d, ok := table[strings.TrimPrefix(name, "::")]; ok {
			base.Ref = d
		}
		return
	}

	// Enclosing scopes of the deriving class, innermost first.
	var scope []string
	if p := base.Parent; p != nil && p.Parent != nil && p.Parent.DeclKind != cppast.KindTranslationUnit {
		scope = cppast.QualifiedName(p.Parent)
	}
	for i := len(scope); i >= 0; i-- {
		cand := strings.Join(append(append([]string{}, scope[:i]...), name), "::")
		if d, ok := table[cand]; ok {
			base.Ref = d
			return
		}
	}
}
