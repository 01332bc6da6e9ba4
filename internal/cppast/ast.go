// Package cppast defines the capability surface the documentation builder
// consumes from a C++ AST provider. The builder performs no C++ parsing of
// its own; any backend that can answer these queries (libclang bridges,
// the bundled tree-sitter backend, test fixtures) can supply the tree.
package cppast

// Kind tags a declaration node.
type Kind int

const (
	KindUnknown Kind = iota
	KindTranslationUnit
	KindNamespace
	KindClass
	KindClassTemplate
	KindStruct
	KindFunction
	KindFunctionTemplate
	KindMethod
	KindField
	KindParam
	KindTemplateTypeParam
	KindBaseSpecifier
	// KindUnexposed covers provider-internal nodes that carry no semantic
	// scope of their own; the qualified-name walk skips through them.
	KindUnexposed
)

func (k Kind) String() string {
	switch k {
	case KindTranslationUnit:
		return "translation-unit"
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindClassTemplate:
		return "class-template"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindFunctionTemplate:
		return "function-template"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	case KindParam:
		return "param"
	case KindTemplateTypeParam:
		return "template-type-param"
	case KindBaseSpecifier:
		return "base-specifier"
	case KindUnexposed:
		return "unexposed"
	default:
		return "unknown"
	}
}

// Access is a member accessibility level.
type Access int

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return ""
	}
}

// Node is one declaration in a parsed translation unit. Implementations are
// read-only; the builder never mutates a provider's tree.
type Node interface {
	// Kind returns the declaration kind tag.
	Kind() Kind
	// Name returns the simple (unqualified) name, or "" for anonymous
	// declarations.
	Name() string
	// Children returns the node's children in declaration order.
	Children() []Node
	// SemanticParent returns the enclosing semantic scope, or nil at the
	// translation-unit boundary.
	SemanticParent() Node
	// File returns the path of the file holding the node's definition
	// (falling back to its declaration), or "" when unknown.
	File() string
	// Extent returns the node's source byte range, ok=false when the
	// provider has no range for it.
	Extent() (start, end int, ok bool)
	// Access returns the member accessibility, AccessNone outside classes.
	Access() Access
	// USR returns the unique symbol id: stable identity independent of the
	// textual name, used for cross-reference matching.
	USR() string
	// Comment returns the raw documentation comment attached to the node,
	// or "" if none.
	Comment() string
	// IsDefinition reports whether this node is a definition rather than a
	// forward declaration.
	IsDefinition() bool
	// InSystemHeader reports whether the node lives in a header outside the
	// project being documented.
	InSystemHeader() bool

	IsStatic() bool
	IsVirtual() bool
	IsConst() bool
	IsPureVirtual() bool
	// IsVirtualBase reports virtual inheritance on a base specifier.
	IsVirtualBase() bool
	// Referenced returns the resolved declaration a base specifier points
	// at, or nil for other kinds or unresolvable bases.
	Referenced() Node
}

// StdNamespace is the standard-library namespace name; entities whose
// outermost qualifier is this namespace never get a locally generated page.
const StdNamespace = "std"

// Bases returns the declared base specifiers of a classlike node.
func Bases(n Node) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() == KindBaseSpecifier {
			out = append(out, c)
		}
	}
	return out
}

// Params returns the parameter declarations of a function-like node.
func Params(n Node) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() == KindParam {
			out = append(out, c)
		}
	}
	return out
}

// TemplateParams returns the template type parameters of a templated node.
func TemplateParams(n Node) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() == KindTemplateTypeParam {
			out = append(out, c)
		}
	}
	return out
}

// Visibility selects which accessibility levels MemberFunctions includes.
type Visibility int

const (
	VisibilityAll Visibility = iota
	VisibilityPublic
	VisibilityProtected
)

// MemberSet selects static methods, instance methods, or both.
type MemberSet int

const (
	MembersAll MemberSet = iota
	MembersInstance
	MembersStatic
)

// MemberFunctions returns the member functions of a classlike node filtered
// by visibility and staticness. Private members are never included.
func MemberFunctions(n Node, vis Visibility, set MemberSet) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() != KindMethod && c.Kind() != KindFunctionTemplate {
			continue
		}
		switch set {
		case MembersInstance:
			if c.IsStatic() {
				continue
			}
		case MembersStatic:
			if !c.IsStatic() {
				continue
			}
		}
		switch c.Access() {
		case AccessPublic:
			if vis == VisibilityProtected {
				continue
			}
		case AccessProtected:
			if vis == VisibilityPublic {
				continue
			}
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}
