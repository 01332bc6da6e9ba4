package cppast

// Decl is a plain in-memory Node implementation. The bundled tree-sitter
// backend materializes its trees as Decls, and test fixtures build them
// directly.
type Decl struct {
	DeclKind     Kind
	DeclName     string
	Kids         []*Decl
	Parent       *Decl
	DefFile      string
	StartByte    int
	EndByte      int
	HasExtent    bool
	DeclAccess   Access
	SymbolUSR    string
	RawComment   string
	Definition   bool
	SystemHeader bool

	Static      bool
	Virtual     bool
	Const       bool
	PureVirtual bool
	VirtualBase bool

	// Ref is the resolved declaration for base specifiers.
	Ref *Decl
}

// Add appends children and wires their semantic parent link.
func (d *Decl) Add(children ...*Decl) *Decl {
	for _, c := range children {
		c.Parent = d
		d.Kids = append(d.Kids, c)
	}
	return d
}

func (d *Decl) Kind() Kind   { return d.DeclKind }
func (d *Decl) Name() string { return d.DeclName }

func (d *Decl) Children() []Node {
	out := make([]Node, len(d.Kids))
	for i, c := range d.Kids {
		out[i] = c
	}
	return out
}

func (d *Decl) SemanticParent() Node {
	if d.Parent == nil {
		return nil
	}
	return d.Parent
}

func (d *Decl) File() string { return d.DefFile }

func (d *Decl) Extent() (int, int, bool) {
	if !d.HasExtent {
		return 0, 0, false
	}
	return d.StartByte, d.EndByte, true
}

func (d *Decl) Access() Access       { return d.DeclAccess }
func (d *Decl) USR() string          { return d.SymbolUSR }
func (d *Decl) Comment() string      { return d.RawComment }
func (d *Decl) IsDefinition() bool   { return d.Definition }
func (d *Decl) InSystemHeader() bool { return d.SystemHeader }
func (d *Decl) IsStatic() bool       { return d.Static }
func (d *Decl) IsVirtual() bool      { return d.Virtual }
func (d *Decl) IsConst() bool        { return d.Const }
func (d *Decl) IsPureVirtual() bool  { return d.PureVirtual }
func (d *Decl) IsVirtualBase() bool  { return d.VirtualBase }

func (d *Decl) Referenced() Node {
	if d.Ref == nil {
		return nil
	}
	return d.Ref
}
