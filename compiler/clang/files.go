package clang

type (
	// Files follows the current file of a dump.
	// Clang writes the file of a location only when it changes,
	// so nodes have to be visited in dump order.
	Files struct {
		file     string
		included bool
	}
)

// Decl visits top level declaration n and reports whether
// it was declared in an included file.
func (f *Files) Decl(n *Node) (included bool) {
	f.loc(n.Loc)
	included = f.included

	f.rng(n.Range)

	for _, c := range n.Inner {
		f.node(c)
	}

	return included
}

func (f *Files) File() string { return f.file }

func (f *Files) node(n *Node) {
	if n == nil {
		return
	}

	f.loc(n.Loc)
	f.rng(n.Range)

	for _, c := range n.Inner {
		f.node(c)
	}
}

func (f *Files) rng(r *Range) {
	if r == nil {
		return
	}

	f.loc(r.Begin)
	f.loc(r.End)
}

func (f *Files) loc(l *Loc) {
	if l == nil {
		return
	}

	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		f.loc(l.SpellingLoc)
		f.loc(l.ExpansionLoc)

		return
	}

	if l.File == "" {
		return
	}

	f.file = l.File
	f.included = l.IncludedFrom != nil
}
