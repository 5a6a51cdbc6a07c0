package ast

type (
	// Expr is a GML expression with its pass-through metadata.
	// Loc, Typ and Gr are opaque, nil means the field is absent.
	Expr struct {
		Desc ExprDesc

		Loc Raw
		Typ Raw
		Gr  Raw
	}

	ExprDesc interface {
		exprDesc()
	}

	EVar struct {
		ID LongID
	}

	EConst struct {
		Value Const
	}

	EInfixop struct {
		Op    InfixOp
		Left  *Expr
		Right *Expr
	}

	EFunc struct {
		Recursive IsRecursive

		Name string
		Arg  string

		ArgType Raw
		RetType Raw
		UF      Raw
		UT      Raw

		Body *Expr
	}

	// EIf with nil Else has no else branch.
	EIf struct {
		Cond *Expr
		Then *Expr
		Else *Expr
	}

	ELet struct {
		Name  string
		Ann   Raw
		Value *Expr
		Body  *Expr
	}

	ELetTuple struct {
		Pattern Raw
		Ann     Raw
		Value   *Expr
		Body    *Expr
	}

	ELetRecord struct {
		Fields Raw
		Ann    Raw
		Value  *Expr
		Body   *Expr
	}

	EApp struct {
		Fn  *Expr
		V1  Raw
		V2  Raw
		Arg *Expr
	}

	EMatch struct {
		Scrutinee *Expr
		Cases     []MatchCase
	}

	MatchCase struct {
		Pattern Raw
		Body    *Expr
	}

	ETuple struct {
		Items []*Expr
	}

	ERef struct {
		Value *Expr
	}

	EDeref struct {
		Value *Expr
	}

	EUpdate struct {
		Target *Expr
		Value  *Expr
	}

	EFuture struct {
		V    Raw
		Expr *Expr
	}

	EForce struct {
		Expr *Expr
	}

	EPar struct {
		Items []*Expr
	}

	ETry struct {
		Try   *Expr
		Catch *Expr
	}

	EAnnot struct {
		Expr *Expr
		Ann  Raw
	}

	ENewVert struct {
		Expr *Expr
	}

	Decl struct {
		Desc DeclDesc

		Loc  Raw
		Info Raw
	}

	DeclDesc interface {
		declDesc()
	}

	DVal struct {
		Name string
		Type Raw
		Expr *Expr
	}

	DExp struct {
		Expr *Expr
	}

	DExtType struct {
		Name string
	}

	DExtRecType struct {
		Name   string
		Fields []RecField
	}

	RecField struct {
		ID   LongID
		Type Raw
	}

	DExternal struct {
		ID   LongID
		Type Raw
	}

	DTypeDef struct {
		Params       Raw
		Name         string
		Constructors Raw
	}

	Program []*Decl
)

// UnhandledModule qualifies placeholders for input the lowering pass
// could not convert.
const UnhandledModule = "Unhandled"

func (EVar) exprDesc()       {}
func (EConst) exprDesc()     {}
func (EInfixop) exprDesc()   {}
func (EFunc) exprDesc()      {}
func (EIf) exprDesc()        {}
func (ELet) exprDesc()       {}
func (ELetTuple) exprDesc()  {}
func (ELetRecord) exprDesc() {}
func (EApp) exprDesc()       {}
func (EMatch) exprDesc()     {}
func (ETuple) exprDesc()     {}
func (ERef) exprDesc()       {}
func (EDeref) exprDesc()     {}
func (EUpdate) exprDesc()    {}
func (EFuture) exprDesc()    {}
func (EForce) exprDesc()     {}
func (EPar) exprDesc()       {}
func (ETry) exprDesc()       {}
func (EAnnot) exprDesc()     {}
func (ENewVert) exprDesc()   {}

func (DVal) declDesc()        {}
func (DExp) declDesc()        {}
func (DExtType) declDesc()    {}
func (DExtRecType) declDesc() {}
func (DExternal) declDesc()   {}
func (DTypeDef) declDesc()    {}

func E(d ExprDesc) *Expr { return &Expr{Desc: d} }

func D(d DeclDesc) *Decl { return &Decl{Desc: d} }

func Var(name string) *Expr { return E(EVar{ID: Id{Name: name}}) }

func Int(v int64) *Expr { return E(EConst{Value: Num{Value: v}}) }

func UnitValue() *Expr { return E(EConst{Value: Unit{}}) }

func Let(name string, value, body *Expr) *Expr {
	return E(ELet{Name: name, Value: value, Body: body})
}

func Infix(op InfixOp, l, r *Expr) *Expr {
	return E(EInfixop{Op: op, Left: l, Right: r})
}

func App(fn, arg *Expr) *Expr {
	return E(EApp{Fn: fn, Arg: arg})
}

// Unhandled is an explicit placeholder for an external node of the given kind.
// The raw subtree travels in the annotation field.
func Unhandled(kind string, raw Raw) *Expr {
	return &Expr{
		Desc: EVar{ID: ModID{Module: UnhandledModule, Rest: Id{Name: kind}}},
		Gr:   raw,
	}
}

// AsUnhandled reports whether e is a placeholder made by Unhandled.
func AsUnhandled(e *Expr) (kind string, raw Raw, ok bool) {
	if e == nil {
		return "", nil, false
	}

	v, ok := e.Desc.(EVar)
	if !ok {
		return "", nil, false
	}

	m, ok := v.ID.(ModID)
	if !ok || m.Module != UnhandledModule {
		return "", nil, false
	}

	id, ok := m.Rest.(Id)
	if !ok {
		return "", nil, false
	}

	return id.Name, e.Gr, true
}
