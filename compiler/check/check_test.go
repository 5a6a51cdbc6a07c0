package check

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/omp2gml/compiler/ast"
)

func future(e *ast.Expr) *ast.Expr { return ast.E(ast.EFuture{Expr: e}) }

func force(name string) *ast.Expr { return ast.E(ast.EForce{Expr: ast.Var(name)}) }

func TestForceAfterSpawn(t *testing.T) {
	body := ast.Let("__future0", future(ast.App(ast.Var("g"), ast.Var("n"))),
		ast.Let("y", force("__future0"),
			ast.Infix(ast.Plus, ast.Var("y"), ast.Int(1))))

	p := ast.Program{
		ast.D(ast.DVal{Name: "f", Expr: ast.E(ast.EFunc{Recursive: ast.Recursive, Name: "f", Arg: "n", Body: body})}),
		ast.D(ast.DExternal{ID: ast.Id{Name: "g"}}),
	}

	st, err := Program(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, Stats{Futures: 1, Forced: 1}, st)
}

func TestUnknownFuture(t *testing.T) {
	for i, e := range []*ast.Expr{
		force("__future0"),
		ast.Let("y", force("__future0"), ast.Let("__future0", future(ast.Int(1)), ast.Var("y"))),
		ast.Let("__future0", ast.Int(1), force("__future0")),
		ast.Let("a", future(ast.Int(1)), ast.Let("a", ast.Int(2), force("a"))),
		ast.Let("_", ast.Let("a", future(ast.Int(1)), ast.UnitValue()), force("a")),
		ast.E(ast.EForce{Expr: ast.E(ast.EVar{ID: ast.ModID{Module: "M", Rest: ast.Id{Name: "a"}}})}),
	} {
		err := Expr(e)
		assert.ErrorIs(t, err, ErrUnknownFuture, "case %d", i)
	}
}

func TestForcedTwice(t *testing.T) {
	e := ast.Let("a", future(ast.Int(1)),
		ast.Let("x", force("a"),
			ast.Let("y", force("a"), ast.UnitValue())))

	err := Expr(e)
	assert.ErrorIs(t, err, ErrForcedTwice)

	_, err = Program(context.Background(), ast.Program{ast.D(ast.DVal{Name: "main", Expr: e})})
	require.ErrorIs(t, err, ErrForcedTwice)
	assert.Contains(t, err.Error(), "decl[0]")
	assert.Contains(t, err.Error(), "val main")
}

func TestBranches(t *testing.T) {
	cond := ast.Var("c")

	// each branch forces once
	e := ast.Let("a", future(ast.Int(1)),
		ast.E(ast.EIf{Cond: cond, Then: force("a"), Else: force("a")}))

	assert.NoError(t, Expr(e))

	// a force in either branch counts after the if
	e = ast.Let("a", future(ast.Int(1)),
		ast.Let("_", ast.E(ast.EIf{Cond: cond, Then: force("a")}),
			force("a")))

	assert.ErrorIs(t, Expr(e), ErrForcedTwice)

	e = ast.Let("a", future(ast.Int(1)),
		ast.E(ast.EMatch{Scrutinee: cond, Cases: []ast.MatchCase{
			{Pattern: ast.Raw(`["PAny"]`), Body: force("a")},
			{Pattern: ast.Raw(`["PAny"]`), Body: ast.UnitValue()},
		}}))

	assert.NoError(t, Expr(e))
}

func TestFutureBodyCannotForceItself(t *testing.T) {
	e := ast.Let("a", future(force("a")), ast.UnitValue())

	assert.ErrorIs(t, Expr(e), ErrUnknownFuture)
}

func TestMissingExpr(t *testing.T) {
	for i, e := range []*ast.Expr{
		nil,
		{},
		ast.E(ast.ELet{Name: "a", Body: ast.UnitValue()}),
		ast.E(ast.EForce{}),
		ast.Let("a", future(nil), force("a")),
		ast.E(ast.EIf{Cond: ast.Var("c")}),
	} {
		err := Expr(e)
		assert.ErrorIs(t, err, ErrMissingExpr, "case %d", i)
	}

	_, err := Program(context.Background(), ast.Program{ast.D(ast.DVal{Name: "x"})})
	require.ErrorIs(t, err, ErrMissingExpr)
	assert.Contains(t, err.Error(), "val x")

	_, err = Program(context.Background(), ast.Program{nil})
	assert.Error(t, err)
}

func TestUnforced(t *testing.T) {
	e := ast.Let("a", future(ast.Int(1)),
		ast.Let("b", future(ast.Int(2)),
			ast.Let("c", future(ast.Int(3)),
				force("b"))))

	c := newChecker()

	require.NoError(t, c.expr(e))
	assert.Equal(t, []string{"a", "c"}, c.unforced())

	c.reset()

	assert.Nil(t, c.unforced())
	assert.Equal(t, 0, c.forced.Size())

	// a checker is reused between declarations
	p := ast.Program{
		ast.D(ast.DVal{Name: "f", Expr: e}),
		ast.D(ast.DVal{Name: "g", Expr: ast.Let("a", future(ast.Int(1)), force("a"))}),
	}

	st, err := Program(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, Stats{Futures: 4, Forced: 2}, st)
}
