package lower

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/omp2gml/compiler/ast"
	"github.com/slowlang/omp2gml/compiler/check"
	"github.com/slowlang/omp2gml/compiler/clang"
)

const (
	refX = `{"kind": "ImplicitCastExpr", "castKind": "LValueToRValue", "inner": [
		{"kind": "DeclRefExpr", "referencedDecl": {"kind": "ParmVarDecl", "name": "x"}}]}`
	refN = `{"kind": "ImplicitCastExpr", "inner": [
		{"kind": "DeclRefExpr", "referencedDecl": {"kind": "ParmVarDecl", "name": "n"}}]}`
	refY = `{"kind": "ImplicitCastExpr", "inner": [
		{"kind": "DeclRefExpr", "referencedDecl": {"kind": "VarDecl", "name": "y"}}]}`
	lhsY = `{"kind": "DeclRefExpr", "referencedDecl": {"kind": "VarDecl", "name": "y"}}`

	callG = `{"kind": "CallExpr", "inner": [
		{"kind": "ImplicitCastExpr", "castKind": "FunctionToPointerDecay", "inner": [
			{"kind": "DeclRefExpr", "referencedDecl": {"kind": "FunctionDecl", "name": "g"}}]},
		` + refN + `]}`

	// int f(int x) { return x + 1; }
	incFunc = `{"kind": "FunctionDecl", "name": "f", "inner": [
		{"kind": "ParmVarDecl", "name": "x"},
		{"kind": "CompoundStmt", "inner": [
			{"kind": "ReturnStmt", "inner": [
				{"kind": "BinaryOperator", "opcode": "+", "inner": [` + refX + `, {"kind": "IntegerLiteral", "value": "1"}]}
			]}
		]}
	]}`

	taskAssignY = `{"kind": "OMPTaskDirective", "inner": [
		{"kind": "OMPSharedClause", "inner": [` + lhsY + `]},
		{"kind": "CapturedStmt", "inner": [
			{"kind": "CapturedDecl", "inner": [
				{"kind": "BinaryOperator", "opcode": "=", "inner": [` + lhsY + `, ` + callG + `]},
				{"kind": "ImplicitParamDecl", "name": "__context"}
			]}
		]}
	]}`

	taskwait = `{"kind": "OMPTaskwaitDirective"}`

	declY = `{"kind": "DeclStmt", "inner": [{"kind": "VarDecl", "name": "y"}]}`

	returnY1 = `{"kind": "ReturnStmt", "inner": [
		{"kind": "BinaryOperator", "opcode": "+", "inner": [` + refY + `, {"kind": "IntegerLiteral", "value": "1"}]}]}`
)

// fn wraps statements into int name(int n) { ... }.
func fn(name string, stmts ...string) string {
	return fmt.Sprintf(`{"kind": "FunctionDecl", "name": %q, "inner": [
		{"kind": "ParmVarDecl", "name": "n"},
		%s]}`, name, compound(stmts...))
}

func compound(stmts ...string) string {
	return `{"kind": "CompoundStmt", "inner": [` + strings.Join(stmts, ", ") + `]}`
}

// ifN is if (n) then else.
func ifN(branches ...string) string {
	return `{"kind": "IfStmt", "inner": [` + refN + `, ` + strings.Join(branches, ", ") + `]}`
}

// taskOf is #pragma omp task { stmts }.
func taskOf(stmts ...string) string {
	return `{"kind": "OMPTaskDirective", "inner": [
		{"kind": "CapturedStmt", "inner": [
			{"kind": "CapturedDecl", "inner": [` + compound(stmts...) + `]}]}]}`
}

func parse(t *testing.T, text string) *clang.Node {
	t.Helper()

	l, err := clang.Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, l, 1)

	return l[0]
}

// lowerDecl lowers one declaration.
// Whatever lowers must also pass the future checker.
func lowerDecl(t *testing.T, text string) (*ast.Decl, error) {
	t.Helper()

	d, err := New(Options{}).Decl(context.Background(), parse(t, text))
	if err != nil {
		return d, err
	}

	_, cerr := check.Program(context.Background(), ast.Program{d})
	require.NoError(t, cerr, "lowered declaration is rejected by check")

	return d, nil
}

func assertExpr(t *testing.T, exp, got *ast.Expr) {
	t.Helper()

	assert.True(t, ast.Equal(exp, got), "expected %#v\ngot      %#v", exp, got)
}

func assertDecl(t *testing.T, exp, got *ast.Decl) {
	t.Helper()

	assert.True(t, ast.DeclEqual(exp, got), "expected %#v\ngot      %#v", exp, got)
}

func TestLiterals(t *testing.T) {
	ctx := context.Background()
	c := New(Options{})

	for _, tc := range []struct {
		node string
		exp  ast.Const
	}{
		{`{"kind": "IntegerLiteral", "value": "42"}`, ast.Num{Value: 42}},
		{`{"kind": "IntegerLiteral", "value": 7}`, ast.Num{Value: 7}},
		{`{"kind": "StringLiteral", "value": "\"hi\""}`, ast.String{Value: `"hi"`}},
		{`{"kind": "CharacterLiteral", "value": 97}`, ast.Char{Value: "a"}},
		{`{"kind": "CXXBoolLiteralExpr", "value": true}`, ast.Bool{Value: true}},
	} {
		e, err := c.Expr(ctx, parse(t, tc.node))
		if assert.NoError(t, err, tc.node) {
			assertExpr(t, ast.E(ast.EConst{Value: tc.exp}), e)
		}
	}

	_, err := c.Expr(ctx, parse(t, `{"kind": "IntegerLiteral", "value": "0x"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOperator(t *testing.T) {
	for opcode, exp := range map[string]ast.InfixOp{
		"+": ast.Plus, "Add": ast.Plus,
		"-": ast.Minus, "Sub": ast.Minus,
		"*": ast.Times, "Mul": ast.Times,
		"/": ast.Div, "Div": ast.Div,
		"<": ast.Lt, "Less": ast.Lt,
		"<=": ast.Le, "LessEqual": ast.Le,
		">": ast.Gt, "Greater": ast.Gt,
		">=": ast.Ge, "GreaterEqual": ast.Ge,
		"==": ast.Eq, "Equal": ast.Eq,
		"!=": ast.Ne, "NotEqual": ast.Ne,
		"&&": ast.And, "LAnd": ast.And,
		"||": ast.Or, "LOr": ast.Or,
		"^": ast.Concat,
	} {
		op, err := Operator(opcode)
		if assert.NoError(t, err, opcode) {
			assert.Equal(t, exp, op, opcode)
		}
	}

	_, err := Operator("=")
	assert.ErrorIs(t, err, ErrAssignment)

	_, err = Operator("%")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), `"%"`)
}

func TestStandaloneAssignment(t *testing.T) {
	_, err := New(Options{}).Expr(context.Background(), parse(t, `{"kind": "BinaryOperator", "opcode": "=", "inner": [`+lhsY+`, {"kind": "IntegerLiteral", "value": "1"}]}`))
	assert.ErrorIs(t, err, ErrAssignment)
}

func TestFunction(t *testing.T) {
	d, err := lowerDecl(t, incFunc)
	require.NoError(t, err)

	exp := ast.D(ast.DVal{
		Name: "f",
		Expr: ast.E(ast.EFunc{
			Recursive: ast.Recursive,
			Name:      "f",
			Arg:       "x",
			Body:      ast.Infix(ast.Plus, ast.Var("x"), ast.Int(1)),
		}),
	})

	assertDecl(t, exp, d)
}

func TestTaskAndTaskwait(t *testing.T) {
	d, err := lowerDecl(t, fn("f", declY, taskAssignY, taskwait, returnY1))
	require.NoError(t, err)

	body := ast.Let("__future0", ast.E(ast.EFuture{Expr: ast.App(ast.Var("g"), ast.Var("n"))}),
		ast.Let("y", ast.E(ast.EForce{Expr: ast.Var("__future0")}),
			ast.Infix(ast.Plus, ast.Var("y"), ast.Int(1))))

	exp := ast.D(ast.DVal{
		Name: "f",
		Expr: ast.E(ast.EFunc{Recursive: ast.Recursive, Name: "f", Arg: "n", Body: body}),
	})

	assertDecl(t, exp, d)
}

func TestTaskBraces(t *testing.T) {
	// int f(int x) { int y; task { y = g(x); } taskwait; return y; }
	task := `{"kind": "OMPTaskDirective", "inner": [
		{"kind": "CapturedStmt", "inner": [
			{"kind": "CapturedDecl", "inner": [
				{"kind": "CompoundStmt", "inner": [
					{"kind": "BinaryOperator", "opcode": "=", "inner": [` + lhsY + `, {"kind": "CallExpr", "inner": [
						{"kind": "DeclRefExpr", "referencedDecl": {"name": "g"}}, ` + refX + `]}]}
				]}
			]}
		]}
	]}`

	text := `{"kind": "FunctionDecl", "name": "f", "inner": [
		{"kind": "ParmVarDecl", "name": "x"},
		{"kind": "CompoundStmt", "inner": [` + declY + `, ` + task + `, ` + taskwait + `,
			{"kind": "ReturnStmt", "inner": [` + refY + `]}]}]}`

	d, err := lowerDecl(t, text)
	require.NoError(t, err)

	body := ast.Let("__future0", ast.E(ast.EFuture{Expr: ast.App(ast.Var("g"), ast.Var("x"))}),
		ast.Let("y", ast.E(ast.EForce{Expr: ast.Var("__future0")}),
			ast.Var("y")))

	exp := ast.D(ast.DVal{
		Name: "f",
		Expr: ast.E(ast.EFunc{Recursive: ast.Recursive, Name: "f", Arg: "x", Body: body}),
	})

	assertDecl(t, exp, d)
}

func TestFutureNamesAreFresh(t *testing.T) {
	nodes := []*clang.Node{
		parse(t, fn("f", taskAssignY, taskwait, returnY1)),
		parse(t, fn("g", taskAssignY, taskwait, taskAssignY, taskwait, returnY1)),
	}

	p, err := New(Options{}).Program(context.Background(), nodes)
	require.NoError(t, err)
	require.Len(t, p, 2)

	var names []string

	ast.WalkProgram(p, func(e *ast.Expr) bool {
		if l, ok := e.Desc.(ast.ELet); ok && l.Name != "y" {
			names = append(names, l.Name)
		}

		return true
	})

	assert.Equal(t, []string{"__future0", "__future1", "__future2"}, names)

	st, err := check.Program(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, check.Stats{Futures: 3, Forced: 3}, st)
}

func TestTaskBlockBody(t *testing.T) {
	// #pragma omp task
	// { int a = n; y = a; }
	task := `{"kind": "OMPTaskDirective", "inner": [
		{"kind": "CapturedStmt", "inner": [
			{"kind": "CapturedDecl", "inner": [
				{"kind": "CompoundStmt", "inner": [
					{"kind": "DeclStmt", "inner": [{"kind": "VarDecl", "name": "a", "init": "c", "inner": [` + refN + `]}]},
					{"kind": "BinaryOperator", "opcode": "=", "inner": [` + lhsY + `,
						{"kind": "ImplicitCastExpr", "inner": [{"kind": "DeclRefExpr", "referencedDecl": {"kind": "VarDecl", "name": "a"}}]}]}
				]}
			]}
		]}
	]}`

	d, err := lowerDecl(t, fn("f", task, taskwait, returnY1))
	require.NoError(t, err)

	future := ast.Let("a", ast.Var("n"), ast.Var("a"))

	body := ast.Let("__future0", ast.E(ast.EFuture{Expr: future}),
		ast.Let("y", ast.E(ast.EForce{Expr: ast.Var("__future0")}),
			ast.Infix(ast.Plus, ast.Var("y"), ast.Int(1))))

	assertExpr(t, body, d.Desc.(ast.DVal).Expr.Desc.(ast.EFunc).Body)
}

func TestTaskWithoutAssignment(t *testing.T) {
	task := `{"kind": "OMPTaskDirective", "inner": [{"kind": "CapturedStmt", "inner": [` + callG + `]}]}`

	d, err := lowerDecl(t, fn("f", task, taskwait))
	require.NoError(t, err)

	body := ast.Let("__future0", ast.E(ast.EFuture{Expr: ast.App(ast.Var("g"), ast.Var("n"))}),
		ast.Let("_", ast.E(ast.EForce{Expr: ast.Var("__future0")}),
			ast.UnitValue()))

	assertExpr(t, body, d.Desc.(ast.DVal).Expr.Desc.(ast.EFunc).Body)
}

func TestTaskContextErrors(t *testing.T) {
	for name, text := range map[string]string{
		"nested":     fn("f", taskAssignY, taskAssignY, taskwait),
		"no_task":    fn("f", taskwait),
		"twice":      fn("f", taskAssignY, taskwait, taskwait),
		"not_waited": fn("f", taskAssignY, returnY1),
	} {
		_, err := lowerDecl(t, text)
		assert.ErrorIs(t, err, ErrTaskContext, name)
	}
}

func TestTaskScopedToBlock(t *testing.T) {
	assignY := `{"kind": "BinaryOperator", "opcode": "=", "inner": [` + lhsY + `, ` + callG + `]}`

	for name, text := range map[string]string{
		"spawn_in_nested_block":  fn("f", declY, compound(taskAssignY), taskwait, returnY1),
		"wait_in_nested_block":   fn("f", declY, taskAssignY, compound(taskwait), returnY1),
		"spawn_and_wait_in_if":   fn("f", declY, ifN(compound(taskAssignY), compound(taskwait)), returnY1),
		"wait_in_then_branch":    fn("f", declY, taskAssignY, ifN(compound(taskwait)), returnY1),
		"bare_task_branch":       fn("f", declY, ifN(taskAssignY), taskwait, returnY1),
		"bare_taskwait_branch":   fn("f", declY, taskAssignY, ifN(taskwait), returnY1),
		"bare_task_else_branch":  fn("f", declY, ifN(compound(), taskAssignY), returnY1),
		"spawn_in_returned_expr": fn("f", declY, `{"kind": "ReturnStmt", "inner": [`+taskAssignY+`]}`),
		"taskwait_in_task_body":  fn("f", declY, taskOf(assignY, taskwait), taskwait, returnY1),
		"taskwait_before_assign": fn("f", declY, taskOf(taskwait, assignY), taskwait, returnY1),
		"task_in_task_body":      fn("f", declY, taskOf(taskAssignY, assignY), taskwait, returnY1),
	} {
		_, err := lowerDecl(t, text)
		assert.ErrorIs(t, err, ErrTaskContext, name)
	}
}

func TestTaskInsideBranch(t *testing.T) {
	d, err := lowerDecl(t, fn("f", declY, ifN(compound(taskAssignY, taskwait)), returnY1))
	require.NoError(t, err)

	then := ast.Let("__future0", ast.E(ast.EFuture{Expr: ast.App(ast.Var("g"), ast.Var("n"))}),
		ast.Let("y", ast.E(ast.EForce{Expr: ast.Var("__future0")}),
			ast.UnitValue()))

	body := ast.Let("_", ast.E(ast.EIf{Cond: ast.Var("n"), Then: then}),
		ast.Infix(ast.Plus, ast.Var("y"), ast.Int(1)))

	assertExpr(t, body, d.Desc.(ast.DVal).Expr.Desc.(ast.EFunc).Body)
}

func TestTaskwaitInsideTaskBody(t *testing.T) {
	assignY := `{"kind": "BinaryOperator", "opcode": "=", "inner": [` + lhsY + `, ` + callG + `]}`

	_, err := lowerDecl(t, fn("f", declY, taskOf(assignY, taskwait), taskwait, returnY1))
	require.ErrorIs(t, err, ErrTaskContext)
	assert.Contains(t, err.Error(), "taskwait inside of task __future0 body")

	_, err = lowerDecl(t, fn("f", declY, taskOf(taskAssignY, assignY), taskwait, returnY1))
	require.ErrorIs(t, err, ErrTaskContext)
	assert.Contains(t, err.Error(), "task inside of task __future0 body")
}

func TestTaskStateIsPerFunction(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	_, err := c.Decl(ctx, parse(t, fn("f", taskAssignY, returnY1)))
	require.ErrorIs(t, err, ErrTaskContext)

	_, err = c.Decl(ctx, parse(t, fn("g", taskAssignY, taskwait, returnY1)))
	assert.NoError(t, err)

	_, err = c.Decl(ctx, parse(t, fn("h", taskOf(taskwait))))
	require.ErrorIs(t, err, ErrTaskContext)

	_, err = c.Decl(ctx, parse(t, fn("g", taskAssignY, taskwait, returnY1)))
	assert.NoError(t, err)
}

func TestErrorPath(t *testing.T) {
	_, err := New(Options{}).Program(context.Background(), []*clang.Node{
		parse(t, incFunc),
		parse(t, fn("g", declY, taskwait)),
	})
	require.ErrorIs(t, err, ErrTaskContext)

	assert.Contains(t, err.Error(), "inner[1] FunctionDecl g")
	assert.Contains(t, err.Error(), "inner[1] CompoundStmt")
	assert.Contains(t, err.Error(), "inner[1] OMPTaskwaitDirective")
}

func TestArity(t *testing.T) {
	twoParams := `{"kind": "FunctionDecl", "name": "add", "inner": [
		{"kind": "ParmVarDecl", "name": "a"},
		{"kind": "ParmVarDecl", "name": "b"},
		{"kind": "CompoundStmt"}]}`

	_, err := lowerDecl(t, twoParams)
	assert.ErrorIs(t, err, ErrUnsupportedArity)

	twoArgs := `{"kind": "CallExpr", "inner": [
		{"kind": "DeclRefExpr", "referencedDecl": {"name": "add"}}, ` + refN + `, ` + refN + `]}`

	_, err = New(Options{}).Expr(context.Background(), parse(t, twoArgs))
	assert.ErrorIs(t, err, ErrUnsupportedArity)
}

func TestZeroArity(t *testing.T) {
	// int main() { return g(); }
	d, err := lowerDecl(t, `{"kind": "FunctionDecl", "name": "main", "inner": [
		{"kind": "CompoundStmt", "inner": [
			{"kind": "ReturnStmt", "inner": [
				{"kind": "CallExpr", "inner": [{"kind": "DeclRefExpr", "referencedDecl": {"name": "g"}}]}
			]}
		]}
	]}`)
	require.NoError(t, err)

	exp := ast.D(ast.DVal{
		Name: "main",
		Expr: ast.E(ast.EFunc{
			Recursive: ast.Recursive,
			Name:      "main",
			Arg:       "_",
			Body:      ast.App(ast.Var("g"), ast.UnitValue()),
		}),
	})

	assertDecl(t, exp, d)
}

func TestPrototype(t *testing.T) {
	d, err := lowerDecl(t, `{"kind": "FunctionDecl", "name": "g", "inner": [{"kind": "ParmVarDecl", "name": "n"}]}`)
	require.NoError(t, err)

	assertDecl(t, ast.D(ast.DExternal{ID: ast.Id{Name: "g"}}), d)
}

func TestBlockOrder(t *testing.T) {
	// { int a = 1; g(a); b = 2; a + b; }
	block := `{"kind": "CompoundStmt", "inner": [
		{"kind": "DeclStmt", "inner": [
			{"kind": "VarDecl", "name": "u"},
			{"kind": "VarDecl", "name": "a", "init": "c", "inner": [{"kind": "IntegerLiteral", "value": "1"}]}
		]},
		{"kind": "CallExpr", "inner": [
			{"kind": "DeclRefExpr", "referencedDecl": {"name": "g"}},
			{"kind": "DeclRefExpr", "referencedDecl": {"name": "a"}}]},
		{"kind": "BinaryOperator", "opcode": "=", "inner": [
			{"kind": "DeclRefExpr", "referencedDecl": {"name": "b"}},
			{"kind": "IntegerLiteral", "value": "2"}]},
		{"kind": "BinaryOperator", "opcode": "+", "inner": [
			{"kind": "DeclRefExpr", "referencedDecl": {"name": "a"}},
			{"kind": "DeclRefExpr", "referencedDecl": {"name": "b"}}]}
	]}`

	e, err := New(Options{}).Expr(context.Background(), parse(t, block))
	require.NoError(t, err)

	exp := ast.Let("a", ast.Int(1),
		ast.Let("_", ast.App(ast.Var("g"), ast.Var("a")),
			ast.Let("b", ast.Int(2),
				ast.Infix(ast.Plus, ast.Var("a"), ast.Var("b")))))

	assertExpr(t, exp, e)

	e, err = New(Options{}).Expr(context.Background(), parse(t, `{"kind": "CompoundStmt"}`))
	require.NoError(t, err)
	assertExpr(t, ast.UnitValue(), e)
}

func TestUnsupportedTarget(t *testing.T) {
	// *p = 1;
	assign := `{"kind": "BinaryOperator", "opcode": "=", "inner": [
		{"kind": "UnaryOperator", "opcode": "*", "inner": [{"kind": "DeclRefExpr", "referencedDecl": {"name": "p"}}]},
		{"kind": "IntegerLiteral", "value": "1"}]}`

	_, err := lowerDecl(t, fn("f", assign))
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}

func TestIfWithoutElse(t *testing.T) {
	n := parse(t, `{"kind": "IfStmt", "inner": [
		{"kind": "BinaryOperator", "opcode": "<", "inner": [`+refN+`, {"kind": "IntegerLiteral", "value": "2"}]},
		{"kind": "ReturnStmt", "inner": [`+refN+`]}
	]}`)

	e, err := New(Options{}).Expr(context.Background(), n)
	require.NoError(t, err)

	exp := ast.E(ast.EIf{
		Cond: ast.Infix(ast.Lt, ast.Var("n"), ast.Int(2)),
		Then: ast.Var("n"),
	})

	assertExpr(t, exp, e)
	assert.Nil(t, e.Desc.(ast.EIf).Else)
}

func TestUnhandled(t *testing.T) {
	// while (n) g(n); return n;
	loop := `{"kind": "WhileStmt", "inner": [` + refN + `, ` + callG + `]}`

	d, err := lowerDecl(t, fn("f", loop, `{"kind": "ReturnStmt", "inner": [`+refN+`]}`))
	require.NoError(t, err)

	body := d.Desc.(ast.DVal).Expr.Desc.(ast.EFunc).Body

	l, ok := body.Desc.(ast.ELet)
	require.True(t, ok, "%#v", body.Desc)

	kind, raw, ok := ast.AsUnhandled(l.Value)
	require.True(t, ok)
	assert.Equal(t, "WhileStmt", kind)
	assert.Contains(t, string(raw), `"kind":"WhileStmt"`)
	assert.Contains(t, string(raw), `"name":"g"`)

	assertExpr(t, ast.Var("n"), l.Body)

	d, err = lowerDecl(t, `{"kind": "TypedefDecl", "name": "myint"}`)
	require.NoError(t, err)

	x, ok := d.Desc.(ast.DExp)
	require.True(t, ok)

	kind, _, ok = ast.AsUnhandled(x.Expr)
	assert.True(t, ok)
	assert.Equal(t, "TypedefDecl", kind)
}

func TestProgramSkipsSystem(t *testing.T) {
	l, err := clang.Parse([]byte(`{"kind": "TranslationUnitDecl", "inner": [
		{"kind": "TypedefDecl", "name": "__int128_t", "isImplicit": true},
		{"kind": "FunctionDecl", "name": "printf",
			"loc": {"file": "/usr/include/stdio.h", "line": 356, "includedFrom": {"file": "fib.c"}}},
		{"kind": "FunctionDecl", "name": "puts", "loc": {"line": 600}},
		` + strings.Replace(incFunc, `"name": "f",`, `"name": "f", "loc": {"file": "fib.c", "line": 3},`, 1) + `
	]}`))
	require.NoError(t, err)

	p, err := New(Options{}).Program(context.Background(), l)
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Equal(t, "f", p[0].Desc.(ast.DVal).Name)

	p, err = New(Options{KeepSystem: true}).Program(context.Background(), l)
	require.NoError(t, err)
	require.Len(t, p, 4)

	_, ok := p[0].Desc.(ast.DExp)
	assert.True(t, ok)
	assertDecl(t, ast.D(ast.DExternal{ID: ast.Id{Name: "printf"}}), p[1])
	assertDecl(t, ast.D(ast.DExternal{ID: ast.Id{Name: "puts"}}), p[2])
}

func TestIndependentConverters(t *testing.T) {
	text := fn("f", declY, taskAssignY, taskwait, returnY1)

	exp, err := lowerDecl(t, text)
	require.NoError(t, err)

	const workers = 8

	res := make([]*ast.Decl, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		n := parse(t, text)

		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			res[i], errs[i] = New(Options{}).Decl(context.Background(), n)
		}(i)
	}

	wg.Wait()

	for i := range res {
		if assert.NoError(t, errs[i]) {
			assertDecl(t, exp, res[i])
		}
	}
}
