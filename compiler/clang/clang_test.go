package clang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	l, err := Parse([]byte(`{
		"id": "0x1", "kind": "BinaryOperator", "opcode": "+",
		"inner": [
			{"kind": "ImplicitCastExpr", "castKind": "LValueToRValue", "inner": [
				{"kind": "DeclRefExpr", "referencedDecl": {"id": "0x2", "kind": "ParmVarDecl", "name": "x"}}
			]},
			{"kind": "IntegerLiteral", "value": "1"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, l, 1)

	n := l[0]
	assert.Equal(t, "BinaryOperator", n.Kind)
	assert.Equal(t, "+", n.Opcode)
	require.Len(t, n.Inner, 2)

	ref := n.Child(0).Unwrap()
	assert.Equal(t, "DeclRefExpr", ref.Kind)
	assert.Equal(t, "x", ref.RefName())

	assert.Equal(t, `"1"`, string(n.Child(1).Value))
	assert.Nil(t, n.Child(2))

	assert.Equal(t, `{"kind":"IntegerLiteral","value":"1"}`, string(n.Child(1).Raw))
	assert.Contains(t, string(n.Raw), `"castKind":"LValueToRValue"`)

	l, err = Parse([]byte(` [{"kind": "A"}, {"kind": "B"}]`))
	require.NoError(t, err)
	require.Len(t, l, 2)
	assert.Equal(t, "B", l[1].Kind)

	_, err = Parse([]byte(`{"kind": `))
	assert.Error(t, err)
}

func TestIsAssign(t *testing.T) {
	assert.True(t, (&Node{Kind: "BinaryOperator", Opcode: "="}).IsAssign())
	assert.False(t, (&Node{Kind: "BinaryOperator", Opcode: "=="}).IsAssign())
	assert.False(t, (&Node{Kind: "CompoundAssignOperator", Opcode: "+="}).IsAssign())
	assert.False(t, (*Node)(nil).IsAssign())
}

func TestFilesIncluded(t *testing.T) {
	l, err := Parse([]byte(`[
		{"kind": "TypedefDecl", "isImplicit": true},
		{"kind": "FunctionDecl", "name": "printf",
			"loc": {"file": "/usr/include/stdio.h", "line": 356, "includedFrom": {"file": "fib.c"}},
			"range": {"begin": {"line": 356}, "end": {"line": 357}}},
		{"kind": "FunctionDecl", "name": "atoi",
			"loc": {"file": "/usr/include/stdlib.h", "line": 105, "includedFrom": {"file": "fib.c"}}},
		{"kind": "FunctionDecl", "name": "exit", "loc": {"line": 624}},
		{"kind": "FunctionDecl", "name": "fib",
			"loc": {"file": "fib.c", "line": 5},
			"inner": [
				{"kind": "CompoundStmt", "range": {
					"begin": {"spellingLoc": {"file": "/usr/include/macros.h", "includedFrom": {"file": "fib.c"}}, "expansionLoc": {"file": "fib.c"}},
					"end": {"line": 16}
				}}
			]},
		{"kind": "FunctionDecl", "name": "main", "loc": {"line": 18}}
	]`))
	require.NoError(t, err)

	var f Files

	var got []bool
	for _, n := range l {
		got = append(got, f.Decl(n))
	}

	assert.Equal(t, []bool{false, true, true, true, false, false}, got)
	assert.Equal(t, "fib.c", f.File())
}

func TestFilter(t *testing.T) {
	b, err := Filter([]byte(`{
		"id": "0x55d0",
		"kind": "FunctionDecl",
		"loc": {"offset": 60, "line": 5},
		"range": {"begin": {}, "end": {}},
		"name": "fib",
		"mangledName": "fib",
		"type": {"qualType": "long long (int)"},
		"inner": [
			{"id": "0x1", "kind": "ParmVarDecl", "isUsed": true, "name": "n", "type": {"qualType": "int"}},
			{"kind": "IntegerLiteral", "valueCategory": "prvalue", "value": "20", "big": 12345678901234567890, "f": 1.50},
			{"kind": "ImplicitCastExpr", "castKind": "IntegralCast", "inner": []},
			{"kind": "StringLiteral", "value": "\"<fib>\""},
			null, true
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, `{"kind":"FunctionDecl","name":"fib","inner":[`+
		`{"kind":"ParmVarDecl","name":"n"},`+
		`{"kind":"IntegerLiteral","value":"20","big":12345678901234567890,"f":1.50},`+
		`{"kind":"ImplicitCastExpr","inner":[]},`+
		`{"kind":"StringLiteral","value":"\"<fib>\""},`+
		`null,true]}`, string(b))

	_, err = Filter([]byte(`{"kind": "A"} {"kind": "B"}`))
	assert.Error(t, err)

	_, err = Filter([]byte(`{"kind": `))
	assert.Error(t, err)
}

func TestIsDiagnostic(t *testing.T) {
	for _, k := range []string{"id", "loc", "range", "mangledName", "isUsed", "type", "valueCategory", "castKind", "parentDeclContextId", "explicitCastKind", "qualType"} {
		assert.True(t, IsDiagnostic(k), k)
	}

	for _, k := range []string{"kind", "name", "inner", "opcode", "value", "referencedDecl", "isImplicit", "init", "previousDecl"} {
		assert.False(t, IsDiagnostic(k), k)
	}
}
