package clang

import (
	"bytes"
	"encoding/json"

	"tlog.app/go/errors"
)

type (
	// Node is one node of a clang -ast-dump=json tree.
	// Only the keys the lowering pass reads are decoded,
	// Raw keeps the whole subtree for placeholders.
	Node struct {
		ID   string `json:"id,omitempty"`
		Kind string `json:"kind"`

		Name   string          `json:"name,omitempty"`
		Value  json.RawMessage `json:"value,omitempty"`
		Opcode string          `json:"opcode,omitempty"`
		Init   string          `json:"init,omitempty"`

		IsImplicit bool `json:"isImplicit,omitempty"`

		ReferencedDecl *Node `json:"referencedDecl,omitempty"`

		Loc   *Loc   `json:"loc,omitempty"`
		Range *Range `json:"range,omitempty"`

		Inner []*Node `json:"inner,omitempty"`

		Raw json.RawMessage `json:"-"`
	}

	// Loc is a source location. File and IncludedFrom are only present
	// when the file differs from the previously dumped location.
	Loc struct {
		File         string   `json:"file,omitempty"`
		IncludedFrom *FileRef `json:"includedFrom,omitempty"`
		Line         int      `json:"line,omitempty"`
		Col          int      `json:"col,omitempty"`
		SpellingLoc  *Loc     `json:"spellingLoc,omitempty"`
		ExpansionLoc *Loc     `json:"expansionLoc,omitempty"`
	}

	Range struct {
		Begin *Loc `json:"begin,omitempty"`
		End   *Loc `json:"end,omitempty"`
	}

	FileRef struct {
		File string `json:"file"`
	}
)

// Parse decodes a dump. The root may be a single node or an array of nodes.
func Parse(data []byte) ([]*Node, error) {
	data = bytes.TrimSpace(data)

	if len(data) != 0 && data[0] == '[' {
		var l []*Node

		err := json.Unmarshal(data, &l)
		if err != nil {
			return nil, errors.Wrap(err, "node list")
		}

		return l, nil
	}

	var n Node

	err := json.Unmarshal(data, &n)
	if err != nil {
		return nil, errors.Wrap(err, "node")
	}

	return []*Node{&n}, nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node

	var p plain

	err := json.Unmarshal(data, &p)
	if err != nil {
		return err
	}

	*n = Node(p)

	var b bytes.Buffer

	err = json.Compact(&b, data)
	if err != nil {
		return err
	}

	n.Raw = b.Bytes()

	return nil
}

// Child returns the i-th inner node or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Inner) {
		return nil
	}

	return n.Inner[i]
}

// RefName is the name of the referenced declaration of a DeclRefExpr.
func (n *Node) RefName() string {
	if n == nil || n.ReferencedDecl == nil {
		return ""
	}

	return n.ReferencedDecl.Name
}

// Unwrap strips implicit casts.
func (n *Node) Unwrap() *Node {
	for n != nil && n.Kind == "ImplicitCastExpr" && len(n.Inner) == 1 {
		n = n.Inner[0]
	}

	return n
}

// IsAssign reports whether n is a plain assignment.
func (n *Node) IsAssign() bool {
	return n != nil && n.Kind == "BinaryOperator" && n.Opcode == "="
}
