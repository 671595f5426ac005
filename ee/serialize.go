package ee

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Expression is the Earth Engine REST representation of a computation graph.
type Expression struct {
	Result string                `json:"result"`
	Values map[string]*ValueNode `json:"values"`
}

// ValueNode is one entry of an Expression. Exactly one field is set.
type ValueNode struct {
	ConstantValue           any                 `json:"constantValue,omitempty"`
	NullValue               string              `json:"nullValue,omitempty"`
	ArrayValue              *ArrayValue         `json:"arrayValue,omitempty"`
	DictionaryValue         *DictionaryValue    `json:"dictionaryValue,omitempty"`
	FunctionDefinitionValue *FunctionDefinition `json:"functionDefinitionValue,omitempty"`
	FunctionInvocationValue *FunctionInvocation `json:"functionInvocationValue,omitempty"`
	ArgumentReference       string              `json:"argumentReference,omitempty"`
	ValueReference          string              `json:"valueReference,omitempty"`
}

type ArrayValue struct {
	Values []*ValueNode `json:"values"`
}

type DictionaryValue struct {
	Values map[string]*ValueNode `json:"values"`
}

type FunctionDefinition struct {
	ArgumentNames []string `json:"argumentNames"`
	Body          string   `json:"body"`
}

type FunctionInvocation struct {
	FunctionName string                `json:"functionName"`
	Arguments    map[string]*ValueNode `json:"arguments"`
}

// serializer hash-conses the graph so structurally identical subgraphs are
// emitted once, whatever pointers they were built from.
type serializer struct {
	keys    map[*Node]string
	byKey   map[string]*Node
	refs    map[string]int
	hoisted map[string]bool
	ids     map[string]string
}

// Serialize converts a graph into an Expression. Nodes referenced more than
// once, function bodies and the root are stored in Values under ids assigned
// in post-order; everything else is inlined. The same graph always yields
// the same Expression.
func Serialize(root Value) (*Expression, error) {
	if root == nil || root.Node() == nil {
		return nil, eris.New("ee: nothing to serialize")
	}
	s := &serializer{
		keys:    make(map[*Node]string),
		byKey:   make(map[string]*Node),
		refs:    make(map[string]int),
		hoisted: make(map[string]bool),
		ids:     make(map[string]string),
	}
	rootKey := s.key(root.Node())
	s.countRefs(rootKey, make(map[string]bool))
	s.hoisted[rootKey] = true
	s.assignIDs(rootKey, make(map[string]bool))

	expr := &Expression{Result: s.ids[rootKey], Values: make(map[string]*ValueNode, len(s.ids))}
	for key, id := range s.ids {
		expr.Values[id] = s.encode(s.byKey[key], true)
	}
	return expr, nil
}

// MarshalGraph serializes root straight to JSON.
func MarshalGraph(root Value) ([]byte, error) {
	expr, err := Serialize(root)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(expr)
	if err != nil {
		return nil, eris.Wrap(err, "ee: marshal expression")
	}
	return b, nil
}

func (s *serializer) key(n *Node) string {
	if k, ok := s.keys[n]; ok {
		return k
	}
	var b strings.Builder
	switch n.kind {
	case constantNode:
		enc, err := json.Marshal(n.constant)
		if err != nil {
			// Unencodable constants still need a stable identity.
			enc = []byte(strconv.Quote(err.Error()))
		}
		b.WriteString("c:")
		b.Write(enc)
	case nullNode:
		b.WriteString("n")
	case arrayNode:
		b.WriteString("a[")
		for _, it := range n.items {
			b.WriteString(s.key(it))
			b.WriteByte(',')
		}
		b.WriteString("]")
	case dictNode, invocationNode:
		if n.kind == dictNode {
			b.WriteString("d{")
		} else {
			b.WriteString("f:" + n.fn + "{")
		}
		for _, k := range sortedKeys(n.args) {
			b.WriteString(strconv.Quote(k) + "=" + s.key(n.args[k]) + ",")
		}
		b.WriteString("}")
	case functionNode:
		b.WriteString("l:" + strings.Join(n.params, ",") + ":" + s.key(n.body))
	case argumentNode:
		b.WriteString("r:" + n.argName)
	}
	sum := sha256.Sum256([]byte(b.String()))
	k := hex.EncodeToString(sum[:])
	s.keys[n] = k
	if _, ok := s.byKey[k]; !ok {
		s.byKey[k] = n
	}
	return k
}

func (s *serializer) countRefs(key string, seen map[string]bool) {
	if seen[key] {
		return
	}
	seen[key] = true
	n := s.byKey[key]
	if n.kind == functionNode {
		s.hoisted[s.key(n.body)] = true
	}
	for _, c := range n.children() {
		ck := s.key(c)
		s.refs[ck]++
		if s.refs[ck] > 1 && c.kind != constantNode && c.kind != nullNode && c.kind != argumentNode {
			s.hoisted[ck] = true
		}
		s.countRefs(ck, seen)
	}
}

func (s *serializer) assignIDs(key string, seen map[string]bool) {
	if seen[key] {
		return
	}
	seen[key] = true
	for _, c := range s.byKey[key].children() {
		s.assignIDs(s.key(c), seen)
	}
	if s.hoisted[key] {
		s.ids[key] = strconv.Itoa(len(s.ids))
	}
}

func (s *serializer) encode(n *Node, top bool) *ValueNode {
	k := s.key(n)
	if !top && s.hoisted[k] {
		return &ValueNode{ValueReference: s.ids[k]}
	}
	switch n.kind {
	case constantNode:
		return &ValueNode{ConstantValue: n.constant}
	case nullNode:
		return &ValueNode{NullValue: "NULL_VALUE"}
	case arrayNode:
		vals := make([]*ValueNode, len(n.items))
		for i, it := range n.items {
			vals[i] = s.encode(it, false)
		}
		return &ValueNode{ArrayValue: &ArrayValue{Values: vals}}
	case dictNode:
		vals := make(map[string]*ValueNode, len(n.args))
		for name, v := range n.args {
			vals[name] = s.encode(v, false)
		}
		return &ValueNode{DictionaryValue: &DictionaryValue{Values: vals}}
	case invocationNode:
		args := make(map[string]*ValueNode, len(n.args))
		for name, v := range n.args {
			args[name] = s.encode(v, false)
		}
		return &ValueNode{FunctionInvocationValue: &FunctionInvocation{FunctionName: n.fn, Arguments: args}}
	case functionNode:
		return &ValueNode{FunctionDefinitionValue: &FunctionDefinition{
			ArgumentNames: n.params,
			Body:          s.ids[s.key(n.body)],
		}}
	case argumentNode:
		return &ValueNode{ArgumentReference: n.argName}
	}
	return &ValueNode{NullValue: "NULL_VALUE"}
}
