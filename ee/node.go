// Package ee builds Earth Engine computation graphs.
//
// Nothing here evaluates anything. Values are immutable nodes that describe
// calls into the Earth Engine algorithm library and are serialized into the
// REST expression format by Serialize.
package ee

import (
	"fmt"
	"sort"
)

type nodeKind int

const (
	constantNode nodeKind = iota
	nullNode
	arrayNode
	dictNode
	invocationNode
	functionNode
	argumentNode
)

// Node is a single value of a computation graph.
type Node struct {
	kind     nodeKind
	constant any
	fn       string
	args     map[string]*Node
	items    []*Node
	params   []string
	body     *Node
	argName  string
	depth    int // Deepest function definition at or below this node.
}

// Value is anything that can be placed in a computation graph.
type Value interface {
	Node() *Node
}

// Node implements Value.
func (n *Node) Node() *Node { return n }

// Constant wraps a JSON-encodable literal.
func Constant(v any) *Node {
	if v == nil {
		return Null()
	}
	return &Node{kind: constantNode, constant: v}
}

// Null is the null value.
func Null() *Node {
	return &Node{kind: nullNode}
}

// Array builds a list value.
func Array(items ...Value) *Node {
	n := &Node{kind: arrayNode, items: make([]*Node, len(items))}
	for i, it := range items {
		n.items[i] = it.Node()
		n.depth = max(n.depth, n.items[i].depth)
	}
	return n
}

// Strings builds a list of string constants.
func Strings(ss ...string) *Node {
	vals := make([]Value, len(ss))
	for i, s := range ss {
		vals[i] = Constant(s)
	}
	return Array(vals...)
}

// Dict builds a dictionary value.
func Dict(entries map[string]Value) *Node {
	n := &Node{kind: dictNode, args: make(map[string]*Node, len(entries))}
	for k, v := range entries {
		n.args[k] = v.Node()
		n.depth = max(n.depth, n.args[k].depth)
	}
	return n
}

// Invoke calls the named algorithm. Nil arguments are dropped so optional
// parameters can be passed unconditionally.
func Invoke(fn string, args map[string]Value) *Node {
	n := &Node{kind: invocationNode, fn: fn, args: make(map[string]*Node, len(args))}
	for k, v := range args {
		if v == nil {
			continue
		}
		node := v.Node()
		if node == nil {
			continue
		}
		n.args[k] = node
		n.depth = max(n.depth, node.depth)
	}
	return n
}

// Lambda builds a one-argument function definition. The argument name is
// chosen after the body is known so that nested functions never shadow an
// outer variable.
func Lambda(build func(arg *Node) Value) *Node {
	arg := &Node{kind: argumentNode}
	body := build(arg).Node()
	depth := body.depth + 1
	arg.argName = fmt.Sprintf("_MAPPING_VAR_%d_0", depth)
	return &Node{kind: functionNode, params: []string{arg.argName}, body: body, depth: depth}
}

// Func returns the algorithm name of an invocation, or "".
func (n *Node) Func() string {
	if n.kind != invocationNode {
		return ""
	}
	return n.fn
}

// Arg returns the named argument of an invocation or dictionary entry.
func (n *Node) Arg(name string) *Node {
	if n.kind != invocationNode && n.kind != dictNode {
		return nil
	}
	return n.args[name]
}

// ConstantValue returns the literal held by a constant node.
func (n *Node) ConstantValue() (any, bool) {
	if n.kind != constantNode {
		return nil, false
	}
	return n.constant, true
}

// Items returns the elements of an array node.
func (n *Node) Items() []*Node {
	if n.kind != arrayNode {
		return nil
	}
	return n.items
}

// Body returns the body of a function definition.
func (n *Node) Body() *Node {
	if n.kind != functionNode {
		return nil
	}
	return n.body
}

// ArgumentName returns the variable name of an argument reference.
func (n *Node) ArgumentName() string {
	if n.kind != argumentNode {
		return ""
	}
	return n.argName
}

// Params returns the parameter names of a function definition.
func (n *Node) Params() []string {
	if n.kind != functionNode {
		return nil
	}
	return n.params
}

// children returns the direct descendants in a stable order.
func (n *Node) children() []*Node {
	switch n.kind {
	case arrayNode:
		return n.items
	case dictNode, invocationNode:
		keys := sortedKeys(n.args)
		out := make([]*Node, len(keys))
		for i, k := range keys {
			out[i] = n.args[k]
		}
		return out
	case functionNode:
		return []*Node{n.body}
	}
	return nil
}

// Walk visits every node reachable from root once, parents before children.
func Walk(root Value, visit func(*Node)) {
	seen := make(map[*Node]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		visit(n)
		for _, c := range n.children() {
			walk(c)
		}
	}
	walk(root.Node())
}

// Find returns every invocation of fn reachable from root.
func Find(root Value, fn string) []*Node {
	var found []*Node
	Walk(root, func(n *Node) {
		if n.Func() == fn {
			found = append(found, n)
		}
	})
	return found
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
