package exprlang

// node is one vertex of the parsed expression tree. Evaluation is defined
// per node type in interp.go.
type node interface {
	isNode()
}

// literalNode holds an int64, float64, string, bool or nil constant.
type literalNode struct {
	value any
}

// identNode is a free identifier resolved through the environment.
type identNode struct {
	name string
}

// unaryNode is !x or -x.
type unaryNode struct {
	op      string
	operand node
}

// binaryNode covers arithmetic, comparison, equality and the eager parts of
// the operator set. Boolean && and || short-circuit in the interpreter.
type binaryNode struct {
	op    string
	left  node
	right node
}

// coalesceNode is left ?? right; right evaluates only when left is nil.
type coalesceNode struct {
	left  node
	right node
}

// conditionalNode is cond ? then : else. Only the selected branch is
// evaluated.
type conditionalNode struct {
	cond     node
	thenExpr node
	elseExpr node
}

// memberNode is obj.name.
type memberNode struct {
	obj  node
	name string
}

// indexNode is obj[idx], or obj[^n] when fromEnd is set.
type indexNode struct {
	obj     node
	idx     node
	fromEnd bool
}

// callNode is recv.name(args), or a bare function call when recv is nil.
type callNode struct {
	recv node
	name string
	args []node
}

// lambdaNode is a single-parameter predicate or selector: x => body. It is
// only legal as a call argument.
type lambdaNode struct {
	param string
	body  node
}

func (literalNode) isNode()     {}
func (identNode) isNode()       {}
func (unaryNode) isNode()       {}
func (binaryNode) isNode()      {}
func (coalesceNode) isNode()    {}
func (conditionalNode) isNode() {}
func (memberNode) isNode()      {}
func (indexNode) isNode()       {}
func (callNode) isNode()        {}
func (lambdaNode) isNode()      {}
