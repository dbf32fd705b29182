/*
Package compiler lowers a parsed contract into a program for the stack
machine, together with a function ABI, an unlocking-input builder, and
a debug-information table mapping every emitted instruction back to
source.

Constructor arguments are folded into the program as compile-time
constants. Helper functions are inlined at every call site: the target
machine has no call/return, and inlining lets statement stepping walk
into a helper with no special handling. Contracts with more than one
entrypoint get a selector-dispatch prologue comparing a leading
selector value against each entrypoint index in declaration order.
*/
package compiler

import (
	"github.com/Manyfestation/silverscript/ast"
	"github.com/Manyfestation/silverscript/vm"
)

// ABIParam is one named, typed function parameter.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionSig describes one callable surface of a compiled contract.
// SelectorIndex is nil when the contract has a single entrypoint (no
// dispatch) and for helper functions, which cannot be invoked
// directly.
type FunctionSig struct {
	Name          string     `json:"name"`
	Entrypoint    bool       `json:"entrypoint"`
	Params        []ABIParam `json:"params"`
	SelectorIndex *int       `json:"selector_index,omitempty"`
}

// CompiledContract is the immutable result of compilation.
type CompiledContract struct {
	ContractName    string        `json:"contract_name"`
	Program         []byte        `json:"program"`
	ABI             []FunctionSig `json:"abi"`
	WithoutSelector bool          `json:"without_selector"`
	DebugInfo       Table         `json:"debug_info"`
}

// Function returns the ABI entry with the given name.
func (c *CompiledContract) Function(name string) (FunctionSig, bool) {
	for _, f := range c.ABI {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionSig{}, false
}

// Entrypoints returns the ABI entries invokable by an unlocking input,
// in declaration order.
func (c *CompiledContract) Entrypoints() []FunctionSig {
	var res []FunctionSig
	for _, f := range c.ABI {
		if f.Entrypoint {
			res = append(res, f)
		}
	}
	return res
}

// Compile lowers contract against concrete constructor argument values
// (textual form, per the parameter's declared type) into a
// CompiledContract, or fails with an Error carrying a source span when
// one is derivable.
func Compile(contract *ast.Contract, ctorArgs []string) (*CompiledContract, error) {
	funcs := make(map[string]*ast.Function)
	for _, fn := range contract.Functions {
		if lookupBuiltin(fn.Name) != nil {
			return nil, errorf(fn.Span, "function %s shadows a builtin", fn.Name)
		}
		if _, ok := funcs[fn.Name]; ok {
			return nil, errorf(fn.Span, "duplicate function %s", fn.Name)
		}
		funcs[fn.Name] = fn
	}
	entrypoints := contract.Entrypoints()
	if len(entrypoints) == 0 {
		return nil, errorf(contract.Span, "contract %s has no entrypoint function", contract.Name)
	}

	if len(ctorArgs) != len(contract.Params) {
		return nil, errorf(contract.Span, "contract %s takes %d constructor arguments, got %d",
			contract.Name, len(contract.Params), len(ctorArgs))
	}
	consts := make(map[string]Binding)
	var constBindings []Binding
	for i, p := range contract.Params {
		if !KnownType(p.TypeName) {
			return nil, errorf(contract.Span, "unknown type %s for constructor parameter %s", p.TypeName, p.Name)
		}
		if _, ok := consts[p.Name]; ok {
			return nil, errorf(contract.Span, "duplicate constructor parameter %s", p.Name)
		}
		data, err := EncodeValue(p.TypeName, ctorArgs[i])
		if err != nil {
			return nil, errorf(contract.Span, "constructor argument %s: %s", p.Name, err)
		}
		bind := Binding{
			Name:       p.Name,
			Origin:     OriginContractParam,
			TypeName:   p.TypeName,
			StackDepth: -1,
			Const:      data,
		}
		consts[p.Name] = bind
		constBindings = append(constBindings, bind)
	}

	abi := make([]FunctionSig, 0, len(contract.Functions))
	selector := 0
	for _, fn := range contract.Functions {
		sig := FunctionSig{Name: fn.Name, Entrypoint: fn.Entrypoint}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, ABIParam{Name: p.Name, Type: p.TypeName})
		}
		if fn.Entrypoint && len(entrypoints) > 1 {
			idx := selector
			sig.SelectorIndex = &idx
			selector++
		}
		abi = append(abi, sig)
	}

	b := &builder{}
	env := &compileEnv{funcs: funcs, consts: consts, constBindings: constBindings}

	if len(entrypoints) == 1 {
		if err := compileFunction(b, env, entrypoints[0], nil, len(entrypoints[0].Params), nil); err != nil {
			return nil, err
		}
		b.addOp(vm.OP_TRUE)
	} else {
		for i, fn := range entrypoints {
			b.addOp(vm.OP_DUP)
			b.addPushInt64(int64(i))
			b.addOp(vm.OP_NUMEQUAL)
			b.addOp(vm.OP_IF)
			b.addOp(vm.OP_DROP)
			if err := compileFunction(b, env, fn, nil, len(fn.Params), nil); err != nil {
				return nil, err
			}
			b.addOp(vm.OP_TRUE)
			b.addOp(vm.OP_ELSE)
		}
		b.addOp(vm.OP_FAIL)
		for range entrypoints {
			b.addOp(vm.OP_ENDIF)
		}
	}

	return &CompiledContract{
		ContractName:    contract.Name,
		Program:         b.program,
		ABI:             abi,
		WithoutSelector: len(entrypoints) == 1,
		DebugInfo:       b.finish(),
	}, nil
}

// compileEnv is the per-compilation environment shared by every frame.
type compileEnv struct {
	funcs         map[string]*ast.Function
	consts        map[string]Binding
	constBindings []Binding
}

// fnContext compiles one function instantiation: an entrypoint body or
// one inlined expansion of a helper.
type fnContext struct {
	b        *builder
	env      *compileEnv
	frame    *FrameInfo
	vars     map[string]Binding
	depth    int      // current runtime stack height
	inlining []string // enclosing inlined function names, for cycle detection

	stmtSpan        ast.Span
	boundaryPending bool
}

// compileFunction emits fn's body. At body start the runtime stack
// holds the function's arguments as its top len(params) slots, ending
// at height baseDepth.
func compileFunction(b *builder, env *compileEnv, fn *ast.Function, parent *FrameInfo, baseDepth int, inlining []string) error {
	var depth uint32
	if parent != nil {
		depth = parent.Depth + 1
	}
	frame := b.newFrame(fn.Name, parent, depth)
	if parent == nil {
		frame.Bindings = append(frame.Bindings, env.constBindings...)
	}

	c := &fnContext{
		b:        b,
		env:      env,
		frame:    frame,
		vars:     make(map[string]Binding),
		depth:    baseDepth,
		inlining: append(inlining, fn.Name),
	}
	for i, p := range fn.Params {
		if !KnownType(p.TypeName) {
			return errorf(fn.Span, "unknown type %s for parameter %s of %s", p.TypeName, p.Name, fn.Name)
		}
		if _, ok := c.vars[p.Name]; ok {
			return errorf(fn.Span, "duplicate parameter %s in %s", p.Name, fn.Name)
		}
		bind := Binding{
			Name:       p.Name,
			Origin:     OriginFunctionParam,
			TypeName:   p.TypeName,
			StackDepth: baseDepth - len(fn.Params) + i,
			DeclaredAt: b.seq,
		}
		c.vars[p.Name] = bind
		frame.Bindings = append(frame.Bindings, bind)
	}
	for _, stmt := range fn.Body {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// emitOp emits one mapped instruction for the current statement.
func (c *fnContext) emitOp(op vm.Op) {
	off := c.b.addOp(op)
	c.b.mapTo(off, c.frame, c.stmtSpan, c.boundaryPending)
	c.boundaryPending = false
}

func (c *fnContext) emitPushBytes(data []byte) {
	off := c.b.addPushBytes(data)
	c.b.mapTo(off, c.frame, c.stmtSpan, c.boundaryPending)
	c.boundaryPending = false
}

func (c *fnContext) emitPushInt64(n int64) {
	off := c.b.addPushInt64(n)
	c.b.mapTo(off, c.frame, c.stmtSpan, c.boundaryPending)
	c.boundaryPending = false
}

func (c *fnContext) compileStatement(stmt ast.Statement) error {
	c.stmtSpan = stmt.StmtSpan()
	c.boundaryPending = true

	switch s := stmt.(type) {
	case *ast.DeclStatement:
		if !KnownType(s.TypeName) {
			return errorf(s.Span, "unknown type %s", s.TypeName)
		}
		if _, ok := c.vars[s.VarName]; ok {
			return errorf(s.Span, "redeclaration of %s", s.VarName)
		}
		cat, err := c.compileExpr(s.Value)
		if err != nil {
			return err
		}
		if cat != typeCategory(s.TypeName) {
			return errorf(s.Span, "cannot initialize %s %s with a %s expression", s.TypeName, s.VarName, cat)
		}
		// the initializer value becomes the variable's slot
		bind := Binding{
			Name:       s.VarName,
			Origin:     OriginLocal,
			TypeName:   s.TypeName,
			StackDepth: c.depth - 1,
			DeclaredAt: c.b.seq,
		}
		c.vars[s.VarName] = bind
		c.frame.Bindings = append(c.frame.Bindings, bind)
		return nil

	case *ast.RequireStatement:
		cat, err := c.compileExpr(s.Cond)
		if err != nil {
			return err
		}
		if cat != catBool {
			return errorf(s.Span, "require condition must be bool, got %s", cat)
		}
		c.emitOp(vm.OP_VERIFY)
		c.depth--
		return nil

	case *ast.CallStatement:
		return c.compileCall(s)
	}
	return errorf(stmt.StmtSpan(), "unsupported statement")
}

func (c *fnContext) compileCall(s *ast.CallStatement) error {
	if lookupBuiltin(s.FuncName) != nil {
		return errorf(s.Span, "builtin %s cannot be called as a statement", s.FuncName)
	}
	callee, ok := c.env.funcs[s.FuncName]
	if !ok {
		return errorf(s.Span, "unknown function %s", s.FuncName)
	}
	if callee.Entrypoint {
		return errorf(s.Span, "cannot call entrypoint function %s", s.FuncName)
	}
	for _, name := range c.inlining {
		if name == s.FuncName {
			return errorf(s.Span, "recursive call to %s", s.FuncName)
		}
	}
	if len(s.Args) != len(callee.Params) {
		return errorf(s.Span, "%s takes %d arguments, got %d", s.FuncName, len(callee.Params), len(s.Args))
	}

	callerHeight := c.depth
	// arguments evaluated at the call site become the callee's
	// parameter slots
	for i, arg := range s.Args {
		cat, err := c.compileExpr(arg)
		if err != nil {
			return err
		}
		if want := typeCategory(callee.Params[i].TypeName); cat != want {
			return errorf(s.Span, "argument %d of %s: got %s, want %s", i+1, s.FuncName, cat, want)
		}
	}

	if err := compileFunction(c.b, c.env, callee, c.frame, c.depth, c.inlining); err != nil {
		return err
	}

	// unwind the callee's arguments and locals; the engine has no
	// frames, so this is where the inlined call "returns"
	kept := countLocals(callee) + len(callee.Params)
	c.boundaryPending = false
	for i := 0; i < kept; i++ {
		c.emitOp(vm.OP_DROP)
	}
	c.depth = callerHeight
	return nil
}

// countLocals counts the declaration statements of fn, each of which
// leaves one slot on the stack.
func countLocals(fn *ast.Function) int {
	n := 0
	for _, stmt := range fn.Body {
		if _, ok := stmt.(*ast.DeclStatement); ok {
			n++
		}
	}
	return n
}

func (c *fnContext) compileExpr(e ast.Expr) (string, error) {
	switch x := e.(type) {
	case *ast.IntLiteral:
		c.emitPushInt64(x.Value)
		c.depth++
		return catInt, nil

	case *ast.BoolLiteral:
		if x.Value {
			c.emitOp(vm.OP_TRUE)
		} else {
			c.emitOp(vm.OP_FALSE)
		}
		c.depth++
		return catBool, nil

	case *ast.BytesLiteral:
		c.emitPushBytes(x.Value)
		c.depth++
		return catBytes, nil

	case *ast.StringLiteral:
		c.emitPushBytes([]byte(x.Value))
		c.depth++
		return catBytes, nil

	case *ast.VarRef:
		if bind, ok := c.vars[x.Name]; ok {
			c.emitPushInt64(int64(c.depth - 1 - bind.StackDepth))
			c.emitOp(vm.OP_PICK)
			c.depth++
			return typeCategory(bind.TypeName), nil
		}
		if bind, ok := c.env.consts[x.Name]; ok {
			c.emitPushBytes(bind.Const)
			c.depth++
			return typeCategory(bind.TypeName), nil
		}
		return "", errorf(x.Span, "unresolved identifier %s", x.Name)

	case *ast.UnaryExpr:
		cat, err := c.compileExpr(x.Operand)
		if err != nil {
			return "", err
		}
		switch x.Op {
		case "-":
			if cat != catInt {
				return "", errorf(x.Span, "unary - needs an int operand, got %s", cat)
			}
			c.emitOp(vm.OP_NEGATE)
			return catInt, nil
		case "!":
			if cat != catBool {
				return "", errorf(x.Span, "! needs a bool operand, got %s", cat)
			}
			c.emitOp(vm.OP_NOT)
			return catBool, nil
		}
		return "", errorf(x.Span, "unsupported unary operator %s", x.Op)

	case *ast.BinaryExpr:
		left, err := c.compileExpr(x.Left)
		if err != nil {
			return "", err
		}
		right, err := c.compileExpr(x.Right)
		if err != nil {
			return "", err
		}
		if x.Op == "==" || x.Op == "!=" {
			if left != right {
				return "", errorf(x.Span, "cannot compare %s with %s", left, right)
			}
			if left == catBytes {
				c.emitOp(vm.OP_EQUAL)
				if x.Op == "!=" {
					c.emitOp(vm.OP_NOT)
				}
			} else {
				// bools compare as the 0/1 integers they encode to
				if x.Op == "==" {
					c.emitOp(vm.OP_NUMEQUAL)
				} else {
					c.emitOp(vm.OP_NUMNOTEQUAL)
				}
			}
			c.depth--
			return catBool, nil
		}
		info, ok := binaryOps[x.Op]
		if !ok {
			return "", errorf(x.Span, "unsupported operator %s", x.Op)
		}
		if left != info.operands || right != info.operands {
			return "", errorf(x.Span, "operator %s needs %s operands, got %s and %s", x.Op, info.operands, left, right)
		}
		for _, op := range info.ops {
			c.emitOp(op)
		}
		c.depth--
		return info.result, nil

	case *ast.CallExpr:
		bi := lookupBuiltin(x.Name)
		if bi == nil {
			if _, ok := c.env.funcs[x.Name]; ok {
				return "", errorf(x.Span, "helper %s can only be called as a statement", x.Name)
			}
			return "", errorf(x.Span, "unknown function %s", x.Name)
		}
		if len(x.Args) != len(bi.args) {
			return "", errorf(x.Span, "%s takes %d arguments, got %d", bi.name, len(bi.args), len(x.Args))
		}
		for i, arg := range x.Args {
			cat, err := c.compileExpr(arg)
			if err != nil {
				return "", err
			}
			if cat != bi.args[i] {
				return "", errorf(x.Span, "argument %d of %s: got %s, want %s", i+1, bi.name, cat, bi.args[i])
			}
		}
		for _, op := range bi.ops {
			c.emitOp(op)
		}
		c.depth += 1 - len(bi.args)
		return bi.result, nil
	}
	return "", errorf(e.ExprSpan(), "unsupported expression")
}
