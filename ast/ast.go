// Package ast defines the SilverScript contract syntax tree and the
// textual parser that produces it. Every node carries a source span so
// that later stages (type checks, compilation, debug stepping) can
// report positions in the original text.
package ast

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Span identifies a region of source text. Lines and columns are
// 1-based; a point location has Line==EndLine and Col==EndCol.
type Span struct {
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	EndLine uint32 `json:"end_line"`
	EndCol  uint32 `json:"end_col"`
}

func (s Span) String() string {
	if s.Line == s.EndLine && s.Col == s.EndCol {
		return fmt.Sprintf("%d:%d", s.Line, s.Col)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Line, s.Col, s.EndLine, s.EndCol)
}

// Contract is the root of a parsed SilverScript source file.
type Contract struct {
	Name      string
	Params    []*Param
	Functions []*Function
	Span      Span
}

// Param is a constructor or function parameter.
type Param struct {
	Name     string
	TypeName string
	Span     Span
}

// Function is one contract function. Entrypoint functions are callable
// from an unlocking input; the rest are helpers reachable only through
// inlined calls.
type Function struct {
	Name       string
	Entrypoint bool
	Params     []*Param
	Body       []Statement
	Span       Span
}

// Entrypoints returns the entrypoint functions in declaration order.
func (c *Contract) Entrypoints() []*Function {
	var eps []*Function
	for _, f := range c.Functions {
		if f.Entrypoint {
			eps = append(eps, f)
		}
	}
	return eps
}

// Function returns the named function, or nil.
func (c *Contract) Function(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Statement is one executable statement in a function body.
type Statement interface {
	StmtSpan() Span
	iamaStatement()
}

// DeclStatement declares and initializes a local variable:
//
//	int y = x + 1;
type DeclStatement struct {
	TypeName string
	VarName  string
	Value    Expr
	Span     Span
}

func (s *DeclStatement) StmtSpan() Span { return s.Span }
func (*DeclStatement) iamaStatement()   {}

// RequireStatement aborts the program unless its condition holds:
//
//	require(y > 0);
type RequireStatement struct {
	Cond Expr
	Span Span
}

func (s *RequireStatement) StmtSpan() Span { return s.Span }
func (*RequireStatement) iamaStatement()   {}

// CallStatement invokes a helper function, which the compiler inlines
// at the call site:
//
//	check_pair(a, b);
type CallStatement struct {
	FuncName string
	Args     []Expr
	Span     Span
}

func (s *CallStatement) StmtSpan() Span { return s.Span }
func (*CallStatement) iamaStatement()   {}

// Expr is an expression node.
type Expr interface {
	String() string
	ExprSpan() Span
}

type BinaryExpr struct {
	Op          string
	Left, Right Expr
	Span        Span
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *BinaryExpr) ExprSpan() Span { return e.Span }

type UnaryExpr struct {
	Op      string
	Operand Expr
	Span    Span
}

func (e *UnaryExpr) String() string { return fmt.Sprintf("%s%s", e.Op, e.Operand) }
func (e *UnaryExpr) ExprSpan() Span { return e.Span }

// CallExpr is a builtin call inside an expression, e.g. sha256(preimage).
type CallExpr struct {
	Name string
	Args []Expr
	Span Span
}

func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}
func (e *CallExpr) ExprSpan() Span { return e.Span }

type VarRef struct {
	Name string
	Span Span
}

func (e *VarRef) String() string { return e.Name }
func (e *VarRef) ExprSpan() Span { return e.Span }

type IntLiteral struct {
	Value int64
	Span  Span
}

func (e *IntLiteral) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *IntLiteral) ExprSpan() Span { return e.Span }

type BoolLiteral struct {
	Value bool
	Span  Span
}

func (e *BoolLiteral) String() string { return strconv.FormatBool(e.Value) }
func (e *BoolLiteral) ExprSpan() Span { return e.Span }

// BytesLiteral is a 0x-prefixed hex literal.
type BytesLiteral struct {
	Value []byte
	Span  Span
}

func (e *BytesLiteral) String() string { return "0x" + hex.EncodeToString(e.Value) }
func (e *BytesLiteral) ExprSpan() Span { return e.Span }

type StringLiteral struct {
	Value string
	Span  Span
}

func (e *StringLiteral) String() string { return strconv.Quote(e.Value) }
func (e *StringLiteral) ExprSpan() Span { return e.Span }
