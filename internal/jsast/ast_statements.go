package jsast

import "github.com/solarframe/ecmawalk/internal/symbols"

// VarKind distinguishes var/let/const declarations, which drive the
// hoisting and TDZ rules in spec.md §4.1.
type VarKind int

const (
	VarVar VarKind = iota
	VarLet
	VarConst
)

// BlockStatement is a brace-delimited statement list; it pushes its own
// block scope (spec.md §4.3 "Block").
type BlockStatement struct {
	BaseNode
	Body []Statement
}

func (*BlockStatement) stmtNode() {}

// VariableDeclaration declares one or more bindings of the same kind.
type VariableDeclaration struct {
	BaseNode
	Kind        VarKind
	Declarators []*VariableDeclarator
}

func (*VariableDeclaration) stmtNode() {}

// VariableDeclarator binds a pattern to an (optional) initializer.
type VariableDeclarator struct {
	BaseNode
	ID   Pattern
	Init Expression // nil if no initializer
}

// ExpressionStatement evaluates an expression for its side effects and
// discards the value (except as the statement/block completion value).
type ExpressionStatement struct {
	BaseNode
	Expr Expression
}

func (*ExpressionStatement) stmtNode() {}

// FunctionDeclaration introduces a named function into the enclosing
// scope by hoisting (spec.md §4.1 "Functions pass").
type FunctionDeclaration struct {
	BaseNode
	Function *FunctionLiteral
}

func (*FunctionDeclaration) stmtNode() {}

// ClassDeclaration builds a class value in a class scope binding the
// class's own name (spec.md §4.3 "ClassDeclaration").
type ClassDeclaration struct {
	BaseNode
	Class *ClassLiteral
}

func (*ClassDeclaration) stmtNode() {}

// IfStatement is the conditional statement; Alternate is nil when there
// is no else branch.
type IfStatement struct {
	BaseNode
	Test       Expression
	Consequent Statement
	Alternate  Statement
}

func (*IfStatement) stmtNode() {}

// WhileStatement and DoWhileStatement are normalized by internal/loopplan
// into a common LoopPlan before evaluation (spec.md §4.9).
type WhileStatement struct {
	BaseNode
	Test Expression
	Body Statement
}

func (*WhileStatement) stmtNode() {}

type DoWhileStatement struct {
	BaseNode
	Test Expression
	Body Statement
}

func (*DoWhileStatement) stmtNode() {}

// ForStatement is the classic three-clause for loop. Init may be a
// *VariableDeclaration or an Expression wrapped in *ExpressionStatement,
// or nil.
type ForStatement struct {
	BaseNode
	Init   Statement
	Test   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) stmtNode() {}

// ForInStatement and ForOfStatement drive the iteration protocol
// (spec.md §4.8). Left is either a *VariableDeclaration (single
// declarator) introducing a fresh binding per iteration, or an
// Expression/Pattern naming an existing assignment target.
type ForInStatement struct {
	BaseNode
	Left  Node // *VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

func (*ForInStatement) stmtNode() {}

type ForOfStatement struct {
	BaseNode
	Left  Node // *VariableDeclaration or Expression
	Right Expression
	Body  Statement
	Await bool // for await...of
}

func (*ForOfStatement) stmtNode() {}

// SwitchStatement evaluates Discriminant once, then walks Cases in
// order looking for a strict-equals match, falling through on
// unterminated cases (spec.md §4.3 "SwitchStatement").
type SwitchStatement struct {
	BaseNode
	Discriminant Expression
	Cases        []*SwitchCase
}

func (*SwitchStatement) stmtNode() {}

// SwitchCase is one `case expr:` (Test non-nil) or `default:` (Test nil)
// arm of a switch.
type SwitchCase struct {
	BaseNode
	Test        Expression
	Consequents []Statement
}

// BreakStatement and ContinueStatement carry an optional label symbol;
// a zero Label (the interned empty string) means unlabeled.
type BreakStatement struct {
	BaseNode
	Label symbols.Symbol
	HasLabel bool
}

func (*BreakStatement) stmtNode() {}

type ContinueStatement struct {
	BaseNode
	Label symbols.Symbol
	HasLabel bool
}

func (*ContinueStatement) stmtNode() {}

// ReturnStatement sets flow.Return (spec.md §4.2).
type ReturnStatement struct {
	BaseNode
	Argument Expression // nil means `return;` (undefined)
}

func (*ReturnStatement) stmtNode() {}

// ThrowStatement sets flow.Throw.
type ThrowStatement struct {
	BaseNode
	Argument Expression
}

func (*ThrowStatement) stmtNode() {}

// TryStatement runs Block, optionally recovering a throw into Handler,
// and always runs Finalizer (spec.md §4.3 "TryStatement").
type TryStatement struct {
	BaseNode
	Block     *BlockStatement
	Handler   *CatchClause // nil if no catch
	Finalizer *BlockStatement // nil if no finally
}

func (*TryStatement) stmtNode() {}

// CatchClause binds the thrown value (by identifier or destructuring
// pattern) into a fresh catch scope. Param is nil for a parameterless
// `catch {}`.
type CatchClause struct {
	BaseNode
	Param Pattern
	Body  *BlockStatement
}

// LabeledStatement pushes Label onto the label stack for the duration
// of Body (spec.md §4.3 "LabeledStatement").
type LabeledStatement struct {
	BaseNode
	Label symbols.Symbol
	Body  Statement
}

func (*LabeledStatement) stmtNode() {}

// EmptyStatement is a bare `;`.
type EmptyStatement struct {
	BaseNode
}

func (*EmptyStatement) stmtNode() {}
