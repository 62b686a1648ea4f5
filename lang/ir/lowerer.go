// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir

import (
	"fmt"

	"github.com/oaflang/oaf/lang/ast"
)

type aggregateLayout struct {
	Name   string
	Fields []ast.FieldDecl
}

type enumLayout struct {
	Name     string
	Ordinals map[string]int
}

type loopLabels struct {
	breakLabel    string
	continueLabel string
}

type parallelContext struct {
	depth   int
	iterVar string
}

// Lowerer lowers a parsed, type-checked AST into a Module containing one
// function named "main" (§4.1).
type Lowerer struct {
	fn  *Function
	cur *BasicBlock

	scopes []map[string]Value
	// declScopeDepth records the scope depth (len(scopes) at the time of
	// declaration) of each bare variable name currently visible, keyed by
	// the same bare name used in scopes.
	declScopeDepth map[string]int
	// declared maps a variable's fully qualified name to its IR type, so
	// dotted-name resolution (module-qualified or aggregate field access)
	// can recover the type of a cell declared elsewhere.
	declared map[string]Type

	loops     []loopLabels
	parallels []parallelContext

	curModule string
	imports   map[string]bool

	aggregates map[string]*aggregateLayout
	enums      map[string]*enumLayout

	tempCounter   int
	labelCounters map[string]int
}

// Lower lowers a parsed Program into an IrModule containing one function,
// "main". It is total: it does not itself validate the program (that is
// the type checker's job, which runs before lowering) and falls back to
// permissive defaults (Unknown-typed implicit variables) rather than
// failing on constructs it cannot fully resolve.
func Lower(prog *ast.Program) (*Module, error) {
	lw := &Lowerer{
		declScopeDepth: map[string]int{},
		declared:       map[string]Type{},
		imports:        map[string]bool{},
		aggregates:     map[string]*aggregateLayout{},
		enums:          map[string]*enumLayout{},
		labelCounters:  map[string]int{},
	}
	lw.prePass(prog.Statements)

	lw.fn = &Function{Name: "main"}
	lw.scopes = []map[string]Value{{}}
	lw.startBlock("entry")

	if err := lw.lowerBlockStmts(prog.Statements); err != nil {
		return nil, err
	}
	if !lw.cur.Terminated() {
		lw.terminate(&Return{Value: nil})
	}

	return &Module{Name: "module", Functions: []*Function{lw.fn}}, nil
}

func (lw *Lowerer) prePass(stmts []ast.Statement) {
	curModule := ""
	for _, st := range stmts {
		switch d := st.(type) {
		case *ast.ModuleDecl:
			curModule = d.Name
		case *ast.AggregateDecl:
			qn := d.Name
			if curModule != "" {
				qn = curModule + "." + d.Name
			}
			layout := &aggregateLayout{Name: qn, Fields: d.Fields}
			lw.aggregates[qn] = layout
			lw.aggregates[d.Name] = layout
		case *ast.EnumDecl:
			qn := d.Name
			if curModule != "" {
				qn = curModule + "." + d.Name
			}
			layout := &enumLayout{Name: qn, Ordinals: map[string]int{}}
			for i, v := range d.Variants {
				layout.Ordinals[v] = i
			}
			lw.enums[qn] = layout
			lw.enums[d.Name] = layout
		}
	}
}

// ---- block/scope plumbing ----

func (lw *Lowerer) startBlock(label string) {
	b := &BasicBlock{Label: label}
	lw.fn.Blocks = append(lw.fn.Blocks, b)
	lw.cur = b
}

func (lw *Lowerer) emit(instr Instr) {
	if lw.cur.Terminated() {
		return
	}
	lw.cur.Instrs = append(lw.cur.Instrs, instr)
}

func (lw *Lowerer) terminate(instr Instr) {
	if lw.cur.Terminated() {
		return
	}
	lw.cur.Instrs = append(lw.cur.Instrs, instr)
}

func (lw *Lowerer) freshTemp(t Type) *Temporary {
	name := fmt.Sprintf("t%d", lw.tempCounter)
	lw.tempCounter++
	return &Temporary{Typ: t, Name: name}
}

func (lw *Lowerer) freshLabel(prefix string) string {
	n := lw.labelCounters[prefix]
	lw.labelCounters[prefix] = n + 1
	return fmt.Sprintf("%s_%d", prefix, n)
}

func (lw *Lowerer) pushScope() {
	lw.scopes = append(lw.scopes, map[string]Value{})
}

func (lw *Lowerer) popScope() {
	top := lw.scopes[len(lw.scopes)-1]
	for name := range top {
		delete(lw.declScopeDepth, name)
	}
	lw.scopes = lw.scopes[:len(lw.scopes)-1]
}

func (lw *Lowerer) topLevel() bool { return len(lw.scopes) == 1 }

func (lw *Lowerer) declare(bareName string, v *Variable) {
	lw.scopes[len(lw.scopes)-1][bareName] = v
	lw.declScopeDepth[bareName] = len(lw.scopes)
	lw.declared[v.Name] = v.Typ
}

// resolveIdent implements the symbol resolution rule of §4.1: walk scopes
// outward for a bare name; else try current_module.n, then each imported
// module; qualified (dotted) names resolve against the module chain or a
// local-variable prefix chain (obj.field.subfield). It never fails: an
// unresolved bare name falls back to an implicit local Unknown-typed
// variable, matching lower's total contract.
func (lw *Lowerer) resolveIdent(name string) Value {
	dot := indexByte(name, '.')
	if dot < 0 {
		for i := len(lw.scopes) - 1; i >= 0; i-- {
			if v, ok := lw.scopes[i][name]; ok {
				return v
			}
		}
		if lw.curModule != "" {
			qn := lw.curModule + "." + name
			if t, ok := lw.declared[qn]; ok {
				return &Variable{Typ: t, Name: qn}
			}
		}
		for imp := range lw.imports {
			qn := imp + "." + name
			if t, ok := lw.declared[qn]; ok {
				return &Variable{Typ: t, Name: qn}
			}
		}
		return &Variable{Typ: Unknown, Name: name}
	}

	prefix, rest := name[:dot], name[dot+1:]
	if prefix == lw.curModule || lw.imports[prefix] {
		qn := name
		if t, ok := lw.declared[qn]; ok {
			return &Variable{Typ: t, Name: qn}
		}
		return &Variable{Typ: Unknown, Name: qn}
	}
	base := lw.resolveIdent(prefix)
	baseVar, ok := base.(*Variable)
	baseName := prefix
	if ok {
		baseName = baseVar.Name
	}
	qn := baseName + "." + rest
	if t, ok := lw.declared[qn]; ok {
		return &Variable{Typ: t, Name: qn}
	}
	return &Variable{Typ: Unknown, Name: qn}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// ---- statement lowering ----

func (lw *Lowerer) lowerBlockStmts(stmts []ast.Statement) error {
	for _, st := range stmts {
		if lw.cur.Terminated() {
			break
		}
		if err := lw.lowerStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) lowerStatement(st ast.Statement) error {
	switch s := st.(type) {
	case *ast.ModuleDecl:
		lw.curModule = s.Name
		lw.imports = map[string]bool{}
		return nil
	case *ast.ImportDecl:
		lw.imports[s.Name] = true
		return nil
	case *ast.AggregateDecl, *ast.EnumDecl:
		return nil
	case *ast.VarDecl:
		return lw.lowerVarDecl(s)
	case *ast.AssignStmt:
		return lw.lowerAssign(s)
	case *ast.IndexAssignStmt:
		return lw.lowerIndexAssign(s)
	case *ast.IfStmt:
		return lw.lowerIf(s)
	case *ast.LoopStmt:
		if s.Parallel {
			return lw.lowerParallelLoop(s)
		}
		return lw.lowerLoop(s)
	case *ast.MatchStmt:
		return lw.lowerMatch(s)
	case *ast.BreakStmt:
		lw.lowerBreak()
		return nil
	case *ast.ContinueStmt:
		lw.lowerContinue()
		return nil
	case *ast.ReturnStmt:
		return lw.lowerReturn(s)
	case *ast.ThrowStmt:
		return lw.lowerThrow(s)
	case *ast.PrintStmt:
		return lw.lowerPrint(s)
	case *ast.BlockStmt:
		lw.pushScope()
		err := lw.lowerBlockStmts(s.Statements)
		lw.popScope()
		return err
	case *ast.ExprStmt:
		_, err := lw.lowerExpr(s.Value)
		return err
	default:
		return fmt.Errorf("ir: lowering not implemented for statement %T", st)
	}
}

func (lw *Lowerer) qualifiedDeclName(bareName string) string {
	if lw.topLevel() && lw.curModule != "" {
		return lw.curModule + "." + bareName
	}
	return bareName
}

func (lw *Lowerer) lowerVarDecl(d *ast.VarDecl) error {
	qn := lw.qualifiedDeclName(d.Name)

	if agg, ok := d.Value.(*ast.AggregateExpr); ok {
		if layout, found := lw.aggregates[agg.TypeName]; found {
			v := &Variable{Typ: Unknown, Name: qn}
			lw.declare(d.Name, v)
			lw.emit(&Assign{Dst: v, Src: &Constant{Typ: Unknown, Payload: int64(0)}})
			return lw.lowerAggregateFields(qn, layout, agg.Args)
		}
	}

	val, err := lw.lowerExpr(d.Value)
	if err != nil {
		return err
	}
	typ := val.Type()
	if d.Type != "" {
		typ = TypeFromName(d.Type)
	}
	v := &Variable{Typ: typ, Name: qn}
	lw.declare(d.Name, v)
	lw.emit(&Assign{Dst: v, Src: val})
	return nil
}

func (lw *Lowerer) lowerAggregateFields(base string, layout *aggregateLayout, args []ast.AggregateArg) error {
	supplied := map[string]ast.Expression{}
	var positional []ast.Expression
	for _, a := range args {
		if a.Name != "" {
			supplied[a.Name] = a.Value
		} else {
			positional = append(positional, a.Value)
		}
	}
	posIdx := 0
	for _, f := range layout.Fields {
		fieldVar := &Variable{Typ: TypeFromName(f.Type), Name: base + "." + f.Name}
		lw.declared[fieldVar.Name] = fieldVar.Typ

		var valExpr ast.Expression
		if e, ok := supplied[f.Name]; ok {
			valExpr = e
		} else if posIdx < len(positional) {
			valExpr = positional[posIdx]
			posIdx++
		}

		if valExpr == nil {
			lw.emit(&Assign{Dst: fieldVar, Src: &Constant{Typ: Unknown, Payload: nil}})
			continue
		}
		val, err := lw.lowerExpr(valExpr)
		if err != nil {
			return err
		}
		lw.emit(&Assign{Dst: fieldVar, Src: val})
	}
	for _, e := range positional[posIdx:] {
		if _, err := lw.lowerExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func opFromCompound(op string) BinaryOp {
	switch op {
	case "+=":
		return Add
	case "-=":
		return Sub
	case "*=":
		return Mul
	case "/=":
		return Div
	case "%=":
		return Mod
	default:
		return Add
	}
}

func (lw *Lowerer) lowerAssign(s *ast.AssignStmt) error {
	if s.Op == "+=" && len(lw.parallels) > 0 {
		pc := lw.parallels[len(lw.parallels)-1]
		if depth, ok := lw.declScopeDepth[s.Name]; ok && depth < pc.depth {
			val, err := lw.lowerExpr(s.Value)
			if err != nil {
				return err
			}
			target := lw.resolveIdent(s.Name)
			lw.emit(&ParallelReduceAdd{Target: target, Contribution: val})
			return nil
		}
	}

	if s.Op == "=" {
		if agg, ok := s.Value.(*ast.AggregateExpr); ok {
			if layout, found := lw.aggregates[agg.TypeName]; found {
				target := lw.resolveIdent(s.Name)
				v := target.(*Variable)
				return lw.lowerAggregateFields(v.Name, layout, agg.Args)
			}
		}
		val, err := lw.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		target := lw.resolveIdent(s.Name)
		lw.emit(&Assign{Dst: target, Src: val})
		return nil
	}

	val, err := lw.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	target := lw.resolveIdent(s.Name)
	tmp := lw.freshTemp(target.Type())
	lw.emit(&Binary{Dst: tmp, Op: opFromCompound(s.Op), X: target, Y: val})
	lw.emit(&Assign{Dst: target, Src: tmp})
	return nil
}

func (lw *Lowerer) lowerIndexAssign(s *ast.IndexAssignStmt) error {
	arr, err := lw.lowerExpr(s.Target)
	if err != nil {
		return err
	}
	idx, err := lw.lowerExpr(s.Index)
	if err != nil {
		return err
	}
	if s.Op == "=" {
		val, err := lw.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		lw.emit(&ArraySet{Arr: arr, Idx: idx, Val: val})
		return nil
	}
	cur := lw.freshTemp(Unknown)
	lw.emit(&ArrayGet{Dst: cur, Arr: arr, Idx: idx})
	rhs, err := lw.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	res := lw.freshTemp(Unknown)
	lw.emit(&Binary{Dst: res, Op: opFromCompound(s.Op), X: cur, Y: rhs})
	lw.emit(&ArraySet{Arr: arr, Idx: idx, Val: res})
	return nil
}

func (lw *Lowerer) lowerIf(s *ast.IfStmt) error {
	thenL := lw.freshLabel("if_then")
	endL := lw.freshLabel("if_end")
	elseL := endL
	if s.Else != nil {
		elseL = lw.freshLabel("if_else")
	}

	cond, err := lw.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	lw.terminate(&Branch{Cond: cond, TrueLabel: thenL, FalseLabel: elseL})

	lw.startBlock(thenL)
	lw.pushScope()
	if err := lw.lowerBlockStmts(s.Then.Statements); err != nil {
		return err
	}
	lw.popScope()
	if !lw.cur.Terminated() {
		lw.terminate(&Jump{Label: endL})
	}

	if s.Else != nil {
		lw.startBlock(elseL)
		lw.pushScope()
		if err := lw.lowerBlockStmts(s.Else.Statements); err != nil {
			return err
		}
		lw.popScope()
		if !lw.cur.Terminated() {
			lw.terminate(&Jump{Label: endL})
		}
	}

	lw.startBlock(endL)
	return nil
}

func (lw *Lowerer) lowerLoop(s *ast.LoopStmt) error {
	condL := lw.freshLabel("loop_cond")
	bodyL := lw.freshLabel("loop_body")
	endL := lw.freshLabel("loop_end")

	lw.terminate(&Jump{Label: condL})
	lw.startBlock(condL)
	cond, err := lw.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	lw.terminate(&Branch{Cond: cond, TrueLabel: bodyL, FalseLabel: endL})

	lw.startBlock(bodyL)
	lw.loops = append(lw.loops, loopLabels{breakLabel: endL, continueLabel: condL})
	lw.pushScope()
	if err := lw.lowerBlockStmts(s.Body.Statements); err != nil {
		return err
	}
	lw.popScope()
	lw.loops = lw.loops[:len(lw.loops)-1]
	if !lw.cur.Terminated() {
		lw.terminate(&Jump{Label: condL})
	}

	lw.startBlock(endL)
	return nil
}

func (lw *Lowerer) lowerParallelLoop(s *ast.LoopStmt) error {
	lw.pushScope()
	iterVar := &Variable{Typ: Int, Name: s.IterVar}
	lw.declare(s.IterVar, iterVar)

	countVal, err := lw.lowerExpr(s.Count)
	if err != nil {
		lw.popScope()
		return err
	}

	lw.parallels = append(lw.parallels, parallelContext{depth: len(lw.scopes), iterVar: s.IterVar})
	lw.emit(&ParallelForBegin{Count: countVal, IterVar: iterVar})
	if err := lw.lowerBlockStmts(s.Body.Statements); err != nil {
		lw.parallels = lw.parallels[:len(lw.parallels)-1]
		lw.popScope()
		return err
	}
	lw.emit(&ParallelForEnd{})
	lw.parallels = lw.parallels[:len(lw.parallels)-1]
	lw.popScope()
	return nil
}

func (lw *Lowerer) lowerMatch(s *ast.MatchStmt) error {
	scrutinee, err := lw.lowerExpr(s.Scrutinee)
	if err != nil {
		return err
	}
	endL := lw.freshLabel("match_end")

	for i, arm := range s.Arms {
		if arm.Pattern == nil {
			lw.pushScope()
			if err := lw.lowerBlockStmts(arm.Body.Statements); err != nil {
				return err
			}
			lw.popScope()
			if !lw.cur.Terminated() {
				lw.terminate(&Jump{Label: endL})
			}
			continue
		}

		patVal, err := lw.lowerExpr(arm.Pattern)
		if err != nil {
			return err
		}
		eq := lw.freshTemp(Bool)
		lw.emit(&Binary{Dst: eq, Op: Eq, X: scrutinee, Y: patVal})

		bodyL := lw.freshLabel(fmt.Sprintf("match_arm%d_body", i))
		hasMore := i < len(s.Arms)-1
		nextL := endL
		if hasMore {
			nextL = lw.freshLabel(fmt.Sprintf("match_arm%d_next", i))
		}
		lw.terminate(&Branch{Cond: eq, TrueLabel: bodyL, FalseLabel: nextL})

		lw.startBlock(bodyL)
		lw.pushScope()
		if err := lw.lowerBlockStmts(arm.Body.Statements); err != nil {
			return err
		}
		lw.popScope()
		if !lw.cur.Terminated() {
			lw.terminate(&Jump{Label: endL})
		}
		if hasMore {
			lw.startBlock(nextL)
		}
	}

	lw.startBlock(endL)
	return nil
}

func (lw *Lowerer) lowerBreak() {
	if len(lw.loops) == 0 {
		return
	}
	lw.terminate(&Jump{Label: lw.loops[len(lw.loops)-1].breakLabel})
}

func (lw *Lowerer) lowerContinue() {
	if len(lw.loops) == 0 {
		return
	}
	lw.terminate(&Jump{Label: lw.loops[len(lw.loops)-1].continueLabel})
}

func (lw *Lowerer) lowerReturn(s *ast.ReturnStmt) error {
	if s.Value == nil {
		lw.terminate(&Return{Value: nil})
		return nil
	}
	v, err := lw.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	lw.terminate(&Return{Value: v})
	return nil
}

func (lw *Lowerer) lowerThrow(s *ast.ThrowStmt) error {
	var errV, detailV Value
	var err error
	if s.Error != nil {
		errV, err = lw.lowerExpr(s.Error)
		if err != nil {
			return err
		}
	}
	if s.Detail != nil {
		detailV, err = lw.lowerExpr(s.Detail)
		if err != nil {
			return err
		}
	}
	lw.terminate(&Throw{Err: errV, Detail: detailV})
	return nil
}

func (lw *Lowerer) lowerPrint(s *ast.PrintStmt) error {
	v, err := lw.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	lw.emit(&Print{X: v})
	return nil
}

// ---- expression lowering ----

func (lw *Lowerer) lowerExpr(e ast.Expression) (Value, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return &Constant{Typ: Int, Payload: x.Value}, nil
	case *ast.FloatLit:
		return &Constant{Typ: Float, Payload: x.Value}, nil
	case *ast.BoolLit:
		return &Constant{Typ: Bool, Payload: x.Value}, nil
	case *ast.CharLit:
		return &Constant{Typ: Char, Payload: x.Value}, nil
	case *ast.StringLit:
		return &Constant{Typ: String, Payload: x.Value}, nil
	case *ast.NullLit:
		return &Constant{Typ: Unknown, Payload: nil}, nil

	case *ast.Ident:
		return lw.resolveIdent(x.Name), nil

	case *ast.UnaryExpr:
		xv, err := lw.lowerExpr(x.X)
		if err != nil {
			return nil, err
		}
		op := unaryOpFromToken(x.Op)
		rt := xv.Type()
		if op == LogicalNot {
			rt = Bool
		}
		dst := lw.freshTemp(rt)
		lw.emit(&Unary{Dst: dst, Op: op, X: xv})
		return dst, nil

	case *ast.BinaryExpr:
		lv, err := lw.lowerExpr(x.Left)
		if err != nil {
			return nil, err
		}
		rv, err := lw.lowerExpr(x.Right)
		if err != nil {
			return nil, err
		}
		op := binaryOpFromToken(x.Op)
		dst := lw.freshTemp(binaryResultType(op, lv.Type(), rv.Type()))
		lw.emit(&Binary{Dst: dst, Op: op, X: lv, Y: rv})
		return dst, nil

	case *ast.IndexExpr:
		arr, err := lw.lowerExpr(x.Target)
		if err != nil {
			return nil, err
		}
		idx, err := lw.lowerExpr(x.Index)
		if err != nil {
			return nil, err
		}
		dst := lw.freshTemp(Unknown)
		lw.emit(&ArrayGet{Dst: dst, Arr: arr, Idx: idx})
		return dst, nil

	case *ast.FieldExpr:
		base, ok := x.Target.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("ir: field access target must be an identifier, got %T", x.Target)
		}
		return lw.resolveIdent(base.Name + "." + x.Field), nil

	case *ast.NewArrayExpr:
		length, err := lw.lowerExpr(x.Length)
		if err != nil {
			return nil, err
		}
		dst := lw.freshTemp(Unknown)
		lw.emit(&ArrayCreate{Dst: dst, Length: length})
		return dst, nil

	case *ast.CastExpr:
		v, err := lw.lowerExpr(x.Value)
		if err != nil {
			return nil, err
		}
		target := TypeFromName(x.TargetType)
		dst := lw.freshTemp(target)
		lw.emit(&Cast{Dst: dst, Src: v, TargetType: target})
		return dst, nil

	case *ast.AggregateExpr:
		base := fmt.Sprintf("t%d", lw.tempCounter)
		lw.tempCounter++
		if layout, ok := lw.aggregates[x.TypeName]; ok {
			if err := lw.lowerAggregateFields(base, layout, x.Args); err != nil {
				return nil, err
			}
		}
		return &Constant{Typ: Unknown, Payload: nil}, nil

	default:
		return nil, fmt.Errorf("ir: lowering not implemented for expression %T", e)
	}
}

func unaryOpFromToken(op string) UnaryOp {
	switch op {
	case "-":
		return Negate
	case "!":
		return LogicalNot
	case "~":
		return BitwiseNot
	default:
		return Identity
	}
}

func binaryOpFromToken(op string) BinaryOp {
	switch op {
	case "+":
		return Add
	case "-":
		return Sub
	case "*":
		return Mul
	case "/":
		return Div
	case "%":
		return Mod
	case "^":
		return Root
	case "<<":
		return Shl
	case ">>":
		return Shr
	case "<<<":
		return UShl
	case ">>>":
		return UShr
	case "<":
		return Lt
	case "<=":
		return Le
	case ">":
		return Gt
	case ">=":
		return Ge
	case "==":
		return Eq
	case "!=":
		return Ne
	case "&":
		return BitAnd
	case "|":
		return BitOr
	case "&&":
		return LogicalAnd
	case "||":
		return LogicalOr
	default:
		return Add
	}
}

func binaryResultType(op BinaryOp, l, r Type) Type {
	if op.IsComparison() || op.IsLogical() {
		return Bool
	}
	if l == Float || r == Float {
		return Float
	}
	if l == String || r == String {
		return String
	}
	if l == Unknown || r == Unknown {
		return Unknown
	}
	return Int
}
