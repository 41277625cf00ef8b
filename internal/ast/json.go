package ast

import (
	"minijava/internal/span"
	"minijava/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		result := m("File", n.Span, "body", stmtSlice(n.Body))
		if n.ClassName != "" {
			result["className"] = n.ClassName
			result["entry"] = n.Entry
		}
		return result

	// ---- Expressions ----
	case *IdentExpr:
		return m("IdentExpr", n.Span, "name", n.Name)
	case *IntLiteral:
		return m("IntLiteral", n.Span, "value", n.Value)
	case *FloatLiteral:
		kind := "DoubleLiteral"
		if n.Single {
			kind = "FloatLiteral"
		}
		return m(kind, n.Span, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *CharLiteral:
		return m("CharLiteral", n.Span, "value", string(n.Value))
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *IncDecExpr:
		return m("IncDecExpr", n.Span,
			"op", opStr(n.Op),
			"prefix", n.Prefix,
			"target", NodeToMap(n.Target))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *ParenExpr:
		return m("ParenExpr", n.Span, "inner", NodeToMap(n.Inner))

	// ---- Statements ----
	case *VarDeclStmt:
		return m("VarDeclStmt", n.Span,
			"type", n.Type.String(),
			"name", n.Name,
			"init", NodeToMap(n.Init))
	case *AssignStmt:
		return m("AssignStmt", n.Span,
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value))
	case *PrintStmt:
		result := m("PrintStmt", n.Span, "newline", n.Newline)
		if n.Arg != nil {
			result["arg"] = NodeToMap(n.Arg)
		}
		return result
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *EmptyStmt:
		return m("EmptyStmt", n.Span)
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
		if len(n.ElseIfs) > 0 {
			elseIfs := make([]interface{}, len(n.ElseIfs))
			for i, ei := range n.ElseIfs {
				elseIfs[i] = map[string]interface{}{
					"kind":      "ElseIfClause",
					"span":      spanToMap(ei.Span),
					"condition": NodeToMap(ei.Condition),
					"body":      NodeToMap(ei.Body),
				}
			}
			result["elseIfs"] = elseIfs
		}
		if n.ElseBody != nil {
			result["elseBody"] = NodeToMap(n.ElseBody)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *ForStmt:
		result := m("ForStmt", n.Span, "body", NodeToMap(n.Body))
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		if n.Condition != nil {
			result["condition"] = NodeToMap(n.Condition)
		}
		if n.Update != nil {
			result["update"] = NodeToMap(n.Update)
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func opStr(kind token.Kind) string {
	return kind.String()
}
