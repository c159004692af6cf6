package ast

import (
	"strconv"
	"strings"
)

// Reconstruct renders root back to formula source text. Two trees produced
// by Parse reconstruct to the same string iff they are structurally
// identical, which is what formula equality/hashing/`to_string()` is defined
// against (spec.md §9, "equality and hashing operate on canonical
// reconstructed text, not the original source string", resolving the spec's
// third Open Question: two formulas differing only in whitespace are equal,
// since every binary operator is written with single surrounding spaces,
// but two differing only in a redundant-but-present parenthesization are
// NOT equal, since Paren nodes are preserved verbatim).
func Reconstruct(root Node) string {
	var sb strings.Builder
	writeNode(&sb, root)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch node := n.(type) {
	case *Root:
		writeNode(sb, node.Child)

	case *Paren:
		sb.WriteByte('(')
		writeNode(sb, node.Child)
		sb.WriteByte(')')

	case *Binary:
		writeNode(sb, node.Left)
		sb.WriteByte(' ')
		sb.WriteString(node.Op)
		sb.WriteByte(' ')
		writeNode(sb, node.Right)

	case *Unary:
		sb.WriteString(node.Op)
		writeNode(sb, node.Operand)

	case *Number:
		sb.WriteString(node.Text)

	case *String:
		sb.WriteByte('"')
		sb.WriteString(escapeString(node.Text))
		sb.WriteByte('"')

	case *Identifier:
		sb.WriteString(node.Name)

	case *Function:
		sb.WriteString(node.Name)
		sb.WriteByte('(')
		for i, arg := range node.Args.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNode(sb, arg)
		}
		sb.WriteByte(')')

	case *FuncParen, *FuncBrack:
		panic("ast: structural argument-list node reached Reconstruct directly")

	default:
		panic("ast: unhandled node kind in Reconstruct")
	}
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	quoted := strconv.Quote(s)
	return quoted[1 : len(quoted)-1]
}
