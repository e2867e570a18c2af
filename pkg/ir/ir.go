// Package ir holds the emitted three-address program: a flat list of label
// definitions and instructions whose operands are already rendered text.
package ir

import (
	"fmt"
	"io"
	"strings"
)

type Op int

const (
	OpLabel   Op = iota // L<n>:
	OpCopy              // dest = value
	OpStore             // array [ index ] = value
	OpGoto              // goto L<n>
	OpIf                // if test goto L<n>
	OpIfFalse           // iffalse test goto L<n>
)

var opNames = [...]string{
	OpLabel: "label", OpCopy: "copy", OpStore: "store",
	OpGoto: "goto", OpIf: "if", OpIfFalse: "iffalse",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Instruction is one emitted line. Label is the target for jumps and the defined
// label for OpLabel; Test is the condition text for OpIf and OpIfFalse.
type Instruction struct {
	Op    Op
	Label int
	Dest  string
	Index string
	Value string
	Test  string
}

// Text is the instruction body without the leading tab and trailing newline.
func (i *Instruction) Text() string {
	switch i.Op {
	case OpLabel:
		return fmt.Sprintf("L%d:", i.Label)
	case OpCopy:
		return i.Dest + " = " + i.Value
	case OpStore:
		return fmt.Sprintf("%s [ %s ] = %s", i.Dest, i.Index, i.Value)
	case OpGoto:
		return fmt.Sprintf("goto L%d", i.Label)
	case OpIf:
		return fmt.Sprintf("if %s goto L%d", i.Test, i.Label)
	case OpIfFalse:
		return fmt.Sprintf("iffalse %s goto L%d", i.Test, i.Label)
	}
	return "?"
}

type Program struct {
	Instrs []*Instruction
}

func (p *Program) Add(instr *Instruction) { p.Instrs = append(p.Instrs, instr) }

// Reset drops every instruction. Slices taken from Instrs before the call keep their
// contents.
func (p *Program) Reset() { p.Instrs = nil }

// Labels returns every defined label in emission order.
func (p *Program) Labels() []int {
	var out []int
	for _, in := range p.Instrs {
		if in.Op == OpLabel {
			out = append(out, in.Label)
		}
	}
	return out
}

// WriteTo renders the program in the exact textual form: a label definition is
// written bare, every other instruction is tab-prefixed and newline-terminated.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, in := range p.Instrs {
		var s string
		if in.Op == OpLabel {
			s = in.Text()
		} else {
			s = "\t" + in.Text() + "\n"
		}
		n, err := io.WriteString(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) String() string {
	var sb strings.Builder
	p.WriteTo(&sb)
	return sb.String()
}
