package codegen

import (
	"bytes"
	"fmt"

	"github.com/xplshn/tacc/pkg/ir"
)

// Backend is the interface that all output formats must implement.
type Backend interface {
	// Generate renders an emitted program into a byte buffer.
	Generate(prog *ir.Program) (*bytes.Buffer, error)
}

// NewBackend returns the backend registered under name.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", "tac":
		return tacBackend{}, nil
	case "listing":
		return listingBackend{}, nil
	}
	return nil, fmt.Errorf("unknown output format '%s' (want tac or listing)", name)
}

// tacBackend writes the exact three-address text.
type tacBackend struct{}

func (tacBackend) Generate(prog *ir.Program) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if _, err := prog.WriteTo(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// listingBackend writes one numbered line per instruction with labels on their own lines.
type listingBackend struct{}

func (listingBackend) Generate(prog *ir.Program) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	n := 0
	for _, in := range prog.Instrs {
		if in.Op == ir.OpLabel {
			fmt.Fprintf(&buf, "%s\n", in.Text())
			continue
		}
		n++
		fmt.Fprintf(&buf, "%4d  %-8s %s\n", n, in.Op, in.Text())
	}
	return &buf, nil
}
