package translator

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/vtbassmatt/phonebasic/bytecode"
)

// Disassemble renders code as a human-readable instruction listing,
// one line per opcode, prefixed with its address. strings is the
// string pool produced alongside code by Translate; passing nil is
// fine, LITERAL1 lines will just show the raw index.
//
// Ported from the bootstrap's disassemble(); GT/GTE print under their
// own names now that they carry distinct opcode values.
func Disassemble(code []byte, strings_ []string) string {
	var sb strings.Builder

	if len(code) >= bytecode.HeaderSize {
		fmt.Fprintf(&sb, "Header: %q\n", code[:bytecode.HeaderSize])
	}

	i := bytecode.HeaderSize
	for i < len(code) {
		op := bytecode.Op(code[i])
		addr := i

		switch op {
		case bytecode.LITERAL1:
			if i+1 >= len(code) {
				fmt.Fprintf(&sb, "%#04x LITERAL1 *** truncated\n", addr)
				return sb.String()
			}
			idx := code[i+1]
			if int(idx) < len(strings_) {
				fmt.Fprintf(&sb, "%#04x LITERAL1 %d (%q)\n", addr, idx, strings_[idx])
			} else {
				fmt.Fprintf(&sb, "%#04x LITERAL1 %d\n", addr, idx)
			}
			i += 2

		case bytecode.LITERAL2:
			if i+2 >= len(code) {
				fmt.Fprintf(&sb, "%#04x LITERAL2 *** truncated\n", addr)
				return sb.String()
			}
			v := int16(binary.BigEndian.Uint16(code[i+1 : i+3]))
			fmt.Fprintf(&sb, "%#04x LITERAL2 %d\n", addr, v)
			i += 3

		case bytecode.FLOAT4:
			if i+4 >= len(code) {
				fmt.Fprintf(&sb, "%#04x FLOAT4 *** truncated\n", addr)
				return sb.String()
			}
			bits := binary.BigEndian.Uint32(code[i+1 : i+5])
			fmt.Fprintf(&sb, "%#04x FLOAT4 %g\n", addr, math.Float32frombits(bits))
			i += 5

		case bytecode.NAME:
			if i+1 >= len(code) {
				fmt.Fprintf(&sb, "%#04x NAME *** truncated\n", addr)
				return sb.String()
			}
			n := int(code[i+1])
			end := i + 2 + n
			if end > len(code) {
				fmt.Fprintf(&sb, "%#04x NAME *** truncated\n", addr)
				return sb.String()
			}
			fmt.Fprintf(&sb, "%#04x NAME %q\n", addr, code[i+2:end])
			i = end

		default:
			fmt.Fprintf(&sb, "%#04x %s\n", addr, op)
			i++
		}
	}

	return sb.String()
}
