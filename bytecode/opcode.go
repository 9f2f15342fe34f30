// Package bytecode defines the byte-addressable instruction format
// shared by the translator, the VM, and the debugger's disassembler.
package bytecode

import "fmt"

// Magic is the 4-byte header every translated program starts with.
var Magic = [4]byte{'P', 'B', '0', '1'}

// Op is a single opcode byte.
type Op byte

const (
	NOOP        Op = 0
	CLEAR       Op = 1
	PRINT       Op = 2
	PRINTNUMLIT Op = 3
	PRINTSTRLIT Op = 4

	JUMP    Op = 10
	JUMPIF0 Op = 11

	LITERAL1 Op = 20
	LITERAL2 Op = 21
	FLOAT4   Op = 25

	NAME      Op = 30
	STORENUM  Op = 31
	DELETENUM Op = 32
	STORESTR  Op = 33
	RETRV     Op = 34
	INPUT     Op = 35

	ADD      Op = 40
	SUBTRACT Op = 41
	MULTIPLY Op = 42
	DIVIDE   Op = 43

	EQUAL Op = 50
	LT    Op = 51
	LTE   Op = 52

	// NEQUAL/GT/GTE get distinct codes from EQUAL/LT/LTE: the original
	// bootstrap source reused 50/51/52 for these and left GT/GTE
	// unreachable in its own disassembler.
	NEQUAL Op = 60
	GT     Op = 61
	GTE    Op = 62

	// Subroutine scope opcodes. Not part of the original bootstrap VM;
	// assigned their own free block since the table these opcodes were
	// specified alongside never numbered them.
	PUSHSCOPE Op = 70
	GOSUB     Op = 71
	POPSCOPE  Op = 72
	RETURN    Op = 73

	EOM_HALT Op = 254
	HALT     Op = 255
)

var names = map[Op]string{
	NOOP:        "NOOP",
	CLEAR:       "CLEAR",
	PRINT:       "PRINT",
	PRINTNUMLIT: "PRINTNUMLIT",
	PRINTSTRLIT: "PRINTSTRLIT",
	JUMP:        "JUMP",
	JUMPIF0:     "JUMPIF0",
	LITERAL1:    "LITERAL1",
	LITERAL2:    "LITERAL2",
	FLOAT4:      "FLOAT4",
	NAME:        "NAME",
	STORENUM:    "STORENUM",
	DELETENUM:   "DELETENUM",
	STORESTR:    "STORESTR",
	RETRV:       "RETRV",
	INPUT:       "INPUT",
	ADD:         "ADD",
	SUBTRACT:    "SUBTRACT",
	MULTIPLY:    "MULTIPLY",
	DIVIDE:      "DIVIDE",
	EQUAL:       "EQUAL",
	LT:          "LT",
	LTE:         "LTE",
	NEQUAL:      "NEQUAL",
	GT:          "GT",
	GTE:         "GTE",
	PUSHSCOPE:   "PUSHSCOPE",
	GOSUB:       "GOSUB",
	POPSCOPE:    "POPSCOPE",
	RETURN:      "RETURN",
	EOM_HALT:    "EOM_HALT",
	HALT:        "HALT",
}

func (o Op) String() string {
	if n, ok := names[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", byte(o))
}

// CompOpcode maps a COMPOP lexeme to the opcode that implements it.
// Both "=>" and ">=" resolve to GTE.
func CompOpcode(lexeme string) (Op, bool) {
	switch lexeme {
	case "=":
		return EQUAL, true
	case "<":
		return LT, true
	case "<=":
		return LTE, true
	case "!=":
		return NEQUAL, true
	case ">":
		return GT, true
	case ">=", "=>":
		return GTE, true
	default:
		return 0, false
	}
}

// ArithOpcode maps an ARITHOP lexeme to its opcode.
func ArithOpcode(lexeme string) (Op, bool) {
	switch lexeme {
	case "+":
		return ADD, true
	case "-":
		return SUBTRACT, true
	case "*":
		return MULTIPLY, true
	case "/":
		return DIVIDE, true
	default:
		return 0, false
	}
}

// HeaderSize is the number of bytes occupied by Magic before the
// opcode stream begins; the VM's Reset sets IP to this offset.
const HeaderSize = 4
