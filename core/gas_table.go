package core

import "github.com/sirupsen/logrus"

// DefaultGasCost is charged for any opcode missing from gasTable. The value
// is intentionally punitive so an un-priced opcode never slips through
// cheaply (spec §4.7: "each instruction consumes a fixed gas cost declared
// in a table").
const DefaultGasCost uint64 = 50

// gasTable maps every recognised Opcode to its base gas cost. Stack and
// arithmetic ops are cheap; storage ops (STORE/LOAD) and control flow
// (CALL/LOOP) cost more, mirroring the teacher's core/gas_table.go pricing
// philosophy of charging storage/control-flow above pure stack ops.
var gasTable = map[Opcode]uint64{
	OpPush:    2,
	OpPop:     1,
	OpDup:     1,
	OpSwap:    1,
	OpStore:   20,
	OpLoad:    10,
	OpAdd:     3,
	OpSub:     3,
	OpMul:     5,
	OpDiv:     5,
	OpEq:      3,
	OpGt:      3,
	OpLt:      3,
	OpJmp:     8,
	OpIf:      4,
	OpElse:    1,
	OpEndIf:   1,
	OpLoop:    8,
	OpEndLoop: 4,
	OpCall:    15,
	OpReturn:  2,
}

// GasCost returns the base gas cost for op, falling back to
// DefaultGasCost (and logging once per call site) for anything missing
// from the table.
func GasCost(op Opcode) uint64 {
	if cost, ok := gasTable[op]; ok {
		return cost
	}
	logrus.WithField("opcode", op).Warn("gas_table: missing cost, charging default")
	return DefaultGasCost
}
