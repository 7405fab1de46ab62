package core

import (
	"strconv"
	"strings"
)

// maxLoopSpan bounds how many instructions may separate a LOOP from its
// matching ENDLOOP, used to reject unbounded loops at deploy time (spec
// §4.7: "unbounded loops (LOOP without ENDLOOP within N instructions)").
const maxLoopSpan = 10_000

// maxStackDepth bounds the VM's data stack, guarding against runaway
// recursion through CALL (spec §4.7: "code exceeding configured stack
// depth").
const maxStackDepth = 1024

// dynamicEvalMarkers are tokens that, if present in deployed bytecode,
// indicate an attempt at dynamic code evaluation — rejected at deploy time
// (spec §4.7).
var dynamicEvalMarkers = []string{"EVAL", "EXEC", "DYNCALL"}

// instruction is one parsed line of contract bytecode: an opcode plus an
// optional single string argument (a literal for PUSH, a key for
// STORE/LOAD, a label for JMP/CALL).
type instruction struct {
	Op    Opcode
	Arg   string
	Label string // non-empty if this line was "label:" declaring a jump target
}

// ParseProgram tokenizes newline-delimited textual bytecode (spec §4.7,
// worked example in spec §8 scenario 3: "PUSH 100\nSTORE balance\nLOAD
// balance\nRETURN"). Blank lines and lines starting with ';' are ignored. A
// line of the form "label:" declares a CALL/JMP target at the following
// instruction.
func ParseProgram(code []byte) ([]instruction, error) {
	var out []instruction
	for _, raw := range strings.Split(string(code), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			out = append(out, instruction{Label: strings.TrimSuffix(line, ":")})
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		op := Opcode(strings.ToUpper(fields[0]))
		if !recognizedOpcodes[op] {
			return nil, NewError(KindInvalidOpcode, "unrecognized opcode %q", fields[0])
		}
		arg := ""
		if len(fields) == 2 {
			arg = strings.TrimSpace(fields[1])
		}
		out = append(out, instruction{Op: op, Arg: arg})
	}
	return out, nil
}

// ValidateContractCode performs the deploy-time static checks of spec
// §4.7: rejects dynamic-eval markers, unbounded loops, and code whose
// structural nesting could exceed maxStackDepth.
func ValidateContractCode(code []byte) error {
	upper := strings.ToUpper(string(code))
	for _, marker := range dynamicEvalMarkers {
		if strings.Contains(upper, marker) {
			return NewError(KindContractValidationFailed, "contract code contains disallowed marker %q", marker)
		}
	}
	instrs, err := ParseProgram(code)
	if err != nil {
		return WrapError(KindContractValidationFailed, err, "parse contract code")
	}
	if len(instrs) > maxStackDepth*8 {
		return NewError(KindContractValidationFailed, "contract code exceeds maximum instruction count")
	}

	var loopStarts []int
	for i, ins := range instrs {
		switch ins.Op {
		case OpLoop:
			loopStarts = append(loopStarts, i)
		case OpEndLoop:
			if len(loopStarts) == 0 {
				return NewError(KindContractValidationFailed, "ENDLOOP without matching LOOP")
			}
			start := loopStarts[len(loopStarts)-1]
			loopStarts = loopStarts[:len(loopStarts)-1]
			if i-start > maxLoopSpan {
				return NewError(KindContractValidationFailed, "loop body exceeds %d instructions", maxLoopSpan)
			}
		}
	}
	if len(loopStarts) > 0 {
		return NewError(KindContractValidationFailed, "LOOP without matching ENDLOOP")
	}
	return nil
}

// VMContext carries the execution environment a contract invocation runs
// under (spec §4.7: "block height, gas_limit, caller, self_address,
// transaction-provided key-value map").
type VMContext struct {
	BlockHeight uint64
	GasLimit    uint64
	Caller      Address
	Self        Address
	Params      map[string]string
}

// Receipt is the outcome of one VM.Run invocation.
type Receipt struct {
	Success    bool
	ReturnData Value
	GasUsed    uint64
}

// VM is a stack machine executing one contract invocation (spec §4.7):
// an explicit data stack, scalar string-keyed storage, and a gas counter.
// A fresh VM is constructed per call; Storage is seeded from and persisted
// back into the calling Contract by Engine.
type VM struct {
	instrs  []instruction
	labels  map[string]int
	Storage map[string]string

	stack     []Value
	callStack []int
	loopCount []int64

	gasRemaining uint64
	ctx          VMContext
}

// NewVM constructs a VM ready to execute code against the given storage
// snapshot and execution context.
func NewVM(code []byte, storage map[string]string, ctx VMContext) (*VM, error) {
	instrs, err := ParseProgram(code)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]int)
	var flat []instruction
	for _, ins := range instrs {
		if ins.Label != "" {
			labels[ins.Label] = len(flat)
			continue
		}
		flat = append(flat, ins)
	}
	storeCopy := make(map[string]string, len(storage))
	for k, v := range storage {
		storeCopy[k] = v
	}
	return &VM{
		instrs:       flat,
		labels:       labels,
		Storage:      storeCopy,
		gasRemaining: ctx.GasLimit,
		ctx:          ctx,
	}, nil
}

func (m *VM) push(v Value) error {
	if len(m.stack) >= maxStackDepth {
		return NewError(KindStackUnderflow, "stack overflow")
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *VM) pop() (Value, error) {
	if len(m.stack) == 0 {
		return Value{}, NewError(KindStackUnderflow, "pop from empty stack")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) charge(op Opcode) error {
	cost := GasCost(op)
	if cost > m.gasRemaining {
		m.gasRemaining = 0
		return NewError(KindOutOfGas, "out of gas executing %s", op)
	}
	m.gasRemaining -= cost
	return nil
}

func parseOperand(arg string) Value {
	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return FloatValue(f)
	}
	if arg == "true" || arg == "false" {
		return BoolValue(arg == "true")
	}
	return BytesValue([]byte(arg))
}

func resolveTarget(m *VM, arg string, pc int) (int, error) {
	if idx, ok := m.labels[arg]; ok {
		return idx, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		return n, nil
	}
	return 0, NewError(KindInvalidOpcode, "unresolved jump target %q at instruction %d", arg, pc)
}

func numericBinOp(a, b Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (Value, error) {
	if a.Kind == KindInt && b.Kind == KindInt {
		return IntValue(intOp(b.Int, a.Int)), nil
	}
	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if !aok || !bok {
		return Value{}, NewError(KindContractExecutionError, "non-numeric operand")
	}
	return FloatValue(floatOp(bf, af)), nil
}

// Run executes the parsed program to completion (a RETURN, falling off the
// end of the program, or an error). CALL/RETURN address in-program labels
// (spec §4.7 EXPANDED — cross-contract calls are the ledger's
// responsibility, not this VM's).
func (m *VM) Run() (*Receipt, error) {
	pc := 0
	for pc < len(m.instrs) {
		ins := m.instrs[pc]
		if err := m.charge(ins.Op); err != nil {
			return nil, err
		}
		switch ins.Op {
		case OpPush:
			if err := m.push(parseOperand(ins.Arg)); err != nil {
				return nil, err
			}
			pc++

		case OpPop:
			if _, err := m.pop(); err != nil {
				return nil, err
			}
			pc++

		case OpDup:
			v, err := m.pop()
			if err != nil {
				return nil, err
			}
			if err := m.push(v); err != nil {
				return nil, err
			}
			if err := m.push(v); err != nil {
				return nil, err
			}
			pc++

		case OpSwap:
			a, err := m.pop()
			if err != nil {
				return nil, err
			}
			b, err := m.pop()
			if err != nil {
				return nil, err
			}
			if err := m.push(a); err != nil {
				return nil, err
			}
			if err := m.push(b); err != nil {
				return nil, err
			}
			pc++

		case OpStore:
			v, err := m.pop()
			if err != nil {
				return nil, err
			}
			m.Storage[ins.Arg] = v.String()
			pc++

		case OpLoad:
			raw, ok := m.Storage[ins.Arg]
			if !ok {
				if err := m.push(IntValue(0)); err != nil {
					return nil, err
				}
			} else if err := m.push(parseOperand(raw)); err != nil {
				return nil, err
			}
			pc++

		case OpAdd, OpSub, OpMul, OpDiv:
			a, err := m.pop()
			if err != nil {
				return nil, err
			}
			b, err := m.pop()
			if err != nil {
				return nil, err
			}
			var result Value
			switch ins.Op {
			case OpAdd:
				result, err = numericBinOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
			case OpSub:
				result, err = numericBinOp(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
			case OpMul:
				result, err = numericBinOp(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
			case OpDiv:
				if (b.Kind == KindInt && b.Int == 0) || (b.Kind == KindFloat && b.Float == 0) {
					return nil, NewError(KindContractExecutionError, "division by zero")
				}
				result, err = numericBinOp(a, b, func(x, y int64) int64 { return x / y }, func(x, y float64) float64 { return x / y })
			}
			if err != nil {
				return nil, err
			}
			if err := m.push(result); err != nil {
				return nil, err
			}
			pc++

		case OpEq, OpGt, OpLt:
			a, err := m.pop()
			if err != nil {
				return nil, err
			}
			b, err := m.pop()
			if err != nil {
				return nil, err
			}
			var res bool
			if ins.Op == OpEq {
				res = b.String() == a.String()
			} else {
				bf, bok := b.AsFloat()
				af, aok := a.AsFloat()
				if !bok || !aok {
					return nil, NewError(KindContractExecutionError, "non-numeric comparison")
				}
				if ins.Op == OpGt {
					res = bf > af
				} else {
					res = bf < af
				}
			}
			if err := m.push(BoolValue(res)); err != nil {
				return nil, err
			}
			pc++

		case OpJmp:
			target, err := resolveTarget(m, ins.Arg, pc)
			if err != nil {
				return nil, err
			}
			pc = target

		case OpIf:
			cond, err := m.pop()
			if err != nil {
				return nil, err
			}
			if cond.Kind != KindBool {
				return nil, NewError(KindContractExecutionError, "IF requires a boolean condition")
			}
			if cond.Bool {
				pc++
				continue
			}
			target, err := findMatching(m.instrs, pc, OpIf, OpEndIf, OpElse)
			if err != nil {
				return nil, err
			}
			pc = target + 1

		case OpElse:
			target, err := findMatchingForward(m.instrs, pc, OpEndIf)
			if err != nil {
				return nil, err
			}
			pc = target + 1

		case OpEndIf:
			pc++

		case OpLoop:
			n, err := m.pop()
			if err != nil {
				return nil, err
			}
			if n.Kind != KindInt || n.Int < 0 {
				return nil, NewError(KindContractExecutionError, "LOOP requires a non-negative integer bound")
			}
			m.loopCount = append(m.loopCount, n.Int)
			m.callStack = append(m.callStack, pc)
			pc++

		case OpEndLoop:
			if len(m.loopCount) == 0 {
				return nil, NewError(KindInvalidOpcode, "ENDLOOP without LOOP")
			}
			top := len(m.loopCount) - 1
			m.loopCount[top]--
			loopStart := m.callStack[len(m.callStack)-1]
			if m.loopCount[top] > 0 {
				pc = loopStart + 1
			} else {
				m.loopCount = m.loopCount[:top]
				m.callStack = m.callStack[:len(m.callStack)-1]
				pc++
			}

		case OpCall:
			target, err := resolveTarget(m, ins.Arg, pc)
			if err != nil {
				return nil, err
			}
			m.callStack = append(m.callStack, pc+1)
			pc = target

		case OpReturn:
			var ret Value
			if len(m.stack) > 0 {
				ret, _ = m.pop()
			}
			if len(m.callStack) > 0 {
				pc = m.callStack[len(m.callStack)-1]
				m.callStack = m.callStack[:len(m.callStack)-1]
				if err := m.push(ret); err != nil {
					return nil, err
				}
				continue
			}
			return &Receipt{Success: true, ReturnData: ret, GasUsed: m.ctx.GasLimit - m.gasRemaining}, nil

		default:
			return nil, NewError(KindInvalidOpcode, "unknown opcode %q", ins.Op)
		}
	}
	var ret Value
	if len(m.stack) > 0 {
		ret = m.stack[len(m.stack)-1]
	}
	return &Receipt{Success: true, ReturnData: ret, GasUsed: m.ctx.GasLimit - m.gasRemaining}, nil
}

// findMatching scans forward from an IF at pc for its matching ELSE (if
// elseOp is reached first) or ENDIF, respecting nested IF/ENDIF pairs.
func findMatching(instrs []instruction, pc int, ifOp, endOp, elseOp Opcode) (int, error) {
	depth := 0
	for i := pc + 1; i < len(instrs); i++ {
		switch instrs[i].Op {
		case ifOp:
			depth++
		case elseOp:
			if depth == 0 {
				return i, nil
			}
		case endOp:
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, NewError(KindInvalidOpcode, "unmatched IF at instruction %d", pc)
}

// findMatchingForward scans forward from pc for the next endOp at the same
// nesting depth (used by ELSE to find its ENDIF).
func findMatchingForward(instrs []instruction, pc int, endOp Opcode) (int, error) {
	depth := 0
	for i := pc + 1; i < len(instrs); i++ {
		switch instrs[i].Op {
		case OpIf:
			depth++
		case endOp:
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, NewError(KindInvalidOpcode, "unmatched ELSE at instruction %d", pc)
}
