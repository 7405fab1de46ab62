package core

import "testing"

func TestVMRunSimpleArithmetic(t *testing.T) {
	code := []byte("PUSH 10\nPUSH 32\nADD\nSTORE total\n")
	vm, err := NewVM(code, map[string]string{}, VMContext{GasLimit: 1000})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	receipt, err := vm.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !receipt.Success {
		t.Fatal("expected successful execution")
	}
	if vm.Storage["total"] != "42" {
		t.Fatalf("expected storage[total]=42, got %q", vm.Storage["total"])
	}
}

func TestVMOutOfGas(t *testing.T) {
	code := []byte("PUSH 1\nPUSH 2\nADD\n")
	vm, err := NewVM(code, map[string]string{}, VMContext{GasLimit: 1})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	if _, err := vm.Run(); err == nil {
		t.Fatal("expected an out-of-gas error")
	} else if kind, _ := KindOf(err); kind != KindOutOfGas {
		t.Fatalf("unexpected error kind %v", kind)
	}
}

func TestVMStackUnderflow(t *testing.T) {
	vm, err := NewVM([]byte("ADD\n"), map[string]string{}, VMContext{GasLimit: 100})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	if _, err := vm.Run(); err == nil {
		t.Fatal("expected a stack underflow error")
	}
}

func TestVMDivisionByZero(t *testing.T) {
	code := []byte("PUSH 0\nPUSH 1\nDIV\n")
	vm, err := NewVM(code, map[string]string{}, VMContext{GasLimit: 100})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	if _, err := vm.Run(); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestVMIfElseBranching(t *testing.T) {
	code := []byte("PUSH 5\nPUSH 5\nEQ\nIF\nPUSH 1\nSTORE result\nELSE\nPUSH 0\nSTORE result\nENDIF\n")
	vm, err := NewVM(code, map[string]string{}, VMContext{GasLimit: 1000})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if vm.Storage["result"] != "1" {
		t.Fatalf("expected the true branch to store 1, got %q", vm.Storage["result"])
	}
}

func TestVMLoop(t *testing.T) {
	code := []byte("PUSH 0\nSTORE counter\nPUSH 3\nLOOP\nLOAD counter\nPUSH 1\nADD\nSTORE counter\nENDLOOP\n")
	vm, err := NewVM(code, map[string]string{}, VMContext{GasLimit: 1000})
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if vm.Storage["counter"] != "3" {
		t.Fatalf("expected counter to reach 3 after 3 loop iterations, got %q", vm.Storage["counter"])
	}
}

func TestValidateContractCodeRejectsDynamicEval(t *testing.T) {
	if err := ValidateContractCode([]byte("PUSH 1\nEVAL\n")); err == nil {
		t.Fatal("expected rejection of EVAL marker")
	}
}

func TestValidateContractCodeRejectsUnmatchedLoop(t *testing.T) {
	if err := ValidateContractCode([]byte("LOOP\nPUSH 1\n")); err == nil {
		t.Fatal("expected rejection of an unmatched LOOP")
	}
}

func TestValidateContractCodeRejectsUnrecognizedOpcode(t *testing.T) {
	if err := ValidateContractCode([]byte("FROB 1\n")); err == nil {
		t.Fatal("expected rejection of an unrecognized opcode")
	}
}

func TestValidateContractCodeAcceptsWellFormedProgram(t *testing.T) {
	if err := ValidateContractCode([]byte("PUSH 100\nSTORE balance\nLOAD balance\nRETURN\n")); err != nil {
		t.Fatalf("expected a well-formed program to validate, got %v", err)
	}
}
