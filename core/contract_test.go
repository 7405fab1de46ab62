package core

import "testing"

func TestContractAddressMatchesNewContract(t *testing.T) {
	owner := Address("alice-address-00000000000000000000000")
	code := []byte("PUSH 1\nRETURN\n")
	const createdAt = int64(1700000000)

	c, err := NewContract(owner, code, createdAt)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	addr, err := ContractAddress(owner, code, createdAt)
	if err != nil {
		t.Fatalf("ContractAddress: %v", err)
	}
	if c.ID != addr {
		t.Fatalf("ContractAddress (%s) must match the address NewContract derives (%s)", addr, c.ID)
	}
}

func TestContractInvokeRunsCodeAgainstStorage(t *testing.T) {
	c, err := NewContract("owner", []byte("PUSH 7\nSTORE seven\n"), 1)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	if _, err := c.Invoke(VMContext{GasLimit: 100, Caller: "owner", Self: c.ID}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if c.Storage["seven"] != "7" {
		t.Fatalf("expected storage[seven]=7, got %q", c.Storage["seven"])
	}
}

func TestContractInvokeInactiveRejected(t *testing.T) {
	c, err := NewContract("owner", []byte("PUSH 1\n"), 1)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	c.Active = false
	if _, err := c.Invoke(VMContext{GasLimit: 100}); err == nil {
		t.Fatal("expected an error invoking an inactive contract")
	}
}
