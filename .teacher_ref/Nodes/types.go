package Nodes

// Address mirrors the core address type without creating a dependency.
type Address [20]byte

// Hash mirrors the core hash type.
type Hash [32]byte
