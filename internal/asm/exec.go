package asm

// NativeFunc is a Buffer that has been placed in executable memory with its
// labels bound to real addresses.
type NativeFunc interface {
	// Call executes the code from its entry point. Arguments are passed in
	// the System V AMD64 integer registers.
	Call(args ...any) uintptr

	// Entry returns the address of the first byte of code.
	Entry() uintptr

	// Addr returns the bound address of an exported label.
	Addr(label Label) (uintptr, bool)

	// Release unmaps the code. Calls after Release panic.
	Release() error
}
