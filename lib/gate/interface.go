package gate

// IGate defines the interface for a process wide mutual exclusion gate.
type IGate interface {
	// Acquire blocks until the gate is free and takes it.
	// Waiters are admitted in arrival order. There is no timeout.
	Acquire()

	// Release frees the gate. Releasing a gate that is not held panics.
	Release()

	// Do runs fn while holding the gate and releases it on every exit path,
	// including a panic inside fn. The error of fn is returned unchanged.
	Do(fn func() error) error
}
