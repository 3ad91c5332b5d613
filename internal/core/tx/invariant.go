package tx

import (
	"fmt"
)

// InvariantError reports a transaction left open after an operation finished.
// It is raised via panic: a dangling transaction is a programming error and
// must never surface as an ordinary user-facing failure.
type InvariantError struct {
	Open int32
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tx: %d transaction(s) still open after operation", e.Open)
}

// AssertClean panics with *InvariantError if m still has open transactions.
// Public session operations defer it so every path out of an operation is
// checked, including early returns.
func AssertClean(m Manager) {
	if n := m.OpenTransactions(); n != 0 {
		panic(&InvariantError{Open: n})
	}
}
