package pool

import "fmt"

// InvariantError is raised when a caller requests a tier transition for an
// endpoint key that is not where the caller believes it to be. Per
// spec.md §7 this is a programmer error, not a runtime condition: the
// caller that provoked it is expected to let it propagate and crash its own
// task loudly rather than swallow it.
type InvariantError struct {
	Op  string
	Key Key
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("pool: invariant violation: %s on absent key %s", e.Op, e.Key)
}
