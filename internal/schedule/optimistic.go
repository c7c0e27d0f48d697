package schedule

// Commit puts next into *cur, then runs persist. If persist fails the
// previous value is put back and the failure is returned as a
// *PersistenceError for op.
func Commit[T any](op string, cur *T, next T, persist func() error) error {
	prev := *cur
	*cur = next
	if err := persist(); err != nil {
		*cur = prev
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}
