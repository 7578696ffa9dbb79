package store

// Record is a persisted row.
type Record struct {
	ID   int
	Data string
}

// Put stores a record.
func Put(r Record) error {
	return nil
}
