package domain

// Collection groups persisted chunks, typically one per knowledge base.
type Collection struct {
	ID     string
	Name   string
	Chunks int
}
