package preview

// Navigator tracks the current position while paging through a list of
// documents. Moving before the first or past the last index is a no-op,
// not an error or a wraparound.
type Navigator struct {
	index int
	count int
}

// NewNavigator creates a navigator over count documents, positioned at
// the first one.
func NewNavigator(count int) *Navigator {
	if count < 0 {
		count = 0
	}
	return &Navigator{count: count}
}

// Index returns the current position.
func (n *Navigator) Index() int {
	return n.index
}

// Count returns the number of documents.
func (n *Navigator) Count() int {
	return n.count
}

// Next advances to the following document, clamped at the end.
func (n *Navigator) Next() int {
	if n.index < n.count-1 {
		n.index++
	}
	return n.index
}

// Prev moves to the preceding document, clamped at the start.
func (n *Navigator) Prev() int {
	if n.index > 0 {
		n.index--
	}
	return n.index
}

// HasNext reports whether Next would move.
func (n *Navigator) HasNext() bool {
	return n.index < n.count-1
}

// HasPrev reports whether Prev would move.
func (n *Navigator) HasPrev() bool {
	return n.index > 0
}
