package binarytree

// BinaryTree is a complete binary tree in array form. Every level is completely
// filled, except possibly the last, which is filled from left to right.
//
// Slot 0 is always occupied by an unset value to make index calculations a breeze.
type BinaryTree[T any] struct {
	ds  []T
	set []bool
}

// New creates a binary tree holding only the root node.
func New[T any](rootValue T) *BinaryTree[T] {
	var zero T
	return &BinaryTree[T]{
		ds:  []T{zero, rootValue},
		set: []bool{false, true},
	}
}

// Add appends a node in level order.
func (bt *BinaryTree[T]) Add(value T) {
	bt.ds = append(bt.ds, value)
	bt.set = append(bt.set, true)
}

// Get returns the value stored at index, false for the reserved slot or an index past the end.
func (bt *BinaryTree[T]) Get(index uint64) (T, bool) {
	var zero T
	if index >= uint64(len(bt.ds)) || !bt.set[index] {
		return zero, false
	}
	return bt.ds[index], true
}

// Len returns the number of nodes, the reserved slot excluded.
func (bt *BinaryTree[T]) Len() int {
	return len(bt.ds) - 1
}

// Values returns a copy of the array representation, including the reserved slot
// at position 0. The returned slice of flags reports which slots hold a value.
func (bt *BinaryTree[T]) Values() ([]T, []bool) {
	values := make([]T, len(bt.ds))
	copy(values, bt.ds)
	set := make([]bool, len(bt.set))
	copy(set, bt.set)
	return values, set
}

// Height of the tree, derived from its node count.
func (bt *BinaryTree[T]) Height() uint64 {
	return Height(uint64(bt.Len()))
}

// Parent returns the value of index's parent.
func (bt *BinaryTree[T]) Parent(index uint64) (T, bool) {
	return bt.Get(Parent(index))
}

// Children returns the values of index's left and right children.
func (bt *BinaryTree[T]) Children(index uint64) (left T, hasLeft bool, right T, hasRight bool) {
	left, hasLeft = bt.Get(LeftChild(index))
	right, hasRight = bt.Get(RightChild(index))
	return
}
