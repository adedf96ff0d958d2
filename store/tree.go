package store

import (
	"fmt"
	"time"

	"github.com/brettboylen/post-index/models"
)

// treeNode owns its children; rotations hand the new subtree root back to the caller
type treeNode struct {
	post   *models.Post
	key    time.Time
	left   *treeNode
	right  *treeNode
	height int
}

// TimestampTree is an AVL tree of posts ordered by timestamp
type TimestampTree struct {
	root *treeNode
	size int
}

// NewTimestampTree creates an empty tree
func NewTimestampTree() *TimestampTree {
	return &TimestampTree{}
}

// Len returns the number of posts in the tree
func (t *TimestampTree) Len() int {
	return t.size
}

// Height returns the height of the root, 0 for an empty tree
func (t *TimestampTree) Height() int {
	return height(t.root)
}

// Insert adds a post to the tree.
// An equal timestamp is rejected with ErrDuplicateKey and leaves the tree unchanged.
func (t *TimestampTree) Insert(post *models.Post) error {
	root, err := insertNode(t.root, post, timestampKey(post.Timestamp))
	if err != nil {
		return err
	}
	t.root = root
	t.size++
	return nil
}

// Min returns the earliest post, nil for an empty tree
func (t *TimestampTree) Min() *models.Post {
	n := t.root
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n.post
}

// Max returns the latest post, nil for an empty tree
func (t *TimestampTree) Max() *models.Post {
	n := t.root
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n.post
}

// Walk visits posts in ascending timestamp order until fn returns false
func (t *TimestampTree) Walk(fn func(post *models.Post) bool) {
	walk(t.root, fn)
}

func walk(n *treeNode, fn func(post *models.Post) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n.post) {
		return false
	}
	return walk(n.right, fn)
}

func insertNode(n *treeNode, post *models.Post, key time.Time) (*treeNode, error) {
	if n == nil {
		return &treeNode{post: post, key: key, height: 1}, nil
	}

	var err error
	switch cmp := key.Compare(n.key); {
	case cmp < 0:
		n.left, err = insertNode(n.left, post, key)
	case cmp > 0:
		n.right, err = insertNode(n.right, post, key)
	default:
		return n, fmt.Errorf("tree already holds %s: %w", post.Timestamp, ErrDuplicateKey)
	}
	if err != nil {
		return n, err
	}

	updateHeight(n)
	return rebalance(n), nil
}

func rebalance(n *treeNode) *treeNode {
	balance := balanceFactor(n)

	if balance > 1 {
		// left-right case
		if height(n.left.left) < height(n.left.right) {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	}

	if balance < -1 {
		// right-left case
		if height(n.right.right) < height(n.right.left) {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}

	return n
}

func rotateRight(n *treeNode) *treeNode {
	pivot := n.left
	n.left = pivot.right
	pivot.right = n

	updateHeight(n)
	updateHeight(pivot)
	return pivot
}

func rotateLeft(n *treeNode) *treeNode {
	pivot := n.right
	n.right = pivot.left
	pivot.left = n

	updateHeight(n)
	updateHeight(pivot)
	return pivot
}

func height(n *treeNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func updateHeight(n *treeNode) {
	n.height = 1 + max(height(n.left), height(n.right))
}

func balanceFactor(n *treeNode) int {
	return height(n.left) - height(n.right)
}
