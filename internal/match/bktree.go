package match

// bkTree indexes perceptual hashes under a metric distance so that all
// neighbours within a threshold are found without scanning every element.
type bkTree struct {
	root     *bkNode
	distance func(a, b uint64) int
}

type bkNode struct {
	hash     uint64
	index    int
	children map[int]*bkNode // distance -> child
}

func newBKTree(distanceFn func(a, b uint64) int) *bkTree {
	return &bkTree{distance: distanceFn}
}

func (t *bkTree) insert(hash uint64, index int) {
	node := &bkNode{hash: hash, index: index, children: make(map[int]*bkNode)}

	if t.root == nil {
		t.root = node
		return
	}

	current := t.root
	for {
		dist := t.distance(hash, current.hash)
		child, ok := current.children[dist]
		if !ok {
			current.children[dist] = node
			return
		}
		current = child
	}
}

// findWithinDistance returns the indices of all elements within threshold
// of hash.
func (t *bkTree) findWithinDistance(hash uint64, threshold int) []int {
	if t.root == nil {
		return nil
	}
	var results []int
	t.search(t.root, hash, threshold, &results)
	return results
}

func (t *bkTree) search(node *bkNode, hash uint64, threshold int, results *[]int) {
	dist := t.distance(hash, node.hash)
	if dist <= threshold {
		*results = append(*results, node.index)
	}

	// Triangle inequality bounds the child distances worth visiting.
	for childDist, child := range node.children {
		if childDist >= dist-threshold && childDist <= dist+threshold {
			t.search(child, hash, threshold, results)
		}
	}
}

func (t *bkTree) size() int {
	if t.root == nil {
		return 0
	}
	return countNodes(t.root)
}

func countNodes(node *bkNode) int {
	count := 1
	for _, child := range node.children {
		count += countNodes(child)
	}
	return count
}
