package cache

// lruList maintains cache eviction order with an intrusive doubly linked
// list plus a key index.
type lruList struct {
	head  *lruNode
	tail  *lruNode
	nodes map[string]*lruNode
	size  int
}

type lruNode struct {
	key        string
	prev, next *lruNode
}

func newLRUList() *lruList {
	head := &lruNode{}
	tail := &lruNode{}
	head.next = tail
	tail.prev = head
	return &lruList{head: head, tail: tail, nodes: make(map[string]*lruNode)}
}

// touch moves a key to the front, inserting it if unknown.
func (l *lruList) touch(key string) {
	if node, ok := l.nodes[key]; ok {
		l.unlink(node)
		l.pushFront(node)
		return
	}
	node := &lruNode{key: key}
	l.nodes[key] = node
	l.pushFront(node)
	l.size++
}

// remove drops a key from the list.
func (l *lruList) remove(key string) {
	if node, ok := l.nodes[key]; ok {
		l.unlink(node)
		delete(l.nodes, key)
		l.size--
	}
}

// oldest removes and returns the least recently used key, or "" when empty.
func (l *lruList) oldest() string {
	if l.size == 0 {
		return ""
	}
	node := l.tail.prev
	l.unlink(node)
	delete(l.nodes, node.key)
	l.size--
	return node.key
}

func (l *lruList) pushFront(node *lruNode) {
	node.next = l.head.next
	node.prev = l.head
	l.head.next.prev = node
	l.head.next = node
}

func (l *lruList) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
