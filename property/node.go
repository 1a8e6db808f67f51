package property

// Node is a resolved property. It keeps the object the value was read from
// so later stages can still see its origin. Node implements pipe.Wrapped.
type Node struct {
	value any
	host  Object
	name  string
}

// NewNode creates a Node for the property name of host.
func NewNode(value any, host Object, name string) *Node {
	return &Node{value: value, host: host, name: name}
}

// Origin returns the resolved value.
func (n *Node) Origin() any { return n.value }

// Host returns the object the value was read from.
func (n *Node) Host() Object { return n.host }

// Name returns the property name.
func (n *Node) Name() string { return n.name }

// Get resolves name on v and returns it as a Node. A Node input resolves
// against its origin.
func Get(v any, name string) (*Node, bool) {
	obj := NewObject(v)
	val, ok := obj.Property(name)
	if !ok {
		return nil, false
	}
	return NewNode(val, obj, name), true
}
