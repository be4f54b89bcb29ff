package team

import "github.com/cory-johannsen/arena/internal/game/creature"

// Container is the reserve of creatures behind a team. The engine only ever
// sees it through Team; implementations differ in which creature comes out
// next and in what Special does.
type Container interface {
	// Retrieve removes and returns the next creature, or nil when empty.
	Retrieve() *creature.Creature
	// Return drops fainted creatures; others have their status cleared and are re-inserted.
	Return(c *creature.Creature)
	// Special reorders the whole reserve without adding or removing creatures.
	Special()
	IsEmpty() bool
	Len() int
	// Snapshot lists the reserve in retrieval order.
	Snapshot() []*creature.Creature
}

// admit reports whether c may re-enter a container, clearing its status if so.
func admit(c *creature.Creature) bool {
	if c == nil || c.IsFainted() {
		return false
	}
	c.Status = creature.StatusNone
	return true
}

// Stack is a last-in first-out container. Special swaps the top and bottom creatures.
type Stack struct {
	items []*creature.Creature // top is the last element
}

// NewStack returns an empty Stack.
func NewStack() *Stack { return &Stack{} }

func (s *Stack) Retrieve() *creature.Creature {
	if len(s.items) == 0 {
		return nil
	}
	c := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return c
}

func (s *Stack) Return(c *creature.Creature) {
	if admit(c) {
		s.items = append(s.items, c)
	}
}

func (s *Stack) Special() {
	if n := len(s.items); n > 1 {
		s.items[0], s.items[n-1] = s.items[n-1], s.items[0]
	}
}

func (s *Stack) IsEmpty() bool { return len(s.items) == 0 }
func (s *Stack) Len() int      { return len(s.items) }

func (s *Stack) Snapshot() []*creature.Creature {
	out := make([]*creature.Creature, len(s.items))
	for i, c := range s.items {
		out[len(s.items)-1-i] = c
	}
	return out
}

// Queue is a first-in first-out container. Special swaps the front and back
// halves as blocks; for an odd length the middle creature stays put.
type Queue struct {
	items []*creature.Creature // head is the first element
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Retrieve() *creature.Creature {
	if len(q.items) == 0 {
		return nil
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c
}

func (q *Queue) Return(c *creature.Creature) {
	if admit(c) {
		q.items = append(q.items, c)
	}
}

func (q *Queue) Special() {
	n := len(q.items)
	half := n / 2
	if half == 0 {
		return
	}
	out := make([]*creature.Creature, 0, n)
	out = append(out, q.items[n-half:]...)
	out = append(out, q.items[half:n-half]...)
	out = append(out, q.items[:half]...)
	q.items = out
}

func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }
func (q *Queue) Len() int      { return len(q.items) }

func (q *Queue) Snapshot() []*creature.Creature {
	return append([]*creature.Creature(nil), q.items...)
}

type entry struct {
	c   *creature.Creature
	key int
}

// Ordered keeps creatures sorted by a criterion evaluated when each creature
// is inserted. Retrieve takes the head. Special reverses the order and flips
// the direction later insertions follow.
//
// Invariant: items is sorted by key in the current direction; a creature is
// inserted after every creature already holding an equal key.
type Ordered struct {
	criterion  Criterion
	items      []entry
	descending bool
}

// NewOrdered returns an empty ascending Ordered container.
//
// Precondition: criterion is not CriterionNone.
func NewOrdered(criterion Criterion) *Ordered {
	return &Ordered{criterion: criterion}
}

// Descending reports whether the head holds the largest key.
func (o *Ordered) Descending() bool { return o.descending }

func (o *Ordered) Retrieve() *creature.Creature {
	if len(o.items) == 0 {
		return nil
	}
	c := o.items[0].c
	o.items = o.items[1:]
	return c
}

func (o *Ordered) Return(c *creature.Creature) {
	if !admit(c) {
		return
	}
	e := entry{c: c, key: o.criterion.Key(c)}
	i := len(o.items)
	for j, it := range o.items {
		if (!o.descending && it.key > e.key) || (o.descending && it.key < e.key) {
			i = j
			break
		}
	}
	o.items = append(o.items, entry{})
	copy(o.items[i+1:], o.items[i:])
	o.items[i] = e
}

func (o *Ordered) Special() {
	for i, j := 0, len(o.items)-1; i < j; i, j = i+1, j-1 {
		o.items[i], o.items[j] = o.items[j], o.items[i]
	}
	o.descending = !o.descending
}

func (o *Ordered) IsEmpty() bool { return len(o.items) == 0 }
func (o *Ordered) Len() int      { return len(o.items) }

func (o *Ordered) Snapshot() []*creature.Creature {
	out := make([]*creature.Creature, len(o.items))
	for i, e := range o.items {
		out[i] = e.c
	}
	return out
}

// newContainer returns an empty container for mode.
func newContainer(mode Mode, criterion Criterion) Container {
	switch mode {
	case ModeQueue:
		return NewQueue()
	case ModeOrdered:
		return NewOrdered(criterion)
	default:
		return NewStack()
	}
}
