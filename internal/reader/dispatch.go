package reader

import "fmt"

// Handler consumes one decoded completion. done reports that the read
// loop should terminate; a non-nil err makes the termination fatal.
type Handler interface {
	HandleCompletion(c Completion) (done bool, err error)
}

const maxHandlers = 8

// handlerArena is a bounded registry of completion handlers keyed by
// kind. Registration and lookup are bounds-checked against the occupancy
// count — slots past count are never touched.
type handlerArena struct {
	kinds [maxHandlers]CompletionKind
	slots [maxHandlers]Handler
	count int
}

func (a *handlerArena) register(k CompletionKind, h Handler) error {
	if a.count >= maxHandlers {
		return fmt.Errorf("handler registry full (%d slots)", maxHandlers)
	}
	a.kinds[a.count] = k
	a.slots[a.count] = h
	a.count++
	return nil
}

// dispatch routes a completion to the handler registered for its kind.
// An unregistered kind is a programming error and terminates the loop.
func (a *handlerArena) dispatch(c Completion) (bool, error) {
	for i := 0; i < a.count; i++ {
		if a.kinds[i] == c.Kind {
			return a.slots[i].HandleCompletion(c)
		}
	}
	return true, fmt.Errorf("no handler for completion kind %d", c.Kind)
}
