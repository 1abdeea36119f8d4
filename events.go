package chisel

import "github.com/akmonengine/chisel/mesh"

const (
	INDEX_REBUILT EventType = iota
	FIELD_GENERATED
	FIELD_EDITED
	MESH_EXTRACTED
	MESH_TRUNCATED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// IndexRebuiltEvent fires when a new source mesh replaces the spatial index
type IndexRebuiltEvent struct {
	Triangles int
}

func (e IndexRebuiltEvent) Type() EventType { return INDEX_REBUILT }

// FieldGeneratedEvent fires when the volume is (re)populated from the index
type FieldGeneratedEvent struct {
	Band float64
}

func (e FieldGeneratedEvent) Type() EventType { return FIELD_GENERATED }

// FieldEditedEvent fires after every CSG or brush edit of the volume
type FieldEditedEvent struct{}

func (e FieldEditedEvent) Type() EventType { return FIELD_EDITED }

// MeshExtractedEvent fires after surface extraction, truncated or not
type MeshExtractedEvent struct {
	Mesh *mesh.Mesh
}

func (e MeshExtractedEvent) Type() EventType { return MESH_EXTRACTED }

// MeshTruncatedEvent fires when extraction ran out of output capacity; the
// caller decides whether to retry with a larger capacity or a coarser field
type MeshTruncatedEvent struct {
	Capacity int
}

func (e MeshTruncatedEvent) Type() EventType { return MESH_TRUNCATED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
