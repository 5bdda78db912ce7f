package core

// Attribute is a dynamic attribute of a rendered element.
type Attribute struct {
	Name      string
	Namespace string
	Value     AttributeValue
	// MountedElement is the element the attribute was applied to.
	MountedElement ElementID
}

// AttributeValue is the value of an Attribute. Listener and arbitrary values
// may capture state of the scope that installed them and are taken during
// the disconnect phase of teardown.
type AttributeValue interface {
	attributeValue()
}

type (
	// TextValue is a string attribute.
	TextValue string
	// FloatValue is a floating point attribute.
	FloatValue float64
	// IntValue is an integer attribute.
	IntValue int64
	// BoolValue is a boolean attribute.
	BoolValue bool
	// NoneValue is an attribute that is present but carries nothing.
	NoneValue struct{}
)

func (TextValue) attributeValue()  {}
func (FloatValue) attributeValue() {}
func (IntValue) attributeValue()   {}
func (BoolValue) attributeValue()  {}
func (NoneValue) attributeValue()  {}

// ListenerValue holds an event handler closure until it is taken.
type ListenerValue struct {
	handler func(event any)
}

// Listener wraps handler as an attribute value.
func Listener(handler func(event any)) *ListenerValue {
	return &ListenerValue{handler: handler}
}

func (*ListenerValue) attributeValue() {}

// Call invokes the handler. It reports false once the handler was taken.
func (l *ListenerValue) Call(event any) bool {
	if l == nil || l.handler == nil {
		return false
	}
	l.handler(event)
	return true
}

// Take discards the handler and reports whether one was held.
func (l *ListenerValue) Take() bool {
	if l == nil || l.handler == nil {
		return false
	}
	l.handler = nil
	return true
}

// IsEmpty reports whether the handler was taken.
func (l *ListenerValue) IsEmpty() bool {
	return l == nil || l.handler == nil
}

// AnyValue holds an arbitrary attribute payload until it is taken.
type AnyValue struct {
	value   any
	present bool
}

// Any wraps v as an attribute value.
func Any(v any) *AnyValue {
	return &AnyValue{value: v, present: true}
}

func (*AnyValue) attributeValue() {}

// Value returns the payload, if it has not been taken.
func (a *AnyValue) Value() (any, bool) {
	if a == nil {
		return nil, false
	}
	return a.value, a.present
}

// Take discards the payload and reports whether one was held.
func (a *AnyValue) Take() bool {
	if a == nil || !a.present {
		return false
	}
	a.value = nil
	a.present = false
	return true
}
