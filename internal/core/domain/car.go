package domain

const availableField = "available"

// Car is the inventory service's car resource. It is owned upstream, so every
// field is carried through untouched except the availability flag.
type Car map[string]any

func (c Car) Available() (bool, bool) {
	v, ok := c[availableField].(bool)
	return v, ok
}

func (c Car) MarkUnavailable() {
	c[availableField] = false
}
