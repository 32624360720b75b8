package colex

// Context is the accumulating key-value side channel threaded through an
// adapter chain. Each hop receives the context accumulated so far and may
// contribute new values via its AdapterOutput.
type Context map[string]interface{}

// Clone returns a shallow copy of the context
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a new context holding this context's entries overlaid with
// other's. Key collisions are last-writer-wins: other's values overwrite.
// Collisions are not an error.
func (c Context) Merge(other Context) Context {
	out := c.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
