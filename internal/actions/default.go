package actions

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by code that is not handed
// one explicitly.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a descriptor to the default registry.
func Register(d Descriptor) {
	defaultRegistry.Register(d)
}

// Remove deletes a descriptor from the default registry.
func Remove(id string) {
	defaultRegistry.Remove(id)
}

// Get looks up a descriptor in the default registry.
func Get(id string) (Descriptor, bool) {
	return defaultRegistry.Get(id)
}

// Visible queries the default registry.
func Visible(ec *EvalContext, c Context, g Group) []Descriptor {
	return defaultRegistry.Visible(ec, c, g)
}
