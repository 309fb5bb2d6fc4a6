// Package actions holds the registry of contextual message actions.
//
// Feature modules register Descriptors at boot. Rendering code asks the
// registry which actions apply to a message with Visible, which filters
// by group and context from cached views and then evaluates each action's
// condition. Condition results are memoized per descriptor for a short
// window, keyed by the canonical JSON form of the EvalContext, and every
// mutation of the registry drops both the cached views and the memoized
// results.
package actions
