// Package payload holds per-identifier semantic plausibility checks. A check
// answers one question: could a frame with this payload have come from the
// real device behind this identifier?
package payload

// Validator checks one identifier's payload schema. Implementations must
// treat malformed or undersized input as invalid, never panic.
type Validator interface {
	Validate(id uint32, data []byte) bool
}

// Registry maps identifiers to their validators. Identifiers with no
// registered validator are not checked at all; the gateway forwards trusted
// traffic unchecked unless a schema was explicitly configured for it.
type Registry struct {
	byID map[uint32]Validator
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]Validator)}
}

func (r *Registry) Register(id uint32, v Validator) {
	r.byID[id] = v
}

// Lookup returns the validator for id, if one was registered.
func (r *Registry) Lookup(id uint32) (Validator, bool) {
	v, ok := r.byID[id]
	return v, ok
}
