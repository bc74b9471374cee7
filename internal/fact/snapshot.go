package fact

import "context"

// Snapshot is a point-in-time mapping from fact name to value (string,
// number or bool). It is ephemeral: built fresh for every evaluation pass
// and never persisted.
type Snapshot map[string]any

// Resolve looks up a fact by name.
func (s Snapshot) Resolve(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

// Merge returns a copy of s with overlay applied on top. Either side may be
// nil.
func (s Snapshot) Merge(overlay Snapshot) Snapshot {
	out := make(Snapshot, len(s)+len(overlay))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Provider supplies the snapshot an evaluation pass runs against.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// StaticProvider serves a fixed set of facts (typically seeded from config).
type StaticProvider struct {
	Facts Snapshot
}

func (p *StaticProvider) Snapshot(context.Context) (Snapshot, error) {
	return p.Facts.Merge(nil), nil
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Snapshot, error)

func (f ProviderFunc) Snapshot(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}
