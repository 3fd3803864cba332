package cache

// ScopedKeyer wraps a Keyer with a prefix to isolate cache namespaces.
// The HTTP service scopes its keys so that CLI and service entries never
// collide when they share a Redis instance.
//
// Example usage:
//
//	serviceKeyer := NewScopedKeyer(NewDefaultKeyer(), "svc:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for routing results.
func (k *ScopedKeyer) ResultKey(designHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(designHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}
