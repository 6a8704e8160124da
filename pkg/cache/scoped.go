package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools, or several
// releases with different render output, can share one backend without
// reading each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "perimeter/v0.3.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SimulationKey returns the prefixed simulation key.
func (k *ScopedKeyer) SimulationKey(sceneHash string, opts SimulationKeyOpts) string {
	return k.prefix + k.inner.SimulationKey(sceneHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(stateHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(stateHash, opts)
}
