package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving several
// deployments or catalogs separate namespaces in one shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DesignKey generates a prefixed design key.
func (k *ScopedKeyer) DesignKey(opts DesignKeyOpts) string {
	return k.prefix + k.inner.DesignKey(opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(designHash, opts)
}

// RankKey generates a prefixed rank key.
func (k *ScopedKeyer) RankKey(catalogHash, recipe string, width int) string {
	return k.prefix + k.inner.RankKey(catalogHash, recipe, width)
}
