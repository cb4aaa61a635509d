package cache

// TransformKeyOpts are the inputs, besides the document, that decide a
// transform's output.
type TransformKeyOpts struct {
	Renames map[string]string `json:"renames,omitempty"`
	// RulesHash is a hash of the effective rule set (see config.Rules.Hash).
	RulesHash string `json:"rules"`
}

// Keyer derives cache keys.
type Keyer interface {
	TransformKey(doc string, opts TransformKeyOpts) string
	InspectKey(doc string) string
}

// DefaultKeyer hashes the document and options into "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TransformKey(doc string, opts TransformKeyOpts) string {
	// encoding/json sorts map keys, so equal mappings hash equally.
	return hashKey("transform", Hash([]byte(doc)), opts)
}

func (DefaultKeyer) InspectKey(doc string) string {
	return hashKey("inspect", Hash([]byte(doc)))
}

// ScopedKeyer prefixes every key from inner, e.g. to keep two deployments
// sharing one Redis apart.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TransformKey(doc string, opts TransformKeyOpts) string {
	return k.prefix + k.inner.TransformKey(doc, opts)
}

func (k *ScopedKeyer) InspectKey(doc string) string {
	return k.prefix + k.inner.InspectKey(doc)
}
