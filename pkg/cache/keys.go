package cache

// Keyer derives cache keys for pipeline artifacts.
type Keyer interface {
	// DesignKey identifies a synthesized design (tree, blocks, netlist).
	DesignKey(opts DesignKeyOpts) string

	// ArtifactKey identifies one rendered output of a design.
	ArtifactKey(designHash string, opts ArtifactKeyOpts) string

	// RankKey identifies the rank of a recipe's shape.
	RankKey(catalogHash, recipe string, width int) string
}

// DesignKeyOpts are the inputs that determine a design.
type DesignKeyOpts struct {
	CatalogHash string `json:"catalog"`
	Width       int    `json:"width"`
	Rank        string `json:"rank"`
	Recipe      string `json:"recipe,omitempty"`
	Partition   bool   `json:"partition,omitempty"`
	Optimize    bool   `json:"optimize,omitempty"`
	Name        string `json:"name,omitempty"`
	// Forest and Ranks describe a full adder of one tree per bit. Ranks
	// is the comma-joined rank list.
	Forest bool   `json:"forest,omitempty"`
	Ranks  string `json:"ranks,omitempty"`
}

// ArtifactKeyOpts are the inputs that determine a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Language string `json:"language,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DesignKey returns "design:<sha256 of opts>".
func (DefaultKeyer) DesignKey(opts DesignKeyOpts) string {
	return hashKey("design", opts)
}

// ArtifactKey returns "artifact:<sha256 of design hash and opts>".
func (DefaultKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", designHash, opts)
}

// RankKey returns "rank:<sha256 of inputs>".
func (DefaultKeyer) RankKey(catalogHash, recipe string, width int) string {
	return hashKey("rank", catalogHash, recipe, width)
}
