package cache

import "fmt"

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// SimulationKey identifies the state after simulating a scene.
	SimulationKey(sceneHash string, opts SimulationKeyOpts) string

	// ArtifactKey identifies one encoded frame of a simulated state.
	ArtifactKey(stateHash string, opts ArtifactKeyOpts) string
}

// SimulationKeyOpts are the inputs that change a simulated state.
type SimulationKeyOpts struct {
	ConfigHash string `json:"config"`
	Ticks      int    `json:"ticks"`
	Seed       uint64 `json:"seed"`
}

// ArtifactKeyOpts are the inputs that change an encoded frame.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	DPR        float64 `json:"dpr,omitempty"`
	Background string  `json:"background,omitempty"`
	NoGlow     bool    `json:"no_glow,omitempty"`
	NoTrail    bool    `json:"no_trail,omitempty"`
	Cols       int     `json:"cols,omitempty"`
	Rows       int     `json:"rows,omitempty"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SimulationKey returns "sim:<sha256>".
func (DefaultKeyer) SimulationKey(sceneHash string, opts SimulationKeyOpts) string {
	return hashKey("sim", sceneHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(stateHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), stateHash, opts)
}
