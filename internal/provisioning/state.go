package provisioning

// OS families the pipeline knows how to provision. Anything else is
// rejected before the first stage runs.
const (
	FamilyDebian = "debian"
	FamilyRHEL   = "rhel"
)

// State holds what the pipeline has learned about the external system.
// It is progressively populated as stages complete and is re-derived on
// every run; nothing in it is persisted by the sequencer.
type State struct {
	// Host facts (populated before the pipeline starts)
	OSFamily string // FamilyDebian or FamilyRHEL
	OSName   string // pretty name from os-release, for logs

	// Cluster results (populated by the bootstrap stages)
	Kubeconfig []byte
	NodeName   string
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}
