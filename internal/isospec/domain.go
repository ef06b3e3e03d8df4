package isospec

// Mode carries the security and exception-level flags of a resolved
// cluster. EL is a hex mask; bits 0 and 1 are set together when the spec
// entry requests exception-level support.
type Mode struct {
	Secure bool   `json:"secure"`
	EL     string `json:"el"`
}

// Cluster is one resolved CPU cluster for a subsystem. CPUMask is a hex
// string where bit k marks CPU index k.
type Cluster struct {
	Cluster string `json:"cluster"`
	CPUMask string `json:"cpumask"`
	Mode    Mode   `json:"mode"`
}

// AccessEntry is one resolved device access for a subsystem
type AccessEntry struct {
	Dev   string          `json:"dev"`
	Flags map[string]bool `json:"flags"`
}

// Region is one resolved memory or sram range
type Region struct {
	Start uint64 `json:"start"`
	Size  uint64 `json:"size"`
}
