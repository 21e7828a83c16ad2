package model

// Agent represents one enrichable contact. Identity fields are set during
// acquisition; enrichment fields are only ever added by later stages, never
// overwritten.
type Agent struct {
	Name          string `json:"name"`
	Title         string `json:"title,omitempty"`
	ZillowProfile string `json:"zillow_profile"`
	LinkedIn      string `json:"linkedin,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Office groups agents that share a listing context. Stages pass offices
// through unchanged apart from dropping agents they failed to enrich.
type Office struct {
	Name    string  `json:"office_name,omitempty"`
	Address string  `json:"office_address,omitempty"`
	Agents  []Agent `json:"agents"`
}

// Enrichment carries the fields a resolved reveal job can attach to an agent.
type Enrichment struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Merge folds non-empty enrichment fields into the agent. Fields already set
// by an earlier stage are kept as-is.
func (a *Agent) Merge(e Enrichment) {
	if a.LinkedIn == "" {
		a.LinkedIn = e.LinkedIn
	}
	if a.Email == "" {
		a.Email = e.Email
	}
	if a.Phone == "" {
		a.Phone = e.Phone
	}
}

// AgentCount returns the total number of agents across all offices.
func AgentCount(offices []Office) int {
	n := 0
	for _, o := range offices {
		n += len(o.Agents)
	}
	return n
}
