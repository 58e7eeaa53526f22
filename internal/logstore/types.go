package logstore

// AgentType names the kind of agent a session trains.
type AgentType string

// Known agent types.
const (
	Contextless     AgentType = "contextless"
	SuitCounting    AgentType = "suit-counting"
	CardCounting    AgentType = "card-counting"
	ContextLearning AgentType = "context-learning"
)

// Valid reports whether a is one of the known agent types.
func (a AgentType) Valid() bool {
	switch a {
	case Contextless, SuitCounting, CardCounting, ContextLearning:
		return true
	}
	return false
}

// Header is the summary of a stored log returned by List.
type Header struct {
	SessionName   string    `json:"sessionName"`
	AgentType     AgentType `json:"agentType"`
	Simplified    bool      `json:"simplified"`
	EpochsTrained int       `json:"epochsTrained"`
	LastUpdate    int64     `json:"lastUpdate"` // Unix milliseconds
}

// Log is a stored training session.
type Log struct {
	Header
	CreationTime      int64  `json:"creationTime"` // Unix milliseconds
	SerializedContent string `json:"serializedContent"`
}

// Update is the body of a write to a session.
type Update struct {
	AgentType               AgentType `json:"agentType"`
	Simplified              bool      `json:"simplified"`
	AdditionalEpochsTrained int       `json:"additionalEpochsTrained"`
	SerializedContent       string    `json:"serializedContent"`
}
