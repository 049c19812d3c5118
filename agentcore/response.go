package agentcore

// Response is the uniform output of the Agent Contract. Emitted once per
// call and never mutated afterwards.
type Response struct {
	Content          string
	SpecialistType   string
	ConfidenceScore  float64
	ToolsUsed        []string
	NextActions      []string
	Sources          []string
	Metadata         map[string]any
	Success          bool
	ErrorMessage     string
	ProcessingTimeMS float64
}

func failureResponse(specialistType, errorMessage string) Response {
	return Response{
		SpecialistType: specialistType,
		Success:        false,
		ErrorMessage:   errorMessage,
		Metadata:       map[string]any{},
	}
}
