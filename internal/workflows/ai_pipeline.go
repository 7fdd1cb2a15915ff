package workflows

// NewAIRequestPipelineDefinition builds the AI request pipeline: the
// model/provider resolution, quota check, dispatch, and usage recording
// all happen inside the single ai_request activity, since splitting them
// across steps would mean re-deriving which model/provider was chosen.
func NewAIRequestPipelineDefinition() *Definition {
	return &Definition{
		Name: "ai_request_pipeline",
		Steps: []Step{
			{
				Name:     "dispatch",
				Activity: "ai_request",
				Input:    passthroughInput,
			},
		},
	}
}
