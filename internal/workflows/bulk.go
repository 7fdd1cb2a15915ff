package workflows

// NewBulkOperationDefinition builds the bulk operation workflow: the
// batching, parallelism, and per-entity retry/rollback logic all live in
// the bulk_operation activity itself, since a Step-per-entity Definition
// can't express a dynamically-sized entity list.
func NewBulkOperationDefinition() *Definition {
	return &Definition{
		Name: "bulk_operation",
		Steps: []Step{
			{
				Name:     "run",
				Activity: "bulk_operation",
				Input:    passthroughInput,
			},
		},
	}
}
