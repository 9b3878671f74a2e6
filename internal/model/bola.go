package model

// Operation is the GraphQL operation kind a BolaPointOfInterest was found
// on.
type Operation string

const (
	OperationQuery    Operation = "query"
	OperationMutation Operation = "mutation"
)

// BolaPointOfInterest is a single root field, discovered from the schema,
// that accepts an id-shaped argument -- a candidate for cross-principal
// object access probing.
type BolaPointOfInterest struct {
	FieldName      string
	Operation      Operation
	IDArgName      string
	ReturnTypeName string
}
