package ir

// Version constants for registry schema and engine.
const (
	// SchemaVersionConstraint is the semver range of registry schema_version
	// values this engine understands.
	SchemaVersionConstraint = ">= 1.0.0, < 2.0.0"

	// EngineVersion is the actionroute engine version.
	EngineVersion = "0.3.0"
)
