package types

// Constraint is a single PEP 440 version clause of a requirement.
type Constraint struct {
	Op      ConstraintOp
	Version string
}

// Dependency is a declared ecosystem requirement of a package. Names are
// PEP 503 normalized so they can be looked up among candidates.
type Dependency struct {
	Name        string
	Constraints []Constraint
}
