package types

type BuildState string

const (
	BuildStateUnbuilt            BuildState = "unbuilt"
	BuildStateDebianized         BuildState = "debianized"
	BuildStateMetadataPatched    BuildState = "metadata-patched"
	BuildStateBuildDepsInstalled BuildState = "build-deps-installed"
	BuildStateBuilt              BuildState = "built"
	BuildStateCollected          BuildState = "collected"
	BuildStateFailed             BuildState = "failed"
)

// Terminal reports whether no further transition leaves the state.
func (s BuildState) Terminal() bool {
	return s == BuildStateCollected || s == BuildStateFailed
}

type ConstraintOp string

const (
	ConstraintOpNone      ConstraintOp = ""
	ConstraintOpEq2       ConstraintOp = "=="
	ConstraintOpArbitrary ConstraintOp = "==="
	ConstraintOpNe        ConstraintOp = "!="
	ConstraintOpCompat    ConstraintOp = "~="
	ConstraintOpGte       ConstraintOp = ">="
	ConstraintOpLte       ConstraintOp = "<="
	ConstraintOpGt        ConstraintOp = ">"
	ConstraintOpLt        ConstraintOp = "<"
)
