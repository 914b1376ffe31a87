package layout

// Stage is one step of a category's layout. Stages always run in declaration
// order; every category passes through all of them, even when it is empty.
type Stage int

const (
	StageRootPlacement Stage = iota
	StageLevelBFSPlacement
	StageOrphanAssignment
	StageBarycenterReorder
	StageSitterNudge
	StageShapeConformity
	StageDensityStretch
	StageDone
)

var stageNames = [...]string{
	StageRootPlacement:     "root_placement",
	StageLevelBFSPlacement: "level_bfs_placement",
	StageOrphanAssignment:  "orphan_assignment",
	StageBarycenterReorder: "barycenter_reorder",
	StageSitterNudge:       "sitter_nudge",
	StageShapeConformity:   "shape_conformity",
	StageDensityStretch:    "density_stretch",
	StageDone:              "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Next returns the stage after s. Done is terminal.
func (s Stage) Next() Stage {
	if s >= StageDone {
		return StageDone
	}
	return s + 1
}

// Stages lists the working stages in execution order, without Done.
func Stages() []Stage {
	out := make([]Stage, 0, int(StageDone))
	for s := StageRootPlacement; s < StageDone; s = s.Next() {
		out = append(out, s)
	}
	return out
}
