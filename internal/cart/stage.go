package cart

// Stage is the position of one item in the add-to-cart pipeline:
// Lookup, Reserve, Price, CommitLine, then Done. Any stage may move to
// Failed, which aborts the whole batch.
type Stage int

const (
	StageLookup Stage = iota
	StageReserve
	StagePrice
	StageCommitLine
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageLookup:
		return "LOOKUP"
	case StageReserve:
		return "RESERVE"
	case StagePrice:
		return "PRICE"
	case StageCommitLine:
		return "COMMIT_LINE"
	case StageDone:
		return "DONE"
	case StageFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
