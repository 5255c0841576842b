package prompt

// Mode is the closed set of synthesis modes, selected once per request by
// which document types retrieval returned. No other component re-derives
// availability; everything downstream switches on this value.
type Mode int

const (
	ModeNoDocs Mode = iota
	ModeInterviewsOnly
	ModeContextOnly
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeInterviewsOnly:
		return "interviews_only"
	case ModeContextOnly:
		return "context_only"
	case ModeBoth:
		return "both"
	default:
		return "no_docs"
	}
}

// ClassifyMode maps document-type availability to a mode. ModeNoDocs is a
// terminal failure for generation; callers must not build a prompt for it.
func ClassifyMode(hasContext, hasInterviews bool) Mode {
	switch {
	case hasContext && hasInterviews:
		return ModeBoth
	case hasInterviews:
		return ModeInterviewsOnly
	case hasContext:
		return ModeContextOnly
	default:
		return ModeNoDocs
	}
}
