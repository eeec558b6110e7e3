package release

// State is a coordinator lifecycle state. States only move forward.
type State int

const (
	StateInit State = iota
	StateVersionResolved
	StateMetadataRendered
	StatePublishing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateVersionResolved:
		return "VersionResolved"
	case StateMetadataRendered:
		return "MetadataRendered"
	case StatePublishing:
		return "Publishing"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
