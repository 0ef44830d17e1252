package feed

// State is the loading state of a screen backed by a remote or store read.
//
//	Idle -> Loading -> {Loaded, Error}
//	Loaded -> Loading (load more, refresh)
//	Error  -> Loading (retry)
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// CanLoad reports whether a new load may start from s.
func (s State) CanLoad() bool { return s != Loading }
