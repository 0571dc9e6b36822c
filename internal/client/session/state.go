package session

// State is the lifecycle position of a Store.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
