package ethermq

// Direction is the direction a frame is travelling through the bridge.
type Direction int

const (
	// LocalToBackhaul is the direction of frames captured from the local interface.
	LocalToBackhaul Direction = iota
	// BackhaulToLocal is the direction of frames received from the broker.
	BackhaulToLocal
)

func (d Direction) String() string {
	switch d {
	case LocalToBackhaul:
		return "local-to-backhaul"
	case BackhaulToLocal:
		return "backhaul-to-local"
	default:
		return "unknown"
	}
}

// ShouldForward reports whether frame f should be forwarded in direction d. Frames addressed to
// this node never leave the local segment, and frames sourced from this node that the broker
// echoes back are never injected again.
func ShouldForward(f Frame, own NodeIdentity, d Direction) bool {
	switch d {
	case LocalToBackhaul:
		return !own.Equal(f.Destination())
	case BackhaulToLocal:
		return !own.Equal(f.Source())
	default:
		return false
	}
}
