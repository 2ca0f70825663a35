package domain

// Smart radius expansion widens the search when a location yields too few
// residential results. The decision logic is a small state machine with pure
// guards, kept separate from the fetch mechanics so it can be tested alone.

// ResidentialThreshold is the minimum count of house/flat properties
// below which the radius is expanded.
const ResidentialThreshold = 3

// RadiusCeiling is the maximum search radius in miles. Expansion
// terminates here regardless of yield.
const RadiusCeiling = 40.0

// allowedRadii is the ladder of radii the residential portals accept.
var allowedRadii = []float64{0.25, 0.5, 1, 3, 5, 10, 15, 20, 30, 40}

// ExpansionState is the state of the radius expansion machine.
type ExpansionState int

// Expansion states.
const (
	// ExpansionInitial is the state before the first pass completes.
	ExpansionInitial ExpansionState = iota

	// ExpansionExpand means another pass should run at a wider radius.
	ExpansionExpand

	// ExpansionSatisfied means the residential threshold was met.
	ExpansionSatisfied

	// ExpansionCeiling means the radius ceiling was reached.
	ExpansionCeiling
)

// Done reports whether the machine is in a terminal state.
func (s ExpansionState) Done() bool {
	return s == ExpansionSatisfied || s == ExpansionCeiling
}

// RadiusPlan walks the allowed-radius ladder. It is advanced once per
// round by the orchestrator; rounds are sequential because each round's
// decision depends on the previous round's residential count.
type RadiusPlan struct {
	idx   int
	state ExpansionState
	round int
}

// NewRadiusPlan starts a plan at the smallest allowed radius that is not
// below the requested radius. A request beyond the ladder snaps to the
// ceiling.
func NewRadiusPlan(requested float64) *RadiusPlan {
	p := &RadiusPlan{idx: len(allowedRadii) - 1}
	for i, r := range allowedRadii {
		if r >= requested {
			p.idx = i
			break
		}
	}
	return p
}

// Current returns the radius in miles for the current round.
func (p *RadiusPlan) Current() float64 {
	return allowedRadii[p.idx]
}

// Round returns the zero-based expansion round.
func (p *RadiusPlan) Round() int {
	return p.round
}

// State returns the machine state after the last Observe call.
func (p *RadiusPlan) State() ExpansionState {
	return p.state
}

// Observe feeds the residential property count of the completed round
// into the machine and returns the next state. On ExpansionExpand the
// plan has already advanced to the next radius.
func (p *RadiusPlan) Observe(residential int) ExpansionState {
	switch {
	case residential >= ResidentialThreshold:
		p.state = ExpansionSatisfied
	case p.Current() >= RadiusCeiling || p.idx == len(allowedRadii)-1:
		p.state = ExpansionCeiling
	default:
		p.idx++
		p.round++
		p.state = ExpansionExpand
	}
	return p.state
}
