// Package flux inspects and remediates Flux HelmReleases: it classifies
// release health from status conditions, aggregates the unhealthy set, and
// drives the suspend/resume toggle that forces a fresh reconciliation.
package flux

// Condition is one status fact reported by the HelmRelease controller,
// copied verbatim from the cluster object.
type Condition struct {
	Type               string
	Status             string
	Reason             string
	Message            string
	LastTransitionTime string
}

// Condition types and values used by the Flux APIs.
const (
	conditionReady       = "Ready"
	conditionStalled     = "Stalled"
	conditionReconciling = "Reconciling"

	statusTrue = "True"

	reasonProgressing = "Progressing"
)

// defaultMessage is reported when the Ready condition carries no message.
const defaultMessage = "No error message provided"

// defaultTransition is reported when the Ready condition carries no
// transition timestamp.
const defaultTransition = "Unknown"

// Verdict is the classified health of a single release.
type Verdict struct {
	// Ready is true for Ready=True and for releases with no Ready
	// condition at all: only an explicit Ready=False/Unknown is
	// actionable, so an absent condition keeps the release out of the
	// unhealthy set.
	Ready bool
	// Stalled is true when a Stalled=True condition is present.
	Stalled bool
	// Reconciling is true when a Reconciling=True condition with reason
	// Progressing is present. Evaluated independently of Ready: a release
	// can be not-ready and reconciling at the same time, which means a
	// remediation is already in flight.
	Reconciling bool
	// Message is the Ready condition's message.
	Message string
	// LastTransition is the Ready condition's transition timestamp.
	LastTransition string
}

// Classify derives a health verdict from a release's status conditions.
// Pure function: conditions with a missing type or status are treated as
// absent rather than failing the classification.
func Classify(conditions []Condition) Verdict {
	v := Verdict{
		Ready:          true,
		Message:        defaultMessage,
		LastTransition: defaultTransition,
	}

	for _, c := range conditions {
		if c.Type == "" || c.Status == "" {
			continue
		}
		switch c.Type {
		case conditionReady:
			v.Ready = c.Status == statusTrue
			if c.Message != "" {
				v.Message = c.Message
			}
			if c.LastTransitionTime != "" {
				v.LastTransition = c.LastTransitionTime
			}
		case conditionStalled:
			if c.Status == statusTrue {
				v.Stalled = true
			}
		case conditionReconciling:
			if c.Status == statusTrue && c.Reason == reasonProgressing {
				v.Reconciling = true
			}
		}
	}

	return v
}
