package flux

import "context"

// UnhealthyRelease is the display-ready view of a release whose Ready
// condition is explicitly not True.
type UnhealthyRelease struct {
	Namespace string
	Name      string
	// Error is the Ready condition's message.
	Error string
	// Stalled means reconciliation cannot progress without intervention.
	Stalled bool
	// Reconciling means a reconciliation is already in flight; the caller
	// should not offer another toggle.
	Reconciling bool
	// LastTransition is when the Ready condition last changed.
	LastTransition string
}

// Checker aggregates release health across the cluster.
type Checker struct {
	cluster Cluster
}

// NewChecker builds a Checker on the given cluster capability.
func NewChecker(cluster Cluster) *Checker {
	return &Checker{cluster: cluster}
}

// ListUnhealthy returns every release classified not-ready, in the
// cluster's listing order. A listing failure propagates as a classified
// error with no partial result.
func (c *Checker) ListUnhealthy(ctx context.Context) ([]UnhealthyRelease, error) {
	releases, err := c.cluster.ListHelmReleases(ctx)
	if err != nil {
		return nil, err
	}

	var unhealthy []UnhealthyRelease
	for _, rel := range releases {
		verdict := Classify(rel.Conditions)
		if verdict.Ready {
			continue
		}
		unhealthy = append(unhealthy, UnhealthyRelease{
			Namespace:      rel.Namespace,
			Name:           rel.Name,
			Error:          verdict.Message,
			Stalled:        verdict.Stalled,
			Reconciling:    verdict.Reconciling,
			LastTransition: verdict.LastTransition,
		})
	}
	return unhealthy, nil
}
