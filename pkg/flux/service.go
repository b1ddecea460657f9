package flux

import "context"

// Service bundles the read and write paths an interaction layer consumes:
// health aggregation, fresh single-release reads and the reconcile driver,
// all on one cluster capability.
type Service struct {
	*Checker
	*Reconciler
	cluster Cluster
}

// NewService builds the full flux surface on a cluster capability.
func NewService(cluster Cluster) *Service {
	return &Service{
		Checker:    NewChecker(cluster),
		Reconciler: NewReconciler(cluster),
		cluster:    cluster,
	}
}

// GetHelmRelease returns a fresh snapshot of one release, for re-checking
// its state right before a remediation.
func (s *Service) GetHelmRelease(ctx context.Context, namespace, name string) (Release, error) {
	return s.cluster.GetHelmRelease(ctx, namespace, name)
}
