package flux

import (
	"context"

	"github.com/sergei-li-tech/tgops/internal/operr"
)

// Step identifies a phase of the reconcile protocol, reported through the
// progress callback before the phase runs so an interactive caller can
// show "suspending…" / "unsuspending…" in place.
type Step string

const (
	StepSuspending   Step = "suspending"
	StepUnsuspending Step = "unsuspending"
)

// ProgressFunc observes reconcile phases. May be nil.
type ProgressFunc func(step Step)

// Outcome records which phases of the toggle completed. Suspended without
// Unsuspended is the degraded state that needs manual cleanup.
type Outcome struct {
	Suspended   bool
	Unsuspended bool
}

// Reconciler forces a reconciliation pass on a release. Flux has no
// "reconcile now" verb for HelmReleases, so the driver suspends the
// release and immediately resumes it, which makes the controller
// re-evaluate without waiting for the reconcile interval.
type Reconciler struct {
	cluster Cluster
}

// NewReconciler builds a Reconciler on the given cluster capability.
func NewReconciler(cluster Cluster) *Reconciler {
	return &Reconciler{cluster: cluster}
}

// Reconcile runs the suspend → unsuspend toggle for one release.
//
// alreadyReconciling is the caller's classification verdict for the
// release; when set the driver refuses with already_reconciling before
// touching the cluster, so a toggle never races an in-flight
// reconciliation.
//
// Failures are not retried. A failed suspend leaves the release untouched
// (suspend_failed); a failed unsuspend leaves it suspended
// (unsuspend_failed), which the caller must surface as requiring manual
// intervention.
func (r *Reconciler) Reconcile(ctx context.Context, namespace, name string, alreadyReconciling bool, progress ProgressFunc) (Outcome, error) {
	if alreadyReconciling {
		return Outcome{}, operr.New(operr.AlreadyReconciling,
			"release "+namespace+"/"+name+" is already reconciling")
	}

	report := func(step Step) {
		if progress != nil {
			progress(step)
		}
	}

	report(StepSuspending)
	if err := r.cluster.SetSuspend(ctx, namespace, name, true); err != nil {
		return Outcome{}, reclassify(err, operr.SuspendFailed)
	}

	report(StepUnsuspending)
	if err := r.cluster.SetSuspend(ctx, namespace, name, false); err != nil {
		return Outcome{Suspended: true}, reclassify(err, operr.UnsuspendFailed)
	}

	return Outcome{Suspended: true, Unsuspended: true}, nil
}

// reclassify stamps a phase-specific kind onto a cluster write failure,
// keeping conflicts visible as conflicts.
func reclassify(err error, kind operr.Kind) error {
	if operr.IsKind(err, operr.Conflict) {
		return err
	}
	return &operr.Error{Kind: kind, Err: err}
}
