package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNoReadyCondition(t *testing.T) {
	// Only an explicit Ready=False/Unknown is actionable; a release that
	// never reported Ready stays out of the unhealthy set.
	v := Classify([]Condition{
		{Type: "Released", Status: "True", Reason: "InstallSucceeded"},
	})
	assert.True(t, v.Ready)

	v = Classify(nil)
	assert.True(t, v.Ready)
}

func TestClassifyReadyTrue(t *testing.T) {
	v := Classify([]Condition{
		{Type: "Ready", Status: "True", Reason: "ReconciliationSucceeded", Message: "Helm install succeeded"},
	})
	assert.True(t, v.Ready)
	assert.False(t, v.Stalled)
	assert.False(t, v.Reconciling)
}

func TestClassifyNotReadyDefaults(t *testing.T) {
	v := Classify([]Condition{
		{Type: "Ready", Status: "False"},
	})
	assert.False(t, v.Ready)
	assert.Equal(t, "No error message provided", v.Message)
	assert.Equal(t, "Unknown", v.LastTransition)
}

func TestClassifyNotReadyWithDetails(t *testing.T) {
	v := Classify([]Condition{
		{
			Type:               "Ready",
			Status:             "False",
			Reason:             "InstallFailed",
			Message:            "install retries exhausted",
			LastTransitionTime: "2026-08-20T10:00:00Z",
		},
		{Type: "Stalled", Status: "True", Reason: "RetriesExceeded"},
	})
	assert.False(t, v.Ready)
	assert.True(t, v.Stalled)
	assert.False(t, v.Reconciling)
	assert.Equal(t, "install retries exhausted", v.Message)
	assert.Equal(t, "2026-08-20T10:00:00Z", v.LastTransition)
}

func TestClassifyReconcilingIndependentOfStalled(t *testing.T) {
	// Ready=False plus Reconciling=True/Progressing means a remediation is
	// already in flight, regardless of any Stalled condition.
	conds := []Condition{
		{Type: "Ready", Status: "False", Message: "upgrade in progress"},
		{Type: "Reconciling", Status: "True", Reason: "Progressing"},
		{Type: "Stalled", Status: "True"},
	}
	v := Classify(conds)
	assert.False(t, v.Ready)
	assert.True(t, v.Reconciling)
	assert.True(t, v.Stalled)
}

func TestClassifyReconcilingRequiresProgressing(t *testing.T) {
	v := Classify([]Condition{
		{Type: "Ready", Status: "False"},
		{Type: "Reconciling", Status: "True", Reason: "TerminalError"},
	})
	assert.False(t, v.Reconciling)

	v = Classify([]Condition{
		{Type: "Ready", Status: "False"},
		{Type: "Reconciling", Status: "False", Reason: "Progressing"},
	})
	assert.False(t, v.Reconciling)
}

func TestClassifySkipsMalformedConditions(t *testing.T) {
	v := Classify([]Condition{
		{Type: "", Status: "False"},
		{Type: "Ready", Status: ""},
		{Type: "Stalled", Status: "True"},
	})
	// The malformed Ready entry counts as absent.
	assert.True(t, v.Ready)
	assert.True(t, v.Stalled)
}
