package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sergei-li-tech/tgops/internal/operr"
	"github.com/sergei-li-tech/tgops/pkg/apps"
	"github.com/sergei-li-tech/tgops/pkg/flux"
)

func TestRenderReleaseStates(t *testing.T) {
	rel := flux.UnhealthyRelease{
		Namespace:      "prod",
		Name:           "billing",
		Error:          "install retries exhausted",
		LastTransition: "2026-08-20T10:00:00Z",
	}

	out := renderRelease(rel)
	assert.Contains(t, out, "*prod/billing*")
	assert.Contains(t, out, "Status: NOT READY")
	assert.Contains(t, out, "Last Transition: 2026-08-20T10:00:00Z")
	assert.Contains(t, out, "`install retries exhausted`")

	rel.Stalled = true
	assert.Contains(t, renderRelease(rel), "Status: STALLED")

	// Reconciling wins over stalled in the display.
	rel.Reconciling = true
	assert.Contains(t, renderRelease(rel), "Status: RECONCILING")
}

func TestRenderApps(t *testing.T) {
	out := renderApps([]apps.PodApp{
		{Namespace: "prod", Name: "billing-7d9f", Phase: "Running", ImageTag: "1.9.0-rc1", Version: "1.9.0", Age: "2d"},
		{Namespace: "apps", Name: "web-5c4b", Phase: "Pending", ImageTag: "latest", Version: "latest", Age: "30m"},
	})

	assert.Contains(t, out, "🟢 prod/billing-7d9f")
	assert.Contains(t, out, "Image tag: 1.9.0-rc1")
	assert.Contains(t, out, "Version: 1.9.0")
	assert.Contains(t, out, "🟡 apps/web-5c4b")
	assert.Contains(t, out, "Age: 30m")
}

func TestRenderAppsEmpty(t *testing.T) {
	assert.Equal(t, "No pods found with the app label", renderApps(nil))
}

func TestRenderLogLinks(t *testing.T) {
	links := map[string]string{
		"billing": "https://logs.example/billing",
		"web":     "https://logs.example/web",
	}

	out := renderLogLinks(links, "")
	assert.Contains(t, out, "[billing](https://logs.example/billing)")
	assert.Contains(t, out, "[web](https://logs.example/web)")

	out = renderLogLinks(links, "BILL")
	assert.Contains(t, out, "billing")
	assert.NotContains(t, out, "logs.example/web")

	out = renderLogLinks(links, "nothing")
	assert.Contains(t, out, "No log links found for application matching 'nothing'")

	out = renderLogLinks(nil, "")
	assert.Contains(t, out, "No application log links are configured")
}

func TestRenderReconcileOutcome(t *testing.T) {
	assert.Contains(t, renderReconcileOutcome("prod", "billing", nil),
		"✅ Started reconciliation for prod/billing")

	assert.Contains(t,
		renderReconcileOutcome("prod", "billing", operr.New(operr.SuspendFailed, "denied")),
		"Failed to suspend release prod/billing")

	out := renderReconcileOutcome("prod", "billing", operr.New(operr.UnsuspendFailed, "timeout"))
	assert.Contains(t, out, "Failed to unsuspend release prod/billing")
	assert.Contains(t, out, "manual intervention")

	assert.Contains(t,
		renderReconcileOutcome("prod", "billing", operr.New(operr.AlreadyReconciling, "in flight")),
		"already reconciling")

	assert.Contains(t,
		renderReconcileOutcome("prod", "billing", operr.New(operr.Conflict, "modified")),
		"modified concurrently")

	assert.Contains(t,
		renderReconcileOutcome("prod", "billing", errors.New("boom")),
		"boom")
}
