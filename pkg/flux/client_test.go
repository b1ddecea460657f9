package flux

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"
	"sigs.k8s.io/yaml"

	"github.com/sergei-li-tech/tgops/internal/operr"
)

// helmRelease parses a YAML manifest into an unstructured HelmRelease.
func helmRelease(t *testing.T, manifest string) *unstructured.Unstructured {
	t.Helper()
	obj := &unstructured.Unstructured{}
	require.NoError(t, yaml.Unmarshal([]byte(manifest), &obj.Object))
	return obj
}

func newFakeCluster(objs ...*unstructured.Unstructured) (*DynamicCluster, *dynamicfake.FakeDynamicClient) {
	scheme := runtime.NewScheme()
	gvrToListKind := map[schema.GroupVersionResource]string{
		helmReleaseGVR: "HelmReleaseList",
	}
	runtimeObjs := make([]runtime.Object, len(objs))
	for i, obj := range objs {
		runtimeObjs[i] = obj
	}
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, gvrToListKind, runtimeObjs...)
	return NewDynamicCluster(client), client
}

const unhealthyManifest = `
apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: billing
  namespace: prod
spec:
  interval: 5m
status:
  conditions:
  - type: Ready
    status: "False"
    reason: InstallFailed
    message: install retries exhausted
    lastTransitionTime: "2026-08-20T10:00:00Z"
  - type: Stalled
    status: "True"
    reason: RetriesExceeded
`

const healthyManifest = `
apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: podinfo
  namespace: apps
status:
  conditions:
  - type: Ready
    status: "True"
    reason: ReconciliationSucceeded
    message: Helm install succeeded
`

func TestListHelmReleasesSnapshots(t *testing.T) {
	cluster, _ := newFakeCluster(
		helmRelease(t, unhealthyManifest),
		helmRelease(t, healthyManifest),
	)

	releases, err := cluster.ListHelmReleases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 2)

	byName := map[string]Release{}
	for _, rel := range releases {
		byName[rel.Name] = rel
	}

	billing := byName["billing"]
	assert.Equal(t, "prod", billing.Namespace)
	require.Len(t, billing.Conditions, 2)
	assert.Equal(t, "Ready", billing.Conditions[0].Type)
	assert.Equal(t, "False", billing.Conditions[0].Status)
	assert.Equal(t, "install retries exhausted", billing.Conditions[0].Message)
	assert.Equal(t, "2026-08-20T10:00:00Z", billing.Conditions[0].LastTransitionTime)
	assert.Equal(t, "Stalled", billing.Conditions[1].Type)
}

func TestListHelmReleasesNoStatus(t *testing.T) {
	cluster, _ := newFakeCluster(helmRelease(t, `
apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: fresh
  namespace: apps
`))

	releases, err := cluster.ListHelmReleases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Empty(t, releases[0].Conditions)
}

func TestGetHelmRelease(t *testing.T) {
	cluster, _ := newFakeCluster(helmRelease(t, healthyManifest))

	rel, err := cluster.GetHelmRelease(context.Background(), "apps", "podinfo")
	require.NoError(t, err)
	assert.Equal(t, "podinfo", rel.Name)
	require.Len(t, rel.Conditions, 1)
	assert.Equal(t, "True", rel.Conditions[0].Status)
}

func TestSetSuspendCreatesSpecField(t *testing.T) {
	cluster, client := newFakeCluster(helmRelease(t, `
apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: billing
  namespace: prod
`))

	require.NoError(t, cluster.SetSuspend(context.Background(), "prod", "billing", true))

	obj, err := client.Resource(helmReleaseGVR).Namespace("prod").Get(context.Background(), "billing", metav1.GetOptions{})
	require.NoError(t, err)
	suspended, found, err := unstructured.NestedBool(obj.Object, "spec", "suspend")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, suspended)

	require.NoError(t, cluster.SetSuspend(context.Background(), "prod", "billing", false))
	obj, err = client.Resource(helmReleaseGVR).Namespace("prod").Get(context.Background(), "billing", metav1.GetOptions{})
	require.NoError(t, err)
	suspended, _, _ = unstructured.NestedBool(obj.Object, "spec", "suspend")
	assert.False(t, suspended)
}

func TestSetSuspendConflictClassification(t *testing.T) {
	cluster, client := newFakeCluster(helmRelease(t, unhealthyManifest))

	client.PrependReactor("update", "helmreleases",
		func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewConflict(
				schema.GroupResource{Group: "helm.toolkit.fluxcd.io", Resource: "helmreleases"},
				"billing", errors.New("the object has been modified"))
		})

	err := cluster.SetSuspend(context.Background(), "prod", "billing", true)
	require.Error(t, err)
	assert.Equal(t, operr.Conflict, operr.KindOf(err))
}

func TestSetSuspendMissingRelease(t *testing.T) {
	cluster, _ := newFakeCluster()

	err := cluster.SetSuspend(context.Background(), "prod", "gone", true)
	require.Error(t, err)
	assert.Equal(t, operr.ClusterQuery, operr.KindOf(err))
}
