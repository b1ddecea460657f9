package flux

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/sergei-li-tech/tgops/internal/operr"
)

// helmReleaseGVR addresses Flux HelmRelease objects.
var helmReleaseGVR = schema.GroupVersionResource{
	Group:    "helm.toolkit.fluxcd.io",
	Version:  "v2",
	Resource: "helmreleases",
}

// Release is an immutable snapshot of one HelmRelease, built fresh per
// call and discarded after rendering.
type Release struct {
	Namespace  string
	Name       string
	Conditions []Condition
}

// Cluster is the capability the flux core needs from the API server.
// Implementations own all raw-object handling; the core never touches an
// untyped resource body.
type Cluster interface {
	// ListHelmReleases returns all HelmReleases cluster-wide, in the API
	// server's listing order.
	ListHelmReleases(ctx context.Context) ([]Release, error)
	// GetHelmRelease returns a fresh snapshot of a single release.
	GetHelmRelease(ctx context.Context, namespace, name string) (Release, error)
	// SetSuspend sets spec.suspend on a release via a read-modify-write
	// conditional update. A racing writer surfaces as a conflict
	// classified error.
	SetSuspend(ctx context.Context, namespace, name string, suspend bool) error
}

// DynamicCluster implements Cluster on a dynamic client.
type DynamicCluster struct {
	client dynamic.Interface
}

// NewDynamicCluster wraps a dynamic client.
func NewDynamicCluster(client dynamic.Interface) *DynamicCluster {
	return &DynamicCluster{client: client}
}

func (c *DynamicCluster) ListHelmReleases(ctx context.Context) ([]Release, error) {
	list, err := c.client.Resource(helmReleaseGVR).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, operr.Wrap(operr.ClusterQuery, "list helmreleases", err)
	}

	releases := make([]Release, 0, len(list.Items))
	for _, item := range list.Items {
		releases = append(releases, snapshotRelease(&item))
	}
	return releases, nil
}

func (c *DynamicCluster) GetHelmRelease(ctx context.Context, namespace, name string) (Release, error) {
	obj, err := c.client.Resource(helmReleaseGVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return Release{}, operr.Wrap(operr.ClusterQuery, "get helmrelease "+namespace+"/"+name, err)
	}
	return snapshotRelease(obj), nil
}

func (c *DynamicCluster) SetSuspend(ctx context.Context, namespace, name string, suspend bool) error {
	res := c.client.Resource(helmReleaseGVR).Namespace(namespace)

	obj, err := res.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return operr.Wrap(operr.ClusterQuery, "get helmrelease "+namespace+"/"+name, err)
	}

	if err := unstructured.SetNestedField(obj.Object, suspend, "spec", "suspend"); err != nil {
		return operr.Wrap(operr.ClusterWrite, "set spec.suspend on "+namespace+"/"+name, err)
	}

	// Update carries the resourceVersion from the read above; the API
	// server rejects the write if anyone modified the object in between.
	if _, err := res.Update(ctx, obj, metav1.UpdateOptions{}); err != nil {
		return operr.Wrap(operr.ClusterWrite, "update helmrelease "+namespace+"/"+name, err)
	}
	return nil
}

// snapshotRelease extracts the fields the core consumes from an
// unstructured HelmRelease. Malformed condition entries are skipped.
func snapshotRelease(obj *unstructured.Unstructured) Release {
	rel := Release{
		Namespace: obj.GetNamespace(),
		Name:      obj.GetName(),
	}

	conditions, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		return rel
	}

	for _, cond := range conditions {
		condMap, ok := cond.(map[string]interface{})
		if !ok {
			continue
		}
		c := Condition{}
		c.Type, _ = condMap["type"].(string)
		c.Status, _ = condMap["status"].(string)
		c.Reason, _ = condMap["reason"].(string)
		c.Message, _ = condMap["message"].(string)
		c.LastTransitionTime, _ = condMap["lastTransitionTime"].(string)
		rel.Conditions = append(rel.Conditions, c)
	}

	return rel
}
