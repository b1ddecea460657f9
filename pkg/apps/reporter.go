// Package apps reports the status of labeled application pods: phase,
// image tag, version and age, cluster-wide.
package apps

import (
	"context"
	"strconv"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/sergei-li-tech/tgops/internal/operr"
)

// Defaults matching the deployment convention: app pods carry the
// tgops=true label and their application container is named main-<app>.
const (
	DefaultLabelSelector   = "tgops=true"
	DefaultContainerPrefix = "main-"
)

// PodApp is the display-ready status of one application pod.
type PodApp struct {
	Namespace string
	Name      string
	Phase     string
	ImageTag  string
	Version   string
	Age       string
}

// Reporter lists labeled application pods.
type Reporter struct {
	client          kubernetes.Interface
	labelSelector   string
	containerPrefix string
	now             func() time.Time
}

// NewReporter builds a Reporter. Empty selector or prefix fall back to the
// package defaults.
func NewReporter(client kubernetes.Interface, labelSelector, containerPrefix string) *Reporter {
	if labelSelector == "" {
		labelSelector = DefaultLabelSelector
	}
	if containerPrefix == "" {
		containerPrefix = DefaultContainerPrefix
	}
	return &Reporter{
		client:          client,
		labelSelector:   labelSelector,
		containerPrefix: containerPrefix,
		now:             time.Now,
	}
}

// ListApps returns the labeled pods across all namespaces, in the API
// server's listing order. Pods without a main container are skipped. A
// listing failure propagates as a classified error with no partial list.
func (r *Reporter) ListApps(ctx context.Context) ([]PodApp, error) {
	pods, err := r.client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		LabelSelector: r.labelSelector,
	})
	if err != nil {
		return nil, operr.Wrap(operr.ClusterQuery, "list pods "+r.labelSelector, err)
	}

	var result []PodApp
	for _, pod := range pods.Items {
		main := r.mainContainer(pod)
		if main == nil {
			continue
		}
		tag := ExtractTag(main.Image)
		result = append(result, PodApp{
			Namespace: pod.Namespace,
			Name:      pod.Name,
			Phase:     string(pod.Status.Phase),
			ImageTag:  tag,
			Version:   ExtractVersion(tag),
			Age:       FormatAge(pod.CreationTimestamp.Time, r.now()),
		})
	}
	return result, nil
}

// mainContainer returns the first container whose name carries the
// configured prefix, or nil.
func (r *Reporter) mainContainer(pod corev1.Pod) *corev1.Container {
	for i := range pod.Spec.Containers {
		if strings.HasPrefix(pod.Spec.Containers[i].Name, r.containerPrefix) {
			return &pod.Spec.Containers[i]
		}
	}
	return nil
}

// ExtractTag returns the tag of an image reference: the substring after
// the last colon, or "latest" when the reference has no tag.
func ExtractTag(image string) string {
	if idx := strings.LastIndex(image, ":"); idx != -1 {
		return image[idx+1:]
	}
	return "latest"
}

// ExtractVersion truncates a tag at the first hyphen, so "1.9.0-rc1"
// reports as "1.9.0". Plain string transform, not semver parsing.
func ExtractVersion(tag string) string {
	if idx := strings.Index(tag, "-"); idx != -1 {
		return tag[:idx]
	}
	return tag
}

// FormatAge renders the elapsed time since created at the coarsest
// applicable unit: days, else hours, else minutes. A zero timestamp
// renders as "Unknown".
func FormatAge(created, now time.Time) string {
	if created.IsZero() {
		return "Unknown"
	}
	age := now.Sub(created)
	if days := int(age.Hours() / 24); days >= 1 {
		return strconv.Itoa(days) + "d"
	}
	if hours := int(age.Hours()); hours >= 1 {
		return strconv.Itoa(hours) + "h"
	}
	minutes := int(age.Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return strconv.Itoa(minutes) + "m"
}
