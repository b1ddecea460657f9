package operr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestWrapClassifies(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ClusterQuery, "list helmreleases", cause)

	assert.Equal(t, ClusterQuery, KindOf(err))
	assert.Contains(t, err.Error(), "list helmreleases")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestWrapPromotesAPIConflict(t *testing.T) {
	conflict := apierrors.NewConflict(
		schema.GroupResource{Group: "helm.toolkit.fluxcd.io", Resource: "helmreleases"},
		"podinfo", errors.New("object was modified"))

	err := Wrap(ClusterWrite, "suspend podinfo", conflict)
	assert.Equal(t, Conflict, KindOf(err))
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := New(AlreadyReconciling, "release is already reconciling")
	wrapped := fmt.Errorf("handling callback: %w", err)

	assert.Equal(t, AlreadyReconciling, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, AlreadyReconciling))
	assert.False(t, IsKind(wrapped, Conflict))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
