package shift

import (
	"fmt"
	"slices"
)

// PublishScope is the visibility the caller asked for when saving a shift.
type PublishScope string

const (
	PublishScopeDefault PublishScope = ""
	PublishScopeDraft   PublishScope = "draft"
	PublishScopeDay     PublishScope = "day"
)

func ParsePublishScope(s string) (PublishScope, error) {
	switch scope := PublishScope(s); scope {
	case PublishScopeDefault, PublishScopeDraft, PublishScopeDay:
		return scope, nil
	default:
		return "", fmt.Errorf("unknown publish scope %q", s)
	}
}

// DefaultAutoPublish lists the service types that are visible to staff as soon as they are saved.
var DefaultAutoPublish = []string{ServiceTypeFix, ServiceTypeInspection}

// ResolvePublished computes IsPublished for a save. prior is nil on create.
func ResolvePublished(scope PublishScope, serviceType string, prior *bool, autoPublish []string) bool {
	switch scope {
	case PublishScopeDraft:
		return false
	case PublishScopeDay:
		return true
	}
	if slices.Contains(autoPublish, serviceType) {
		return true
	}
	if prior != nil {
		return *prior
	}
	return false
}
