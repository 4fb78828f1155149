package capability

import (
	"errors"
	"fmt"

	"github.com/calebhart/stepline/pkg/models"
)

// ErrNotRegistered is matched by errors.Is when a task type has no provider.
// A missing entry is a configuration error: it is raised before the task
// leaves the waiting state and is never retried.
var ErrNotRegistered = errors.New("capability: task type not registered")

// Registry maps task types to their capability providers. The executor owns
// no registry state; a registry is supplied per execution call.
type Registry map[models.TaskType]Provider

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return make(Registry)
}

// Register binds a provider to a task type, replacing any existing binding.
func (r Registry) Register(taskType models.TaskType, p Provider) {
	r[taskType] = p
}

// Resolve returns the provider for the given task type. Because TaskType is
// string-backed, the named constants and their raw string values are the
// same key.
func (r Registry) Resolve(taskType models.TaskType) (Provider, error) {
	if p, ok := r[taskType]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotRegistered, string(taskType))
}

// Types returns the registered task types.
func (r Registry) Types() []models.TaskType {
	types := make([]models.TaskType, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	return types
}
