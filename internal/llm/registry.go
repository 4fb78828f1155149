package llm

import (
	"github.com/calebhart/stepline/internal/capability"
	"github.com/calebhart/stepline/internal/retry"
	"github.com/calebhart/stepline/pkg/models"
)

// NewRegistry builds the standard capability registry backed by the given
// client: every built-in task type resolves to an Anthropic provider.
func NewRegistry(client *Client, policy retry.Policy, maxConcurrent int) capability.Registry {
	r := capability.NewRegistry()
	r.Register(models.TaskTypeText, TextProvider(client, policy))
	r.Register(models.TaskTypeSummarize, SummarizeProvider(client, policy))
	r.Register(models.TaskTypeTranslate, TranslateProvider(client, policy))
	r.Register(models.TaskTypeWebSearch, ResearchProvider(client, policy, maxConcurrent))
	return r
}

// NewOfflineRegistry resolves every built-in task type to the echo provider
// so plans can be exercised without network access.
func NewOfflineRegistry() capability.Registry {
	r := capability.NewRegistry()
	echo := EchoProvider()
	r.Register(models.TaskTypeText, echo)
	r.Register(models.TaskTypeSummarize, echo)
	r.Register(models.TaskTypeTranslate, echo)
	r.Register(models.TaskTypeWebSearch, echo)
	return r
}
