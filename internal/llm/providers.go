package llm

import (
	"context"
	"strings"

	"github.com/calebhart/stepline/internal/capability"
	"github.com/calebhart/stepline/internal/fanout"
	"github.com/calebhart/stepline/internal/prompt"
	"github.com/calebhart/stepline/internal/retry"
)

const (
	textSystemPrompt      = "You are a capable assistant executing one step of a multi-step workflow. Answer the instruction directly and concisely."
	summarizeSystemPrompt = "You condense the provided context into a short, faithful summary. Do not add information that is not in the context."
	translateSystemPrompt = "You translate the provided context as instructed, preserving meaning and tone."
	planSystemPrompt      = "You turn a research request into discrete search queries. Reply with one query per line and nothing else."
	searchSystemPrompt    = "You answer a single focused research query from your knowledge. Reply with a short factual paragraph."
)

// TextProvider executes a plain single-completion task. API calls are
// wrapped with the retry policy.
func TextProvider(client *Client, policy retry.Policy) capability.Provider {
	return systemProvider(client, policy, textSystemPrompt)
}

// SummarizeProvider condenses the accumulated context per the task prompt.
func SummarizeProvider(client *Client, policy retry.Policy) capability.Provider {
	return systemProvider(client, policy, summarizeSystemPrompt)
}

// TranslateProvider rewrites the accumulated context per the task prompt.
func TranslateProvider(client *Client, policy retry.Policy) capability.Provider {
	return systemProvider(client, policy, translateSystemPrompt)
}

func systemProvider(client *Client, policy retry.Policy, system string) capability.Provider {
	return capability.Func(func(ctx context.Context, taskPrompt string, contextStrs []string) (any, error) {
		full := prompt.WithContext(taskPrompt, contextStrs)
		return retry.Do(ctx, policy, func(ctx context.Context) (any, error) {
			return client.complete(ctx, system, full)
		})
	})
}

// ResearchProvider plans a handful of search queries from the task prompt,
// then answers them concurrently through the bounded fan-out runner. The
// per-query results come back in query order.
func ResearchProvider(client *Client, policy retry.Policy, maxConcurrent int) capability.Provider {
	return capability.Func(func(ctx context.Context, taskPrompt string, contextStrs []string) (any, error) {
		planText, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
			return client.complete(ctx, planSystemPrompt, prompt.WithContext(taskPrompt, contextStrs))
		})
		if err != nil {
			return nil, err
		}

		queries := splitQueries(planText)
		if len(queries) == 0 {
			return nil, nil
		}

		results, err := fanout.Map(ctx, maxConcurrent, queries, func(ctx context.Context, query string) (*string, error) {
			answer, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
				return client.complete(ctx, searchSystemPrompt, query)
			})
			if err != nil {
				return nil, err
			}
			answer = strings.TrimSpace(answer)
			if answer == "" {
				// Empty answers are dropped, not placeholder-preserved.
				return nil, nil
			}
			return &answer, nil
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	})
}

// splitQueries parses the planner's one-query-per-line reply.
func splitQueries(planText string) []string {
	var queries []string
	for _, line := range strings.Split(planText, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			queries = append(queries, line)
		}
	}
	return queries
}

// EchoProvider returns its prompt unchanged. It backs offline runs and is
// handy in tests.
func EchoProvider() capability.Provider {
	return capability.Func(func(ctx context.Context, taskPrompt string, contextStrs []string) (any, error) {
		return taskPrompt, nil
	})
}
