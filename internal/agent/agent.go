package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"docent/internal/hook"
	"docent/internal/llm"
	"docent/internal/logger"
	"docent/internal/tool"
)

// MaxIterationsMessage is returned when the iteration bound is
// exhausted without a final answer.
const MaxIterationsMessage = "Maximum iterations reached. Task did not complete within maximum iterations. Please try breaking it down into smaller steps."

// completionPhrases signal that a response is a final answer even when
// a tool call is present.
var completionPhrases = []string{
	"task is complete",
	"final answer",
	"summary:",
	"conclusion:",
	"in conclusion",
	"to summarize",
}

// Config controls agent behavior
type Config struct {
	Temperature   float32
	MaxTokens     int
	MaxIterations int
}

// Agent runs the think-act-observe loop against an LLM and a tool
// registry. The context trail accumulates across Run calls; create a
// fresh Agent for an independent task.
type Agent struct {
	client       llm.Client
	registry     *tool.Registry
	systemPrompt string
	config       Config
	hooks        *hook.Manager
	contextLog   []string
}

// New creates an agent with the default system prompt built from the
// registry's tool catalog.
func New(client llm.Client, registry *tool.Registry, cfg Config) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}

	return &Agent{
		client:       client,
		registry:     registry,
		systemPrompt: systemPrompt(registry.Catalog()),
		config:       cfg,
	}
}

// SetSystemPrompt replaces the default system prompt
func (a *Agent) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// SetHooks attaches a hook manager consulted around tool execution
func (a *Agent) SetHooks(hooks *hook.Manager) {
	a.hooks = hooks
}

// Context returns a copy of the accumulated context trail
func (a *Agent) Context() []string {
	out := make([]string, len(a.contextLog))
	copy(out, a.contextLog)
	return out
}

// Run executes the agentic loop until the model produces a final
// answer or the iteration bound is exhausted.
func (a *Agent) Run(ctx context.Context, task string, log *logger.Logger) (string, error) {
	log.SessionStart(task)
	start := time.Now()
	toolCalls := 0

	for iteration := 0; iteration < a.config.MaxIterations; iteration++ {
		log.Info("Iteration %d/%d: thinking...", iteration+1, a.config.MaxIterations)

		thought, err := a.think(ctx, task, iteration)
		if err != nil {
			return "", fmt.Errorf("iteration %d: %w", iteration+1, err)
		}
		log.AgentResponse(thought)

		if isTaskComplete(thought) {
			log.Info("Task completed after %d iterations", iteration+1)
			log.SessionEnd(time.Since(start), toolCalls)
			return thought, nil
		}

		call := ParseToolCall(thought)
		if call == nil {
			log.Debug("No valid tool call found, treating response as final answer")
			log.SessionEnd(time.Since(start), toolCalls)
			return thought, nil
		}

		toolCalls++
		a.dispatch(ctx, call, log)
	}

	log.Warn("Maximum iterations (%d) reached", a.config.MaxIterations)
	log.SessionEnd(time.Since(start), toolCalls)
	return MaxIterationsMessage, nil
}

// think asks the model for its next action given the context trail
func (a *Agent) think(ctx context.Context, task string, iteration int) (string, error) {
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: a.systemPrompt},
			{Role: llm.RoleUser, Content: userPrompt(task, iteration, a.config.MaxIterations, a.contextLog)},
		},
		Temperature: a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	}

	resp, err := a.client.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// dispatch executes a parsed tool call and appends the observation to
// the context trail. Tool failures are recorded, never returned.
func (a *Agent) dispatch(ctx context.Context, call *ToolCall, log *logger.Logger) {
	log.ToolCall(call.Name, formatParams(call.Params))

	t, err := a.registry.Get(call.Name)
	if err != nil {
		log.Warn("Unknown tool: %s", call.Name)
		a.contextLog = append(a.contextLog, fmt.Sprintf("ERROR: Unknown tool: %s", call.Name))
		return
	}

	if a.hooks != nil {
		data := hook.NewData(hook.BeforeToolExecution, call.Name)
		data.Set("command", call.Params["command"])
		data.Set("params", formatParams(call.Params))

		feedback, err := a.hooks.Trigger(ctx, data)
		if err != nil {
			a.contextLog = append(a.contextLog, fmt.Sprintf("Used %s: FAILED - hook error: %v", call.Name, err))
			return
		}
		if !feedback.Allow {
			log.Warn("Tool %s denied: %s", call.Name, feedback.Message)
			a.contextLog = append(a.contextLog, fmt.Sprintf("Used %s: FAILED - %s", call.Name, feedback.Message))
			return
		}
	}

	start := time.Now()
	result, err := t.Execute(ctx, call.Params)
	duration := time.Since(start)

	if err != nil {
		log.ToolResult(call.Name, false, err.Error(), duration)
		a.contextLog = append(a.contextLog, fmt.Sprintf("Used %s: FAILED - %s", call.Name, err.Error()))
	} else if result.Success {
		log.ToolResult(call.Name, true, result.Output, duration)
		a.contextLog = append(a.contextLog, fmt.Sprintf("Used %s: SUCCESS - %s", call.Name, result.Output))
	} else {
		log.ToolResult(call.Name, false, result.Error, duration)
		a.contextLog = append(a.contextLog, fmt.Sprintf("Used %s: FAILED - %s", call.Name, result.Error))
	}

	if a.hooks != nil {
		data := hook.NewData(hook.AfterToolExecution, call.Name)
		if result != nil {
			data.Set("success", result.Success)
		}
		a.hooks.Trigger(ctx, data)
	}
}

// isTaskComplete checks whether a response is a final answer. A
// completion phrase wins even when a tool call block is present.
func isTaskComplete(response string) bool {
	hasToolCall := strings.Contains(response, "<tool_call>")

	lower := strings.ToLower(response)
	for _, phrase := range completionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return !hasToolCall
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		if len(v) > 80 {
			v = v[:80] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(parts, ", ")
}
