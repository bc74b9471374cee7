// Package compiler turns a free-text instruction into a validated rule by
// prompting the text-generation collaborator with a constrained template and
// parsing its reply. Model output is never trusted: a draft only leaves this
// package after schema validation.
package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/condition"
	"github.com/mfcabral/rulegate/internal/metrics"
	"github.com/mfcabral/rulegate/internal/ollama"
	"github.com/mfcabral/rulegate/internal/rule"
)

// CompilationError reports a model reply that could not be turned into a
// valid rule. Raw carries the offending reply for debugging.
type CompilationError struct {
	Reason string
	Raw    string
}

func (e *CompilationError) Error() string {
	return "rule compilation failed: " + e.Reason
}

const promptTemplate = `You translate automation instructions into rules.

Instruction: %q

Reply with a single JSON object and nothing else, shaped exactly like:
{
  "id": "short-kebab-case-id",
  "condition": "<boolean expression>",
  "action": {"type": "<one of: %s>", ...}
}

The condition compares fact names against literals with == != < <= > >=,
combined with AND/OR and parentheses, e.g. "temp > 30 AND humidity < 50".
Action parameters: "notify" needs "message"; "generate_text" needs "prompt";
"send_email" needs "to", "subject" and "body".`

// draft is the transient shape parsed from model output before validation.
type draft struct {
	ID        string         `json:"id"`
	Condition string         `json:"condition"`
	Action    map[string]any `json:"action"`
}

// Compiler produces rules from natural-language instructions.
type Compiler struct {
	gen      ollama.TextGenerator
	model    string
	registry *action.Registry
}

func New(gen ollama.TextGenerator, model string, registry *action.Registry) *Compiler {
	return &Compiler{gen: gen, model: model, registry: registry}
}

// Compile prompts the collaborator and validates the reply into a rule.
// Collaborator failures propagate as ollama errors; unusable replies are
// *CompilationError. A draft lacking an id gets a fresh UUID; the model is
// never asked to guess twice.
func (c *Compiler) Compile(ctx context.Context, instruction string) (*rule.Rule, error) {
	prompt := fmt.Sprintf(promptTemplate, instruction, strings.Join(c.registry.Types(), ", "))

	reply, err := c.gen.Generate(ctx, c.model, prompt)
	if err != nil {
		metrics.RulesCompiled.WithLabelValues("collaborator_error").Inc()
		return nil, err
	}

	r, err := c.parse(reply)
	if err != nil {
		metrics.RulesCompiled.WithLabelValues("invalid").Inc()
		return nil, err
	}
	metrics.RulesCompiled.WithLabelValues("ok").Inc()
	return r, nil
}

func (c *Compiler) parse(reply string) (*rule.Rule, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, &CompilationError{Reason: "reply contains no JSON object", Raw: reply}
	}

	var d draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, &CompilationError{Reason: "reply is not well-formed JSON: " + err.Error(), Raw: reply}
	}
	if d.Condition == "" {
		return nil, &CompilationError{Reason: "draft is missing \"condition\"", Raw: reply}
	}
	if len(d.Action) == 0 {
		return nil, &CompilationError{Reason: "draft is missing \"action\"", Raw: reply}
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	if _, err := condition.Parse(d.Condition); err != nil {
		return nil, &CompilationError{Reason: "draft condition does not parse: " + err.Error(), Raw: reply}
	}

	r := &rule.Rule{ID: d.ID, Condition: d.Condition, Action: d.Action}
	if err := r.Validate(); err != nil {
		return nil, &CompilationError{Reason: err.Error(), Raw: reply}
	}
	// Param-shape check when the action type has a registered handler.
	if h, err := c.registry.Get(r.ActionType()); err == nil {
		if err := h.Validate(r.Action); err != nil {
			return nil, &CompilationError{Reason: "draft action invalid: " + err.Error(), Raw: reply}
		}
	}
	return r, nil
}

// extractJSON returns the first balanced top-level JSON object in s. Models
// routinely wrap output in prose or code fences; everything around the
// object is ignored.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
