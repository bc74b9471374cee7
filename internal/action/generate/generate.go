// Package generate implements the "generate_text" action: it forwards the
// action's prompt to the text-generation collaborator and reports the
// completion. Collaborator failures degrade to a failed result.
package generate

import (
	"context"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/fact"
	"github.com/mfcabral/rulegate/internal/ollama"
)

type Generate struct {
	gen          ollama.TextGenerator
	defaultModel string
}

func New(gen ollama.TextGenerator, defaultModel string) *Generate {
	return &Generate{gen: gen, defaultModel: defaultModel}
}

func (g *Generate) Type() string { return "generate_text" }

func (g *Generate) Validate(params map[string]any) error {
	_, err := action.StringParam(params, "prompt")
	return err
}

func (g *Generate) Execute(ctx context.Context, _ string, params map[string]any, _ fact.Snapshot) (*action.Result, error) {
	prompt, err := action.StringParam(params, "prompt")
	if err != nil {
		return nil, err
	}
	model, _ := params["model"].(string)
	if model == "" {
		model = g.defaultModel
	}

	text, err := g.gen.Generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}
	return &action.Result{Type: g.Type(), Success: true, Detail: text}, nil
}
