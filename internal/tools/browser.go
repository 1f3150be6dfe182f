package tools

import (
	"fmt"

	"github.com/clickagent/backend/internal/security"
	"github.com/clickagent/backend/internal/shared/types"
)

// actionBindings maps each tool to the policy action it exercises.
// "wait" is a pure delay and binds to no action. Startup verifies
// every binding resolves to an allowed, unrestricted action.
var actionBindings = map[string]string{
	"navigate":     "navigate",
	"click":        "click_element",
	"type":         "fill_form",
	"screenshot":   "take_screenshot",
	"extract_text": "extract_text",
}

// RegisterBrowserTools installs the browser automation catalog. Every
// handler is a stand-in: it validates the declared required parameters
// and returns an acknowledgment. Real page control lives in the
// browser-control collaborator, outside this repository.
func RegisterBrowserTools(r *Registry) error {
	defs := []struct {
		tool     types.Tool
		required []string
	}{
		{
			tool: types.Tool{
				Name:        "navigate",
				Description: "Navigate the browser to a URL",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "Destination URL", Required: true},
				},
			},
			required: []string{"url"},
		},
		{
			tool: types.Tool{
				Name:        "click",
				Description: "Click an element on the current page",
				Parameters: []types.Parameter{
					{Name: "selector", Type: "string", Description: "CSS selector of the element", Required: true},
				},
			},
			required: []string{"selector"},
		},
		{
			tool: types.Tool{
				Name:        "type",
				Description: "Type text into an input element",
				Parameters: []types.Parameter{
					{Name: "selector", Type: "string", Description: "CSS selector of the input", Required: true},
					{Name: "text", Type: "string", Description: "Text to type", Required: true},
				},
			},
			required: []string{"selector", "text"},
		},
		{
			tool: types.Tool{
				Name:        "screenshot",
				Description: "Capture a screenshot of the current page",
				Parameters: []types.Parameter{
					{Name: "full_page", Type: "boolean", Description: "Capture the full page (default: false)", Required: false},
				},
			},
		},
		{
			tool: types.Tool{
				Name:        "extract_text",
				Description: "Extract visible text from the current page",
				Parameters: []types.Parameter{
					{Name: "selector", Type: "string", Description: "Limit extraction to a selector (default: whole page)", Required: false},
				},
			},
		},
		{
			tool: types.Tool{
				Name:        "wait",
				Description: "Wait for a condition or a fixed delay",
				Parameters: []types.Parameter{
					{Name: "ms", Type: "number", Description: "Milliseconds to wait", Required: true},
				},
			},
			required: []string{"ms"},
		},
	}

	for _, d := range defs {
		if err := r.Register(d.tool, stubHandler(d.tool.Name, d.required)); err != nil {
			return err
		}
	}
	return nil
}

// VerifyPolicy cross-checks the registry against the capability
// policy: each tool's bound action must be on the allow list. Run at
// startup; a mismatch is a configuration error.
func VerifyPolicy(r *Registry, policy *security.Policy) error {
	for _, t := range r.List() {
		action, bound := actionBindings[t.Name]
		if !bound {
			continue
		}
		if !policy.ActionAllowed(action) {
			return fmt.Errorf("tool %s bound to action %q which is not allowed by policy", t.Name, action)
		}
	}
	return nil
}

func stubHandler(name string, required []string) Handler {
	return func(params map[string]interface{}) (*types.Result, error) {
		for _, field := range required {
			if _, ok := params[field]; !ok {
				msg := fmt.Sprintf("%s: missing required parameter %q", name, field)
				return &types.Result{Success: false, Error: &msg}, nil
			}
		}
		return &types.Result{
			Success: true,
			Data:    map[string]interface{}{"tool": name, "acknowledged": true},
		}, nil
	}
}
