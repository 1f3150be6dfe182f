package security

import "fmt"

// Policy bounds what an execution context may do. It is constructed
// once at process start, injected where needed, and never mutated.
type Policy struct {
	RestrictedAPIs         []string `json:"restricted_apis"`
	RestrictedDestinations []string `json:"restricted_destinations"`
	RestrictedActions      []string `json:"restricted_actions"`
	AllowedActions         []string `json:"allowed_actions"`
}

// DefaultPolicy returns the process-wide capability policy.
func DefaultPolicy() *Policy {
	return &Policy{
		RestrictedAPIs: []string{
			"localStorage",
			"sessionStorage",
			"cookies",
			"geolocation",
			"camera",
			"microphone",
			"clipboard",
		},
		RestrictedDestinations: RestrictedDestinations(),
		RestrictedActions: []string{
			"delete_data",
			"modify_settings",
			"install_extension",
			"access_file_system",
			"execute_script",
			"modify_dom_permanently",
		},
		AllowedActions: []string{
			"navigate",
			"search",
			"read_content",
			"click_element",
			"fill_form",
			"scroll",
			"take_screenshot",
			"extract_text",
		},
	}
}

// Validate checks the policy's structural invariants: the allow and
// deny action lists must be disjoint. A violation is a configuration
// error and should abort startup.
func (p *Policy) Validate() error {
	restricted := make(map[string]bool, len(p.RestrictedActions))
	for _, a := range p.RestrictedActions {
		restricted[a] = true
	}
	for _, a := range p.AllowedActions {
		if restricted[a] {
			return fmt.Errorf("action %q is both allowed and restricted", a)
		}
	}
	return nil
}

// ActionAllowed reports whether an action is on the positive list.
func (p *Policy) ActionAllowed(action string) bool {
	for _, a := range p.AllowedActions {
		if a == action {
			return true
		}
	}
	return false
}
