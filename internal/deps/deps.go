package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is one external binary the pipeline executes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements are reported but never fail a preflight.
	Optional bool
}

// Status is the outcome of resolving a Requirement on PATH.
type Status struct {
	Requirement
	// Path is the resolved executable, empty when unavailable.
	Path      string
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		out[i] = check(req)
	}
	return out
}

func check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Path = path
	status.Available = true
	return status
}
