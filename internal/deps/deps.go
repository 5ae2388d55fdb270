package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"osassist/internal/health"
)

// Requirement names an external program the panel shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement resolved on this host.
type Status struct {
	Requirement
	Available bool
	// Resolved is the path exec.LookPath found.
	Resolved string
	Detail   string
}

// PanelRequirements lists the programs the panel needs on goos. The sidecar
// executable is optional because the user may start it by other means.
func PanelRequirements(goos, sidecarPath string) []Requirement {
	cleanup, _ := health.CleanupCommand(goos, "")
	return []Requirement{
		{
			Name:        "Cleanup tool",
			Command:     cleanup,
			Description: "Kills leftover assistant scripts",
		},
		{
			Name:        "Assistant",
			Command:     sidecarPath,
			Description: "Registered to run at login",
			Optional:    true,
		},
	}
}

// CheckBinaries resolves each requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		switch resolved, err := exec.LookPath(req.Command); {
		case req.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		default:
			status.Available = true
			status.Resolved = resolved
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required entries that did not resolve.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			out = append(out, status)
		}
	}
	return out
}
