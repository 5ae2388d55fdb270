package preflight

import "os"

// checkAccess creates and removes a probe file; Windows has no access(2).
func checkAccess(path string) error {
	probe, err := os.CreateTemp(path, ".osassist-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
