package checks

import "fmt"

// ApplyOverride returns result with its status replaced by status. When the
// status already matches the result is returned unchanged; otherwise the
// message records the original status. Fix text is preserved.
func ApplyOverride(result CheckResult, status Status) CheckResult {
	if result.Status == status {
		return result
	}
	overridden := result
	overridden.Status = status
	overridden.Message = fmt.Sprintf("%s [severity override: %s -> %s]", result.Message, result.Status, status)
	return overridden
}
