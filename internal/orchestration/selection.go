package orchestration

import "github.com/agbru/picalc/internal/integration"

// GetIntegratorsToRun resolves an algorithm selection against the factory.
// "all" returns every registered integrator in sorted key order; an unknown
// name returns nil.
func GetIntegratorsToRun(algo string, factory integration.Factory) []integration.Integrator {
	if algo == "all" {
		keys := factory.List()
		integrators := make([]integration.Integrator, 0, len(keys))
		for _, k := range keys {
			if i, err := factory.Get(k); err == nil {
				integrators = append(integrators, i)
			}
		}
		return integrators
	}
	if i, err := factory.Get(algo); err == nil {
		return []integration.Integrator{i}
	}
	return nil
}
