package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/transform"
)

// RegistryCheck verifies the registry answers and knows every
// transformation the config refers to.
type RegistryCheck struct {
	registry transform.Registry
	config   *config.Config
}

func NewRegistryCheck(registry transform.Registry, cfg *config.Config) *RegistryCheck {
	return &RegistryCheck{registry: registry, config: cfg}
}

func (c *RegistryCheck) Name() string {
	return "Transformations"
}

func (c *RegistryCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	methods := c.registry.Methods()
	if len(methods) == 0 {
		result.add("Catalog", StatusFail, "registry returned no transformations")
		return result
	}
	result.add("Catalog", StatusPass, fmt.Sprintf("%d transformations", len(methods)))

	name := c.config.DefaultTransformation
	if !c.registry.Has(name) {
		result.add("default_transformation", StatusFail, fmt.Sprintf("%q is not available", name))
	} else if _, err := c.registry.Transform(ctx, name, "casekit doctor", nil); err != nil {
		result.add("Transform", StatusFail, err.Error())
	} else {
		result.add("Transform", StatusPass, name)
	}

	for _, slot := range c.config.Previews.Slots {
		if !c.registry.Has(slot) {
			result.add("previews.slots", StatusWarn, fmt.Sprintf("%q is not available; its preview shows the input", slot))
		}
	}

	return result
}
