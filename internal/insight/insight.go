// Package insight defines the optional narrative-text augmentation for
// advisories.
package insight

import (
	"context"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/aqi"
)

// FallbackText is returned whenever a generator cannot produce an
// insight. Generators never surface errors; the advisory flow does not
// depend on their output.
const FallbackText = "AI Insight unavailable (Network/API Error). Showing standard system recommendations."

// Generator produces a short personalized narrative for an advisory.
// Implementations must always return usable text, degrading to
// FallbackText on any internal failure.
type Generator interface {
	Generate(ctx context.Context, profile advisory.HealthProfile, reading *aqi.Reading, risk advisory.RiskAssessment) string
}

// Disabled is the Generator used when no narrative backend is
// configured.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, advisory.HealthProfile, *aqi.Reading, advisory.RiskAssessment) string {
	return FallbackText
}
