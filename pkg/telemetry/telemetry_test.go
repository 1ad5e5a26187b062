package telemetry

import (
	"context"
	"testing"

	"github.com/shiva/campusq/config"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), config.TelemetryConfig{ServiceName: "campusq"})
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
