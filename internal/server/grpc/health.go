package grpcserver

import (
	"context"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"github.com/rzbill/sluice/internal/runtime"
)

type healthSvc struct {
	sluicev1.UnimplementedHealthServiceServer
	rt *runtime.Runtime
}

func (h *healthSvc) Check(ctx context.Context, _ *sluicev1.HealthCheckRequest) (*sluicev1.HealthCheckResponse, error) {
	if err := h.rt.CheckHealth(ctx); err != nil {
		return &sluicev1.HealthCheckResponse{Status: "not_serving"}, nil
	}
	return &sluicev1.HealthCheckResponse{Status: "ok"}, nil
}
