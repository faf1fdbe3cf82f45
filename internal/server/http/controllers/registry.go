package controllers

import (
	"net/http"

	"github.com/rzbill/sluice/internal/runtime"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	streams *StreamsController
	rail    *RailController
	events  *EventsController
}

// NewControllerRegistry builds every controller over the runtime's services.
func NewControllerRegistry(rt *runtime.Runtime, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		streams: NewStreamsController(rt.Ledger(), logger),
		rail:    NewRailController(rt.Rail()),
		events:  NewEventsController(rt.Journal(), logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.streams.RegisterRoutes(mux)
	r.rail.RegisterRoutes(mux)
	r.events.RegisterRoutes(mux)
}
