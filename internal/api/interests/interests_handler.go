package interests

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbkolda/tripbotic/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetInterests(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewHandlerImpl creates a new interests HandlerImpl instance.
func NewHandlerImpl(resolver *Resolver, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		resolver: resolver,
		logger:   logger,
	}
}

// GetInterests returns the canonical interest catalog plus the raw-label
// aliases trip forms can offer.
func (h *HandlerImpl) GetInterests(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("InterestsHandlerImpl").Start(r.Context(), "GetInterests", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/interests"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GetInterests"))
	l.DebugContext(ctx, "Fetching interest catalog")

	resp := map[string]interface{}{
		"catalog": h.resolver.Catalog(),
		"aliases": h.resolver.Aliases(),
	}

	span.SetStatus(codes.Ok, "Interest catalog retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
