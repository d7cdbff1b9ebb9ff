package gateway

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
	commonhttp "github.com/SafronovIK/authgate/internal/common/http"
	"github.com/SafronovIK/authgate/internal/common/logger"
	"github.com/SafronovIK/authgate/internal/common/token"
	"github.com/SafronovIK/authgate/internal/observability/metrics"
)

const (
	userIDHeader    = "X-User-Id"
	userEmailHeader = "X-User-Email"
)

// Router resolves the first path segment against the registry and relays
// the request upstream. Bearer tokens are verified opportunistically: a
// valid one adds identity headers, a bad one is ignored and the request
// proceeds unauthenticated. Upstream services decide whether identity is
// required.
type Router struct {
	registry  *Registry
	forwarder *Forwarder
	tokens    token.Service
	limiter   *rate.Limiter
	log       *logger.Logger
}

func NewRouter(
	registry *Registry,
	forwarder *Forwarder,
	tokens token.Service,
	limiter *rate.Limiter,
	log *logger.Logger,
) *Router {
	return &Router{
		registry:  registry,
		forwarder: forwarder,
		tokens:    tokens,
		limiter:   limiter,
		log:       log,
	}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rt.limiter != nil && !rt.limiter.Allow() {
		metrics.RateLimitBlocked.WithLabelValues(r.URL.Path, "global").Inc()
		commonhttp.WriteErrorEnvelope(w, http.StatusTooManyRequests,
			commonerrors.ErrRateLimitExceeded.Code(),
			commonerrors.ErrRateLimitExceeded.Message(),
			nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	service, remainder := SplitPath(r.URL.Path)
	if service == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound,
			commonerrors.ErrUnknownService.Code(),
			commonerrors.ErrUnknownService.Message(),
			nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	base, ok := rt.registry.Resolve(service)
	if !ok {
		rt.log.WithFields(r.Context(), logger.Fields{
			"service": service,
			"action":  "unknown_service",
		}).Warn("no upstream registered for service")
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound,
			commonerrors.ErrUnknownService.Code(),
			commonerrors.ErrUnknownService.Message(),
			nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	rt.enrichIdentity(r)

	rt.forwarder.Forward(w, r, service, base, remainder)
}

// enrichIdentity strips any client-supplied identity headers and, when a
// valid bearer token is present, replaces them with the verified claims.
// Verification failures are logged and otherwise ignored.
func (rt *Router) enrichIdentity(r *http.Request) {
	r.Header.Del(userIDHeader)
	r.Header.Del(userEmailHeader)

	raw := r.Header.Get("Authorization")
	if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
		return
	}

	claims, err := rt.tokens.Verify(strings.TrimPrefix(raw, "Bearer "))
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("failure").Inc()
		rt.log.WithFields(r.Context(), logger.Fields{
			"action": "token_verify_failed",
		}).Debugf("bearer token rejected, forwarding unauthenticated: %v", err)
		return
	}

	metrics.TokenVerificationsTotal.WithLabelValues("success").Inc()
	r.Header.Set(userIDHeader, claims.UserID)
	r.Header.Set(userEmailHeader, claims.Email)
}
