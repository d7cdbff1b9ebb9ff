package gateway

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
	commonhttp "github.com/SafronovIK/authgate/internal/common/http"
	"github.com/SafronovIK/authgate/internal/common/logger"
	"github.com/SafronovIK/authgate/internal/observability/metrics"
)

// Forwarder relays a request to an upstream service and copies the
// response back verbatim. The outbound request inherits the inbound
// context, so client disconnects cancel the upstream call.
type Forwarder struct {
	client *http.Client
	log    *logger.Logger
}

func NewForwarder(timeout time.Duration, log *logger.Logger) *Forwarder {
	return &Forwarder{
		client: &http.Client{
			Timeout: timeout,
			// Redirects belong to the client, not the gateway: a 3xx from
			// an upstream is relayed as-is.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}
}

func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, serviceName string, base *url.URL, remainder string) {
	target := *base
	target.Path = base.Path + remainder
	target.RawQuery = r.URL.RawQuery

	outbound, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		f.log.Errorf("failed to build upstream request for %s: %v", serviceName, err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	outbound.Header = r.Header.Clone()
	outbound.Header.Del("Host")

	start := time.Now()
	resp, err := f.client.Do(outbound)
	if err != nil {
		metrics.GatewayUpstreamErrors.WithLabelValues(serviceName).Inc()
		f.log.WithFields(r.Context(), logger.Fields{
			"service": serviceName,
			"action":  "forward_failed",
		}).Errorf("upstream request failed: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusServiceUnavailable,
			commonerrors.ErrServiceUnavailable.Code(),
			"service unavailable: "+serviceName,
			nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}
	defer resp.Body.Close()

	metrics.GatewayForwardDurationSeconds.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())
	metrics.GatewayForwardsTotal.WithLabelValues(serviceName, strconv.Itoa(resp.StatusCode)).Inc()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		f.log.Warnf("failed to copy upstream response from %s: %v", serviceName, err)
	}
}
