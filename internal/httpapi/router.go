// Package httpapi exposes the award lookup handler over plain HTTP by
// translating requests into API Gateway HTTP API events.
package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	routeTemplate = "/movies/{movieId}/awards/{awardBody}"
	routeKey      = "GET " + routeTemplate
)

// EventHandler is satisfied by handler.Handler.
type EventHandler interface {
	Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)
}

// NewRouter returns a router serving the award lookup route.
func NewRouter(h EventHandler, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := mux.NewRouter()
	r.HandleFunc(routeTemplate, func(w http.ResponseWriter, req *http.Request) {
		resp, err := h.Handle(req.Context(), toEvent(req))
		if err != nil {
			logger.Error("handler returned error", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			logger.Warn("failed to write response body", "err", err)
		}
	}).Methods(http.MethodGet)
	return r
}

func toEvent(req *http.Request) events.APIGatewayV2HTTPRequest {
	headers := make(map[string]string, len(req.Header))
	for k, v := range req.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	var query map[string]string
	if values := req.URL.Query(); len(values) > 0 {
		query = make(map[string]string, len(values))
		for k, v := range values {
			query[k] = strings.Join(v, ",")
		}
	}

	return events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              routeKey,
		RawPath:               req.URL.Path,
		RawQueryString:        req.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: query,
		PathParameters:        mux.Vars(req),
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:  routeKey,
			RequestID: uuid.NewString(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    req.Method,
				Path:      req.URL.Path,
				Protocol:  req.Proto,
				SourceIP:  req.RemoteAddr,
				UserAgent: req.UserAgent(),
			},
		},
	}
}
