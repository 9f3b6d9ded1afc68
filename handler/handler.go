package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"movie-awards/internal/domain"
	"movie-awards/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	msgMissingParams = "Missing movie Id or awardBody"
	msgNotFound      = "No information found for this movie and award"
)

type LookupUseCase interface {
	Lookup(ctx context.Context, in usecase.LookupInput) (usecase.LookupOutput, error)
}

type Handler struct {
	lookup LookupUseCase
	logger *slog.Logger
}

type dataResponse struct {
	Data []domain.AwardRecord `json:"data"`
}

type messageResponse struct {
	Message string `json:"Message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail is the serialized form of a failure surfaced in a 500 body.
type errorDetail struct {
	Name           string `json:"name"`
	Message        string `json:"message"`
	RequestID      string `json:"requestId,omitempty"`
	HTTPStatusCode int    `json:"httpStatusCode,omitempty"`
}

func NewHandler(lookup LookupUseCase, logger *slog.Logger) (*Handler, error) {
	if lookup == nil {
		return nil, errors.New("handler: lookup use case must not be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Handler{lookup: lookup, logger: logger}, nil
}

// Handle serves GET /movies/{movieId}/awards/{awardBody}?min=N. It always
// returns a well-formed response and a nil error.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (resp events.APIGatewayV2HTTPResponse, err error) {
	correlationID := resolveCorrelationID(req)
	logger := h.logger.With("correlationId", correlationID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling request", "panic", r)
			resp = internalError(fmt.Errorf("panic: %v", r), correlationID)
			err = nil
		}
	}()

	logger.Info("request received",
		"routeKey", req.RouteKey,
		"rawPath", req.RawPath,
		"pathParameters", req.PathParameters,
		"queryStringParameters", req.QueryStringParameters,
		"requestId", req.RequestContext.RequestID,
	)

	movieID, _ := parseIntParam(req.PathParameters["movieId"])
	minAwards, _ := parseIntParam(req.QueryStringParameters["min"])
	in := usecase.LookupInput{
		MovieID:   movieID,
		AwardBody: req.PathParameters["awardBody"],
		Min:       minAwards,
	}

	out, lookupErr := h.lookup.Lookup(ctx, in)
	if lookupErr != nil {
		return h.mapError(logger, lookupErr, correlationID), nil
	}

	return writeJSON(http.StatusOK, dataResponse{Data: out.Awards}, correlationID), nil
}

func (h *Handler) mapError(logger *slog.Logger, err error, correlationID string) events.APIGatewayV2HTTPResponse {
	var usecaseErr *usecase.Error
	if errors.As(err, &usecaseErr) {
		switch usecaseErr.Code {
		case usecase.ErrorMissingParameters:
			logger.Info("request rejected", "reason", usecaseErr.Reason)
			return writeJSON(http.StatusNotFound, messageResponse{Message: msgMissingParams}, correlationID)
		case usecase.ErrorNotFound:
			logger.Info("no item collection", "reason", usecaseErr.Reason)
			return writeJSON(http.StatusNotFound, messageResponse{Message: msgNotFound}, correlationID)
		}
	}
	logger.Error("lookup failed", "err", err)
	return internalError(err, correlationID)
}

func internalError(err error, correlationID string) events.APIGatewayV2HTTPResponse {
	return writeJSON(http.StatusInternalServerError, errorResponse{Error: describeError(err)}, correlationID)
}

// describeError extracts the AWS error code, message and request metadata
// from err when present.
func describeError(err error) errorDetail {
	d := errorDetail{Name: "Error", Message: err.Error()}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		d.Name = apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			d.Message = msg
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		d.RequestID = respErr.ServiceRequestID()
		d.HTTPStatusCode = respErr.HTTPStatusCode()
	}
	return d
}

func writeJSON(status int, v any, correlationID string) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: describeError(err)})
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}

// parseIntParam reads an optionally signed run of leading digits after any
// leading whitespace; trailing characters are ignored. A 0x or 0X prefix
// selects hexadecimal. It reports false when there are no digits or the value
// overflows int.
func parseIntParam(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit, s = 16, isHex, s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(sign+s[:end], base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func resolveCorrelationID(req events.APIGatewayV2HTTPRequest) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if req.RequestContext.RequestID != "" {
		return req.RequestContext.RequestID
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
