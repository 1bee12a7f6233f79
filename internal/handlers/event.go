package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/auth"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/metrics"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/models"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/store"
)

var tracer = otel.Tracer("github.com/PratikDhanave/telemetry-ingest-service/internal/handlers")

// EventCreator is the persistence dependency of the ingestion handler.
type EventCreator interface {
	CreateEvent(ctx context.Context, in models.EventInput) error
}

// EventHandler ingests telemetry events. It holds no per-request state.
type EventHandler struct {
	store        EventCreator
	key          *auth.TelemetryKey
	logger       *slog.Logger
	metrics      *metrics.IngestMetrics
	maxBodyBytes int64
}

// NewEventHandler creates an EventHandler. m may be nil.
func NewEventHandler(st EventCreator, key *auth.TelemetryKey, logger *slog.Logger, m *metrics.IngestMetrics, maxBodyBytes int64) *EventHandler {
	return &EventHandler{
		store:        st,
		key:          key,
		logger:       logger,
		metrics:      m,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterEventRoutes registers the ingestion endpoint.
//
// POST /events
// - Requires X-Telemetry-Key
// - Durable: returns 201 only after the store write completes
// - A repeated metaData.id is rejected by the store (500, "Database error <code>")
func RegisterEventRoutes(r gin.IRoutes, h *EventHandler) {
	r.POST("/events", func(c *gin.Context) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
		status, resp := h.Ingest(c.Request.Context(), c.Request.Header, body)
		c.JSON(status, resp)
	})
}

// Ingest authenticates, extracts and persists one event, and maps the
// outcome to a status code and response body.
func (h *EventHandler) Ingest(ctx context.Context, headers http.Header, body io.Reader) (int, any) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "IngestEvent")
	defer span.End()

	if !h.key.Authenticate(headers) {
		h.logger.WarnContext(ctx, "telemetry key missing or rejected")
		span.SetStatus(codes.Error, "unauthorized")
		return h.finish(metrics.OutcomeUnauthorized, started, http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}

	doc, err := decodeBody(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			span.SetStatus(codes.Error, "payload too large")
			return h.finish(metrics.OutcomeTooLarge, started, http.StatusRequestEntityTooLarge,
				models.ErrorResponse{ErrorMessage: "Payload too large"})
		}
		h.logger.WarnContext(ctx, "malformed ingest body", "error", err)
		span.SetStatus(codes.Error, "malformed body")
		return h.finish(metrics.OutcomeBadRequest, started, http.StatusBadRequest,
			models.ErrorResponse{ErrorMessage: "Malformed JSON body"})
	}

	// No shape checks here: absent or mistyped fields flow to the store,
	// which owns validation.
	metaData := field(doc, "metaData")
	gameInfo := field(metaData, "gameInfo")
	in := models.EventInput{
		ID:          field(metaData, "id"),
		EventType:   field(metaData, "eventType"),
		Timestamp:   field(metaData, "timeStamp"),
		GameName:    field(gameInfo, "name"),
		GameType:    field(gameInfo, "type"),
		GameVersion: field(gameInfo, "version"),
		Payload:     field(doc, "eventPayload"),
	}
	span.SetAttributes(
		attribute.String("event.type", stringOrEmpty(in.EventType)),
		attribute.String("game.name", stringOrEmpty(in.GameName)),
	)

	err = h.store.CreateEvent(ctx, in)
	if err == nil {
		return h.finish(metrics.OutcomeIngested, started, http.StatusCreated,
			models.EventIngestResponse{Status: "Event ingested"})
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "store rejected event")

	switch store.Classify(err) {
	case store.KindValidation:
		var ve *store.ValidationError
		errors.As(err, &ve)
		h.logger.WarnContext(ctx, "event failed store validation", "error", ve.Message)
		return h.finish(metrics.OutcomeInvalid, started, http.StatusBadRequest,
			models.ErrorResponse{ErrorMessage: ve.Message})

	case store.KindOperational:
		var oe *store.OperationalError
		errors.As(err, &oe)
		h.logger.WarnContext(ctx, "store rejected event", "code", oe.Code, "event_id", stringOrEmpty(in.ID), "error", err)
		// Duplicate ids land here too, so a client-side mistake reads as a 500.
		return h.finish(metrics.OutcomeDatabaseError, started, http.StatusInternalServerError,
			models.ErrorResponse{ErrorMessage: "Database error " + oe.Code})

	default:
		h.logger.ErrorContext(ctx, "event ingestion failed", "error", err)
		return h.finish(metrics.OutcomeInternalError, started, http.StatusInternalServerError,
			models.ErrorResponse{ErrorMessage: "Internal server error"})
	}
}

func (h *EventHandler) finish(outcome string, started time.Time, status int, body any) (int, any) {
	h.metrics.Observe(outcome, started)
	return status, body
}

// decodeBody reads a JSON document. An empty body decodes to nil so that
// every field reads as absent. Numbers are kept as json.Number.
func decodeBody(r io.Reader) (any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("body is not valid JSON")
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// field returns v[key] when v is a JSON object, nil otherwise.
func field(v any, key string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[key]
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}
