package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/beforest/forest-guide/internal/common/errors"
	"github.com/beforest/forest-guide/internal/common/logger"
	"github.com/beforest/forest-guide/internal/common/observability"
)

const maxBodyBytes = 64 * 1024

// payloadSchema rejects malformed payloads before they reach the service.
// The metadata map stays open; only its recognized keys are typed.
const payloadSchema = `{
	"type": "object",
	"required": ["message", "contactId"],
	"properties": {
		"message":         {"type": "string", "minLength": 1},
		"contactId":       {"type": "string", "minLength": 1},
		"instagramUserId": {"type": "string"},
		"name":            {"type": "string"},
		"flowId":          {"type": "string"},
		"campaignId":      {"type": "string"},
		"messageId":       {"type": "string"},
		"metadata": {
			"type": "object",
			"properties": {
				"is_ig_verified_user": {"type": ["boolean", "string"]},
				"ig_followers_count":  {"type": ["integer", "string"]}
			}
		}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(payloadSchema)

// Handler is the HTTP boundary over the webhook service.
type Handler struct {
	service *Service
	obs     *observability.Observability
	logger  logger.Logger
}

func NewHandler(service *Service, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "webhook_handler"}),
	}
}

type errorResponse struct {
	Status string              `json:"status"`
	Code   apperrors.ErrorCode `json:"code"`
	Error  string              `json:"error"`
}

// HandleManyChat processes one inbound ManyChat webhook call.
func (h *Handler) HandleManyChat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidPayload, "unreadable request body")
		return
	}

	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidPayload, "request body is not valid JSON")
		return
	}
	if !result.Valid() {
		h.writeError(w, http.StatusBadRequest, schemaErrorCode(result), schemaErrorMessage(result))
		return
	}

	var msg IncomingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidPayload, "request body does not match the expected shape")
		return
	}

	reply, err := h.service.HandleInbound(r.Context(), msg)
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			h.writeError(w, http.StatusBadRequest, ve.Code, ve.Message)
			return
		}
		h.logger.Error("inbound handling failed", map[string]interface{}{"error": err.Error()})
		h.writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInvalidPayload, "internal error")
		return
	}

	if h.obs != nil {
		h.obs.RecordMessageProcessed(r.Context(), reply.Path)
		h.obs.RecordMessageDuration(r.Context(), time.Since(started), reply.Path)
	}
	h.writeJSON(w, http.StatusOK, reply)
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string) {
	h.writeJSON(w, status, errorResponse{Status: "error", Code: code, Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

// schemaErrorCode maps the first schema violation to the matching error code
// so missing hard-required fields keep their dedicated codes.
func schemaErrorCode(result *gojsonschema.Result) apperrors.ErrorCode {
	for _, desc := range result.Errors() {
		switch desc.Field() {
		case "message":
			return apperrors.ErrCodeMissingMessage
		case "contactId":
			return apperrors.ErrCodeMissingContactID
		}
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				switch prop {
				case "message":
					return apperrors.ErrCodeMissingMessage
				case "contactId":
					return apperrors.ErrCodeMissingContactID
				}
			}
		}
	}
	return apperrors.ErrCodeInvalidPayload
}

func schemaErrorMessage(result *gojsonschema.Result) string {
	if errs := result.Errors(); len(errs) > 0 {
		return errs[0].String()
	}
	return "invalid payload"
}
