package chi

import (
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/options"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeValidationFailed     ErrorCode = "validation_failed"
	ErrorCodeInvalidConfiguration ErrorCode = "invalid_configuration"
	ErrorCodeUnknownEvent         ErrorCode = "unknown_event"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed     ErrorCode = "method_not_allowed"
	ErrorCodeCacheUnavailable     ErrorCode = "cache_unavailable"
	ErrorCodeInternal             ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SimilarRequest is the body of POST /similar.
type SimilarRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	// Index replaces the sibling pool when present (an empty list is an empty pool).
	Index   []string          `json:"index,omitempty"`
	Lang    string            `json:"lang,omitempty"`
	Options options.Overrides `json:"options"`
}

// SimilarResponse lists ranked items, best first.
type SimilarResponse struct {
	Reference string         `json:"reference"`
	Items     []ItemResponse `json:"items"`
	Count     int            `json:"count"`
}

// ItemRequest is the body of PUT /items.
type ItemRequest struct {
	Kind         string            `json:"kind"`
	ID           string            `json:"id"`
	Parent       string            `json:"parent,omitempty"`
	Fields       map[string]string `json:"fields"`
	Translations []string          `json:"translations,omitempty"`
}

// ItemResponse is the JSON view of an item.
type ItemResponse struct {
	Kind         string            `json:"kind"`
	ID           string            `json:"id"`
	Parent       string            `json:"parent,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	Translations []string          `json:"translations,omitempty"`
}

// EventRequest is the body of POST /events.
type EventRequest struct {
	Name   string `json:"name"`
	ItemID string `json:"item_id,omitempty"`
}

// EventResponse acknowledges a published event.
type EventResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func itemToResponse(it item.Item) ItemResponse {
	resp := ItemResponse{Kind: string(it.Kind()), ID: it.ID()}
	if rec, ok := it.(*item.Record); ok {
		resp.Parent = rec.Parent()
		resp.Fields = rec.Fields()
		resp.Translations = rec.Translations()
	}
	return resp
}

func itemsToResponse(items []item.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
	}
	return out
}
