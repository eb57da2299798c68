package handler

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/forgo/inkwell/internal/model"
)

// DataResponse envelopes a single resource with optional HATEOAS links.
// Mutations set Message to a human-readable confirmation.
type DataResponse struct {
	Data    interface{}       `json:"data"`
	Message string            `json:"message,omitempty"`
	Links   map[string]string `json:"_links,omitempty"`
}

// CollectionResponse envelopes a listing. Listings are complete, not
// paginated, so Count simply reports the number of items.
type CollectionResponse struct {
	Data  interface{}       `json:"data"`
	Count int               `json:"count"`
	Links map[string]string `json:"_links,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData writes a single enveloped resource
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	WriteJSON(w, status, DataResponse{Data: data, Links: links})
}

// WriteDataMessage writes an enveloped resource with a confirmation message
func WriteDataMessage(w http.ResponseWriter, status int, data interface{}, message string, links map[string]string) {
	WriteJSON(w, status, DataResponse{Data: data, Message: message, Links: links})
}

// WriteCollection writes an enveloped listing
func WriteCollection(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	count := 0
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		count = v.Len()
	}
	WriteJSON(w, status, CollectionResponse{Data: data, Count: count, Links: links})
}

// WriteError writes an error response using RFC 9457 Problem Details
func WriteError(w http.ResponseWriter, err *model.ProblemDetails) {
	WriteJSON(w, err.Status, err)
}

// DecodeJSON decodes a JSON request body, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
