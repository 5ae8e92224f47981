package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/query"
)

const StatusSuccess = "success"

type SuccessResponse struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Data       any               `json:"data"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
}

type ErrorResponse struct {
	Status     string   `json:"status"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) error {
	return WriteJSON(w, statusCode, SuccessResponse{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

func WriteOK(w http.ResponseWriter, message string, data any) error {
	return WriteSuccess(w, http.StatusOK, message, data)
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteSuccess(w, http.StatusCreated, message, data)
}

func WritePaginated(w http.ResponseWriter, message string, data any, pagination query.Pagination) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{
		Status:     StatusSuccess,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
	})
}

func WriteError(w http.ResponseWriter, statusCode int, message string, errs []string) error {
	return WriteJSON(w, statusCode, ErrorResponse{
		Status:     apperrors.StatusFor(statusCode),
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	})
}

func WriteNotFound(w http.ResponseWriter, what string) error {
	return WriteError(w, http.StatusNotFound, fmt.Sprintf("%s not found", what), nil)
}
