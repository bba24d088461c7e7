package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Tomlord1122/todo/internal/errs"
	"github.com/Tomlord1122/todo/internal/service"
	"github.com/Tomlord1122/todo/internal/sqlerr"
)

var (
	invalidIDCode    = "INVALID_TODO_ID"
	invalidQueryCode = "INVALID_QUERY_PARAMETER"
	invalidBodyCode  = "INVALID_REQUEST_BODY"
	todoNotFoundCode = "TODO_NOT_FOUND"
)

// decodeJSONBody decodes a single JSON object into dst, rejecting
// unknown fields.
func decodeJSONBody(r *http.Request, dst any) *errs.HTTPError {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var msg string
	switch {
	case errors.As(err, &syntaxError):
		msg = fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		msg = "Request body contains badly-formed JSON"
	case errors.As(err, &unmarshalTypeError):
		msg = fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		msg = fmt.Sprintf("Request body contains unknown field %s", fieldName)
	case errors.Is(err, io.EOF):
		msg = "Request body must not be empty"
	default:
		hlog.FromRequest(r).Warn().Err(err).Msg("decoding request body")
		msg = "Request body could not be read"
	}
	return errs.NewBadRequestError(msg, &invalidBodyCode, nil)
}

// todoID parses the {id} path parameter. Only positive integers are valid.
func todoID(r *http.Request) (int64, *errs.HTTPError) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("Invalid todo ID provided", &invalidIDCode, nil)
	}
	return id, nil
}

// queryInt returns nil when the parameter is absent.
func queryInt(r *http.Request, name string) (*int, *errs.HTTPError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("Query parameter %q must be an integer", name),
			&invalidQueryCode,
			[]errs.FieldError{{Field: name, Error: "must be an integer"}},
		)
	}
	return &v, nil
}

// respondWithServiceError maps service and driver errors onto HTTP errors.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs service.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		respondWithError(w, r, errs.NewNotFoundError("Todo not found", &todoNotFoundCode))
		return
	case errors.As(err, &validationErrs):
		fields := make([]errs.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, errs.FieldError{Field: fe.Field, Error: fe.Message})
		}
		respondWithError(w, r, errs.ValidationError(fields))
		return
	}

	var httpErr *errs.HTTPError
	if !errors.As(sqlerr.HandleError(err), &httpErr) {
		httpErr = errs.NewInternalServerError()
	}
	if httpErr.Status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("todo service failed")
	}
	respondWithError(w, r, httpErr)
}

func respondWithError(w http.ResponseWriter, r *http.Request, httpErr *errs.HTTPError) {
	respondWithJSON(w, r, httpErr.Status, httpErr)
}

func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("marshaling JSON response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error preparing response","status":500}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
