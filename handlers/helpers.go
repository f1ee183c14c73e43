package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/resolver"
	"github.com/Dosada05/tennis-clubs/services"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// decodeInput reads and validates a request body, writing the error response itself.
// It reports whether the handler may go on.
func decodeInput(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			failedValidationResponse(w, r, validationMessages(fieldErrors))
			return false
		}
		serverErrorResponse(w, r, err)
		return false
	}
	return true
}

func validationMessages(fieldErrors validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		key := fe.Field()
		switch fe.Tag() {
		case "required":
			out[key] = "is required"
		case "oneof":
			out[key] = "must be one of: " + fe.Param()
		case "len":
			out[key] = fmt.Sprintf("must be exactly %s characters", fe.Param())
		case "max":
			out[key] = fmt.Sprintf("must be at most %s", fe.Param())
		case "datetime":
			out[key] = "must be a date in the form " + fe.Param()
		default:
			out[key] = fmt.Sprintf("failed the %q rule", fe.Tag())
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", paramName, id)
	}
	return id, nil
}

// getNestedIDsFromURL reads a parent and a child id, answering 400 itself when either is bad.
func getNestedIDsFromURL(w http.ResponseWriter, r *http.Request, parentParam, childParam string) (parentID, childID int, ok bool) {
	parentID, err := getIDFromURL(r, parentParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	childID, err = getIDFromURL(r, childParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return parentID, childID, true
}

// getPageFromQuery reads limit/offset; a missing limit means no limit.
func getPageFromQuery(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit: %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %q", v)
		}
	}
	return limit, offset, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func unavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

// mapServiceErrorToHTTP turns service, ledger and resolver errors into responses.
// Stored data that breaks the ledger or resolver rules is reported as a conflict with its message.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrClubNotFound),
		errors.Is(err, services.ErrCourtNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrPairNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrEquipmentNotFound),
		errors.Is(err, services.ErrMeetingNotFound),
		errors.Is(err, services.ErrTrainingNotFound),
		errors.Is(err, services.ErrTransactionNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, ledger.ErrNotFound):
		errorResponse(w, r, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrClubNameConflict),
		errors.Is(err, services.ErrCourtNameConflict),
		errors.Is(err, services.ErrCourtInUse),
		errors.Is(err, services.ErrNationalIDConflict),
		errors.Is(err, services.ErrRankConflict),
		errors.Is(err, services.ErrPairConflict),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrEquipmentConflict),
		errors.Is(err, services.ErrCategoryTypeLocked),
		errors.Is(err, ledger.ErrConflict):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrUnknownReference),
		errors.Is(err, services.ErrInvalidMatchResult),
		errors.Is(err, services.ErrSameOpponent),
		errors.Is(err, services.ErrPairSamePlayers),
		errors.Is(err, services.ErrInvalidPlace),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, ledger.ErrInvalidDateRange):
		unprocessableResponse(w, r, err.Error())

	case errors.Is(err, ledger.ErrInvariantViolation),
		errors.Is(err, resolver.ErrDataConsistency),
		errors.Is(err, resolver.ErrParse),
		errors.Is(err, resolver.ErrNotParticipant):
		slog.ErrorContext(r.Context(), "inconsistent stored data", slog.String("path", r.URL.Path), slog.Any("error", err))
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrValidationFailed):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrLoginDisabled),
		errors.Is(err, services.ErrUploadsDisabled):
		unavailableResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
