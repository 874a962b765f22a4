package validation

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/2beens/liftlog/pkg"
)

// Error carries field level messages for rejected mutation input.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func NewError() *Error {
	return &Error{
		Fields: map[string]string{},
	}
}

func (e *Error) Set(field, message string) {
	e.Fields[field] = message
}

// OrNil returns nil when no field failed, so callers can do
// `return checkInput(...)` without the typed nil pointer trap.
func (e *Error) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		fields = append(fields, field+": "+message)
	}
	sort.Strings(fields)
	return "validation failed [" + strings.Join(fields, ", ") + "]"
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// WriteError renders the validation error as a structured JSON 400.
func WriteError(w http.ResponseWriter, valErr *Error) {
	respBytes, err := json.Marshal(errorResponse{
		Error:  "validation failed",
		Fields: valErr.Fields,
	})
	if err != nil {
		http.Error(w, "validation failed", http.StatusBadRequest)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusBadRequest)
}
