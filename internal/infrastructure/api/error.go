package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DetailKind forma del campo "detail" que devuelve el servicio en errores HTTP.
// El contrato admite tres variantes: un string, una lista de errores de validación
// por campo, o nada reconocible.
type DetailKind int

const (
	DetailNone    DetailKind = iota // sin detail utilizable
	DetailMessage                   // detail es un string
	DetailFields                    // detail es una lista de errores de validación
)

// FieldError entrada de la lista de validación (estilo FastAPI/pydantic).
type FieldError struct {
	Loc  []json.RawMessage `json:"loc,omitempty"`
	Msg  string            `json:"msg"`
	Type string            `json:"type,omitempty"`
}

// Detail variante tipada del payload de error del servidor.
type Detail struct {
	Kind    DetailKind
	Message string       // válido cuando Kind == DetailMessage
	Fields  []FieldError // válido cuando Kind == DetailFields
}

// FirstMessage devuelve el mensaje a mostrar al usuario:
// lista -> msg de la primera entrada; string -> tal cual; si no, el fallback.
func (d Detail) FirstMessage(fallback string) string {
	switch d.Kind {
	case DetailFields:
		if len(d.Fields) > 0 && d.Fields[0].Msg != "" {
			return d.Fields[0].Msg
		}
	case DetailMessage:
		if d.Message != "" {
			return d.Message
		}
	}
	return fallback
}

// Error fallo HTTP del servicio remoto: estado más el detail estructurado.
// Nunca se reintenta automáticamente; la política de reintento es del llamador.
type Error struct {
	Status int
	Detail Detail
}

func (e *Error) Error() string {
	if msg := e.Detail.FirstMessage(""); msg != "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: HTTP %d", e.Status)
}

// IsUnauthorized indica si err es un fallo de autenticación (401).
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound indica si err es un 404 del servicio.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// parseError construye *Error desde el cuerpo de una respuesta no-2xx.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return e
	}

	var msg string
	if err := json.Unmarshal(envelope.Detail, &msg); err == nil {
		e.Detail = Detail{Kind: DetailMessage, Message: msg}
		return e
	}

	var fields []FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		e.Detail = Detail{Kind: DetailFields, Fields: fields}
		return e
	}

	return e
}
