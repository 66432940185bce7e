// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином формате.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Code и Error заполняются только при ошибке, Data только при успехе.
type Response struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Code    string `json:"code" example:"not_found"`
	Error   string `json:"error" example:"patient not found"`
}

// Машиночитаемые коды ошибок.
const (
	CodeBadRequest         = "bad_request"
	CodeValidation         = "validation_error"
	CodeConflict           = "conflict"
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized"
	CodeTokenExpired       = "token_expired"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
	CodeUnavailable        = "unavailable"
)

// MsgInternal единственное сообщение, которое клиент видит при внутренней ошибке.
const MsgInternal = "internal server error"

// OK возвращает успешный Response с данными.
func OK(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Error возвращает Response с кодом и сообщением ошибки.
func Error(code, msg string) Response {
	return Response{
		Code:  code,
		Error: msg,
	}
}

// ValidationError формирует ответ по ошибкам валидатора.
// Каждое нарушение превращается в человекочитаемый текст, тексты объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		field := jsonName(err.Field())
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", field))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", field))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", field, err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", field, err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", field, err.Param()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", field))
		case "url":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid url", field))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", field))
		}
	}
	return Response{
		Code:  CodeValidation,
		Error: strings.Join(errsMsgs, ", "),
	}
}

// jsonName переводит имя поля структуры в snake_case, как оно выглядит в JSON.
func jsonName(field string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range field {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}

// JSON пишет ответ с кодом статуса.
func JSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// Fail пишет ответ-ошибку с кодом статуса.
func Fail(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	JSON(w, r, status, Error(code, msg))
}
