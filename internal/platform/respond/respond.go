// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Successful responses wrap their payload in {"data": ...}. Every failure uses
// the error envelope {"statusCode": n, "errors": [...]}, whatever its origin.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/logging"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	StatusCode int           `json:"statusCode"`
	Errors     []ErrorDetail `json:"errors"`
}

// ErrorDetail is one entry of [ErrorEnvelope.Errors].
type ErrorDetail struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Details      any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

/*
Error converts any Go error into the error envelope.

Mapping:
  - [apperr.AppError] keeps its status and code. A validation error yields one
    entry per field error.
  - Anything else is an UnexpectedError (500). The real error and the request
    path and query are logged at FATAL; the client only sees a generic message.
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.FromContext(err)
	}
	if appError == nil {
		logging.Fatal(ctx, logger, "unhandled_error", err,
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.String("path", request.URL.Path),
			slog.String("query", request.URL.RawQuery),
		)
		appError = apperr.Internal(err)
	} else if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, Envelope(appError))
}

// Envelope builds the error body for appError.
func Envelope(appError *apperr.AppError) ErrorEnvelope {
	envelope := ErrorEnvelope{StatusCode: appError.HTTPStatus}

	if appError.Code == apperr.CodeValidation && len(appError.Details) > 0 {
		for _, field := range appError.Details {
			envelope.Errors = append(envelope.Errors, ErrorDetail{
				ErrorCode:    apperr.CodeValidation,
				ErrorMessage: field.Message,
				Details:      field,
			})
		}
		return envelope
	}

	envelope.Errors = []ErrorDetail{{
		ErrorCode:    appError.Code,
		ErrorMessage: appError.Message,
	}}
	return envelope
}
