package httputil

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo contains the HTTP status code and message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

// ErrorMapping maps one sentinel to a response. A zero Status defers to the
// error's own HTTPStatus; an empty Message defers to the mapper's describer.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// ErrorMapper maps domain and client errors to HTTP status codes and messages.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
	describe       func(error) string
}

// NewErrorMapper creates a mapper answering 500 for anything unmapped.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
		describe:       func(err error) string { return err.Error() },
	}
}

// WithMapping adds an error mapping to the mapper.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Message: message})
	return m
}

// WithMappings adds several mappings at once.
func (m *ErrorMapper) WithMappings(mappings ...ErrorMapping) *ErrorMapper {
	m.mappings = append(m.mappings, mappings...)
	return m
}

// WithDefault sets the default status and message for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// WithDescriber sets how mapped errors without a fixed message are rendered.
func (m *ErrorMapper) WithDescriber(describe func(error) string) *ErrorMapper {
	if describe != nil {
		m.describe = describe
	}
	return m
}

// Map converts an error to HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	for _, mapping := range m.mappings {
		if !errors.Is(err, mapping.Error) {
			continue
		}
		info := HTTPErrorInfo{Status: mapping.Status, Message: mapping.Message}
		if info.Status == 0 {
			info.Status = m.defaultStatus
			var coder StatusCoder
			if errors.As(err, &coder) && coder.HTTPStatus() > 0 {
				info.Status = coder.HTTPStatus()
			}
		}
		if info.Message == "" {
			info.Message = m.describe(err)
		}
		return info
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}

	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}
