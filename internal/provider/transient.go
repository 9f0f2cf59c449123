package provider

import (
	"errors"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/openai/openai-go/v3"

	"github.com/mealscope/enrich-cli/internal/resilience"
)

// classifyAPIError tags SDK errors carrying a retryable HTTP status as
// transient, so the retry layer keys off the status code instead of message
// text. Errors without a status, or with a non-retryable one, pass through
// unchanged.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var status int
	var oaErr *openai.Error
	var anErr *sdk.Error
	switch {
	case errors.As(err, &oaErr):
		status = oaErr.StatusCode
	case errors.As(err, &anErr):
		status = anErr.StatusCode
	default:
		return err
	}

	if retryableStatus(status) {
		return resilience.NewTransientError(err, status)
	}
	return err
}

// retryableStatus covers throttling, request timeout and server-side failures.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= http.StatusInternalServerError
}
