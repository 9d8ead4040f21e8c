package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"

	"github.com/pkg/errors"
)

// Describe 把错误转换为面向用户的提示，action 例如 "load posts"
func Describe(action string, err error) string {
	if err == nil {
		return ""
	}

	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("Failed to %s: request was cancelled", action)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Failed to %s: request timed out", action)
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return fmt.Sprintf("Failed to %s: please sign in again", action)
		case http.StatusForbidden:
			return fmt.Sprintf("Failed to %s: you do not have permission", action)
		case http.StatusNotFound:
			return fmt.Sprintf("Failed to %s: not found", action)
		}
		if apiErr.Message != "" {
			return fmt.Sprintf("Failed to %s: %s", action, apiErr.Message)
		}
		return fmt.Sprintf("Failed to %s (HTTP %d)", action, apiErr.Status)
	default:
		return fmt.Sprintf("Failed to %s: network error, please try again", action)
	}
}
