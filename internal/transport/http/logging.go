package http

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
)

func registerLogging(e *echo.Echo, logger *zap.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok && user != nil {
				userID = user.ID.String()
			}

			fields := []zap.Field{
				zap.String("user_uuid", userID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if summary := c.Get(requestBodyLogKey); summary != nil {
				fields = append(fields, zap.Any("request_body", summary))
			}
			if summary := c.Get(responseBodyLogKey); summary != nil {
				fields = append(fields, zap.Any("response_body", summary))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}

			switch {
			case v.Status >= 500:
				logger.Error("request", fields...)
			case v.Status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

// isSensitiveKey matches fields that must never reach the logs: passwords,
// session tokens and invitation tokens.
func isSensitiveKey(key string) bool {
	return strings.Contains(key, "password") || strings.Contains(key, "token")
}

// sanitizeBody turns a request or response body into something safe to
// log. The API speaks JSON, so anything else is logged as a clamped string
// or "binary".
func sanitizeBody(body []byte, contentType string) interface{} {
	if len(body) == 0 {
		return nil
	}
	loweredType := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(loweredType, "application/json") || json.Valid(body) {
		var data interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data, ""), len(body))
		}
	}
	if containsBinaryBytes(body) {
		return "binary"
	}
	text := string(body)
	if isSensitiveKey(strings.ToLower(text)) {
		return "redacted"
	}
	return clampString(text)
}

// limitJSONSize keeps small payloads whole; larger ones are reduced to
// their top-level keys.
func limitJSONSize(value interface{}, size int) interface{} {
	if size <= maxLoggedBody {
		return value
	}
	summary := map[string]interface{}{"_truncated": true, "_bytes": size}
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		summary["_keys"] = keys
	case []interface{}:
		summary["_items"] = len(v)
	}
	return summary
}

func sanitizeJSON(value interface{}, keyHint string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			lowerKey := strings.ToLower(key)
			if isSensitiveKey(lowerKey) {
				result[key] = "redacted"
				continue
			}
			result[key] = sanitizeJSON(val, lowerKey)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = sanitizeJSON(item, keyHint)
		}
		return result
	case string:
		if keyHint != "" && isSensitiveKey(keyHint) {
			return "redacted"
		}
		if containsBinaryBytes([]byte(v)) {
			return "binary"
		}
		return clampString(v)
	default:
		return v
	}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
