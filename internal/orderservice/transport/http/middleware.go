package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmavn/ordertrack/internal/platform/jsonvalidate"
	"github.com/tmavn/ordertrack/internal/platform/restclient"
)

// expiresDefault is the fixed Expires value stamped on responses; any
// date in the past does.
var expiresDefault = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RequestFilter enforces the common request contract: JSON content type
// with a body on mutating methods and a UserID header on everything but
// the root path. Responses are marked uncacheable.
func RequestFilter(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "request_filter")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Expires", expiresDefault.Format(http.TimeFormat))
			}

			if r.URL.Path == "/" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method != http.MethodGet && r.Method != http.MethodDelete {
				contentType := r.Header.Get("Content-Type")
				if !isJSONContentType(contentType) || r.ContentLength <= 0 {
					log.Warn("rejecting request with bad content type",
						"method", r.Method, "path", r.URL.Path, "content_type", contentType)
					writeMessage(w, log, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
					return
				}
			}

			if r.Header.Get(restclient.HeaderUserID) == "" {
				log.Warn("rejecting request without UserID header", "method", r.Method, "path", r.URL.Path)
				writeMessage(w, log, http.StatusBadRequest, jsonvalidate.MsgHeaderNG)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return mediaType == "application/json"
}
