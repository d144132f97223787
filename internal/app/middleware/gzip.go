package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// GzipRequest распаковывает входящее тело запроса, сжатое gzip.
// Ответы вебхука — крошечные подтверждения, их сжатие не нужно.
func GzipRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gz, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Invalid gzip body", http.StatusBadRequest)
				return
			}
			defer gz.Close()
			r.Body = gz
			r.Header.Del("Content-Encoding")
		}

		next.ServeHTTP(w, r)
	})
}
