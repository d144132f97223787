package middleware

import (
	"crypto/subtle"
	"net/http"
)

// SecretHeader заголовок, в котором Telegram возвращает секрет,
// заданный при регистрации вебхука
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecretToken отклоняет запросы без правильного секрета вебхука.
// Пустой секрет отключает проверку.
func SecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := r.Header.Get(SecretHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
