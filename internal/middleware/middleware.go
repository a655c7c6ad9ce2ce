// Package middleware holds the echo middleware of the session API.
package middleware

type contextKey string
