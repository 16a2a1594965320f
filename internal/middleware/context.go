// AngelaMos | 2026
// context.go

package middleware

type contextKey int

const (
	requestIDKey contextKey = iota
	claimsKey
)
