// AngelaMos | 2026
// jwt.go

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/invoice-manager/internal/config"
	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type JWTManager struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	publicJWKS jwk.Set
	config     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	privateKey, err := jwk.ParseKey(privateKeyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if setErr := privateKey.Set(jwk.AlgorithmKey, jwa.ES256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	keyID := uuid.New().String()[:8]
	if setErr := privateKey.Set(jwk.KeyIDKey, keyID); setErr != nil {
		return nil, fmt.Errorf("set key id: %w", setErr)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	if setErr := publicKey.Set(jwk.KeyUsageKey, "sig"); setErr != nil {
		return nil, fmt.Errorf("set key usage: %w", setErr)
	}

	publicJWKS := jwk.NewSet()
	if addErr := publicJWKS.AddKey(publicKey); addErr != nil {
		return nil, fmt.Errorf("add key to set: %w", addErr)
	}

	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		publicJWKS: publicJWKS,
		config:     cfg,
	}, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	jwkPrivate, err := jwk.Import(privateKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	privatePEM, err := jwk.Pem(jwkPrivate)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	if writeErr := os.WriteFile(privateKeyPath, privatePEM, 0o600); writeErr != nil {
		return fmt.Errorf("write private key: %w", writeErr)
	}

	jwkPublic, err := jwkPrivate.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	publicPEM, err := jwk.Pem(jwkPublic)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	//nolint:gosec // G306: public key is intentionally world-readable
	if writeErr := os.WriteFile(publicKeyPath, publicPEM, 0o644); writeErr != nil {
		return fmt.Errorf("write public key: %w", writeErr)
	}

	return nil
}

type AccessTokenClaims struct {
	UserID string
	Email  string
	Role   string
}

// IssuedToken is a signed token plus the registered claims callers need to
// track it.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func (m *JWTManager) CreateAccessToken(
	claims AccessTokenClaims,
) (*IssuedToken, error) {
	now := time.Now()
	jti := uuid.New().String()
	expiresAt := now.Add(m.config.AccessTokenExpire)

	token, err := jwt.NewBuilder().
		JwtID(jti).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Claim("email", claims.Email).
		Claim("role", claims.Role).
		Claim("type", tokenTypeAccess).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := m.sign(token)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{Token: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// ParseAccessToken checks signature, registered claims and the token type.
// It does not consult the deny list; Service.VerifyAccessToken does.
func (m *JWTManager) ParseAccessToken(
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := m.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var email string
	if err := token.Get("email", &email); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var role string
	if err := token.Get("role", &role); err != nil || role == "" {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	jti, _ := token.JwtID()
	exp, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		UserID:    subject,
		Email:     email,
		Role:      role,
		TokenID:   jti,
		ExpiresAt: exp.Unix(),
	}, nil
}

type RefreshTokenData struct {
	Token     string
	ID        string
	Hash      string
	ExpiresAt time.Time
	FamilyID  string
}

// CreateRefreshToken signs a refresh token whose jti is the id of the
// refresh_tokens row that will track it.
func (m *JWTManager) CreateRefreshToken(
	userID, tokenID, familyID string,
) (*RefreshTokenData, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.RefreshTokenExpire)

	if tokenID == "" {
		tokenID = uuid.New().String()
	}
	if familyID == "" {
		familyID = uuid.New().String()
	}

	token, err := jwt.NewBuilder().
		JwtID(tokenID).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(userID).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Claim("fam", familyID).
		Claim("type", tokenTypeRefresh).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build refresh token: %w", err)
	}

	signed, err := m.sign(token)
	if err != nil {
		return nil, err
	}

	return &RefreshTokenData{
		Token:     signed,
		ID:        tokenID,
		Hash:      core.HashToken(signed),
		ExpiresAt: expiresAt,
		FamilyID:  familyID,
	}, nil
}

type RefreshClaims struct {
	UserID   string
	TokenID  string
	FamilyID string
}

func (m *JWTManager) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := m.parse(tokenString, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	subject, _ := token.Subject()
	jti, _ := token.JwtID()
	if subject == "" || jti == "" {
		return nil, fmt.Errorf(
			"verify refresh token: missing sub or jti: %w",
			core.ErrTokenInvalid,
		)
	}

	var familyID string
	//nolint:errcheck // family is advisory; the stored row is authoritative
	_ = token.Get("fam", &familyID)

	return &RefreshClaims{
		UserID:   subject,
		TokenID:  jti,
		FamilyID: familyID,
	}, nil
}

func (m *JWTManager) sign(token jwt.Token) (string, error) {
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

func (m *JWTManager) parse(tokenString, wantType string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.ES256(), m.publicKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != wantType {
		return nil, fmt.Errorf(
			"verify token: expected %s token: %w",
			wantType,
			core.ErrTokenInvalid,
		)
	}

	return token, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

func (m *JWTManager) GetJWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if err := json.NewEncoder(w).Encode(m.publicJWKS); err != nil {
			http.Error(
				w,
				"Internal Server Error",
				http.StatusInternalServerError,
			)
			return
		}
	}
}

func (m *JWTManager) GetKeyID() string {
	var kid string
	//nolint:errcheck // key ID always set during NewJWTManager init
	_ = m.privateKey.Get(jwk.KeyIDKey, &kid)
	return kid
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.config.AccessTokenExpire
}

func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.config.RefreshTokenExpire
}
