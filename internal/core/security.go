// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

var ErrMalformedHash = errors.New("malformed password hash")

// argonParams is the cost tuple stored in the PHC string next to the salt.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, key []byte) string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		enc.EncodeToString(salt), enc.EncodeToString(key))
}

// parseArgon2id splits "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func parseArgon2id(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return p, nil, nil, ErrMalformedHash
	}
	if fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: algorithm %q", ErrMalformedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: version %q", ErrMalformedHash, fields[2])
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}
	//nolint:gosec // G115: argon2id keys are a few dozen bytes
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentParams.encode(salt, currentParams.key(password, salt)), nil
}

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

func isBcrypt(encoded string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

// VerifyPassword accepts argon2id hashes and the bcrypt hashes written by
// the previous user store.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		switch err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("compare bcrypt hash: %w", err)
		}
	}

	params, salt, want, err := parseArgon2id(encodedHash)
	if err != nil {
		return false, err
	}
	got := params.key(password, salt)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// VerifyPasswordWithRehash also hands back a fresh hash when the stored one
// is bcrypt or was made with other argon2id costs. An empty string means
// keep what is stored.
func VerifyPasswordWithRehash(password, encodedHash string) (bool, string, error) {
	ok, err := VerifyPassword(password, encodedHash)
	if err != nil || !ok {
		return false, "", err
	}

	if !isStale(encodedHash) {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; the upgrade is retried on next login
		return true, "", nil
	}
	return true, upgraded, nil
}

func isStale(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}
	params, _, _, err := parseArgon2id(encodedHash)
	return err != nil || params != currentParams
}

var decoyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("decoy-password-for-unknown-accounts")
	if err != nil {
		panic(fmt.Sprintf("security: build decoy hash: %v", err))
	}
	return hash
})

// VerifyPasswordTimingSafe does the same argon2id work for unknown accounts
// (nil or empty hash) as for real ones, then reports failure.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _ = VerifyPassword(password, decoyHash()) //nolint:errcheck // result discarded
		return false, "", nil
	}
	return VerifyPasswordWithRehash(password, *encodedHash)
}

// HashToken is how refresh tokens are stored, so a leaked table holds no
// usable bearer values.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
