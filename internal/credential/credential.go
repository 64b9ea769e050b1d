// Package credential models the stored representation of a user password and
// its verification. A stored credential is either a tagged PBKDF2 hash
// (pbkdf2:sha256:<iterations>$<salt>$<hex digest>) or, transitionally, a
// legacy plaintext value compared by exact equality. The hashed encoding is
// deliberately compatible with credentials written by earlier deployments of
// this system.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	schemePrefix      = "pbkdf2:"
	defaultMethod     = "pbkdf2:sha256"
	defaultIterations = 600000
	saltLength        = 16
	digestLength      = sha256.Size
)

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Kind distinguishes the two stored-credential variants.
type Kind string

const (
	KindHashed    Kind = "hashed"
	KindPlaintext Kind = "plaintext"
)

// Credential is a parsed stored credential able to verify a candidate password.
type Credential interface {
	Kind() Kind
	Verify(candidate string) bool
}

// Parse classifies a stored credential string. An empty string yields nil:
// there is nothing to verify against.
func Parse(stored string) Credential {
	if stored == "" {
		return nil
	}
	if IsHashed(stored) {
		return Hashed{encoded: stored}
	}
	return Plaintext{value: stored}
}

// IsHashed reports whether the stored string carries the hash-scheme tag.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, schemePrefix)
}

// Hashed is a PBKDF2-HMAC-SHA256 credential with embedded parameters and salt.
type Hashed struct {
	encoded string
}

// Kind returns KindHashed.
func (Hashed) Kind() Kind { return KindHashed }

// Verify recomputes the digest of the candidate using the embedded iteration
// count and salt and compares it in constant time. A malformed encoding never
// matches; it is treated as "no match", not an error.
func (h Hashed) Verify(candidate string) bool {
	method, salt, digestHex, ok := splitEncoded(h.encoded)
	if !ok {
		return false
	}
	iterations, ok := parseMethod(method)
	if !ok {
		return false
	}
	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(candidate), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// String returns the encoded form.
func (h Hashed) String() string { return h.encoded }

// Plaintext is a legacy credential predating hashed storage. Comparison is
// exact (case-sensitive, no trimming) but performed in constant time.
type Plaintext struct {
	value string
}

// Kind returns KindPlaintext.
func (Plaintext) Kind() Kind { return KindPlaintext }

// Verify compares the candidate against the stored value.
func (p Plaintext) Verify(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(p.value), []byte(candidate)) == 1
}

// Hash derives a fresh salted credential string for the password. Two calls
// with the same password produce different encodings; both verify.
func Hash(password string) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), defaultIterations, digestLength, sha256.New)
	return fmt.Sprintf("%s:%d$%s$%x", defaultMethod, defaultIterations, salt, key), nil
}

// splitEncoded breaks "method$salt$digest" into its parts.
func splitEncoded(encoded string) (method, salt, digest string, ok bool) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// parseMethod accepts "pbkdf2:sha256" and "pbkdf2:sha256:<iterations>".
// Other digests are not in use by this system.
func parseMethod(method string) (iterations int, ok bool) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || fields[0] != "pbkdf2" || fields[1] != "sha256" {
		return 0, false
	}
	switch len(fields) {
	case 2:
		return defaultIterations, true
	case 3:
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func randomSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf), nil
}
