package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
)

const (
	SchemeSHA512 = "sha512"
	SchemeSHA256 = "sha256"
	SchemeMD5    = "md5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLocked         = errors.New("user is locked")
	ErrUnsupportedHash    = errors.New("unsupported password hash")
	ErrUnknownScheme      = errors.New("unknown hash scheme")
)

// Hasher turns a plaintext password into a crypt(3) string suitable for
// useradd -p.
type Hasher interface {
	Hash(password string) (string, error)
}

type crypterHasher struct {
	c crypt.Crypter
}

// NewHasher returns the hasher for scheme (sha512, sha256 or md5). A fresh
// random salt is drawn for every hash.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeSHA512:
		return crypterHasher{c: sha512_crypt.New()}, nil
	case SchemeSHA256:
		return crypterHasher{c: sha256_crypt.New()}, nil
	case SchemeMD5:
		return crypterHasher{c: md5_crypt.New()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

func (h crypterHasher) Hash(password string) (string, error) {
	return h.c.Generate([]byte(password), nil)
}

// Locked reports whether a shadow hash field disables password login.
func Locked(hash string) bool {
	return hash == "" || strings.HasPrefix(hash, "!") || strings.HasPrefix(hash, "*")
}

// crypters maps the crypt(3) id of a hash to the algorithm that checks it.
var crypters = map[string]func() crypt.Crypter{
	"$6$": sha512_crypt.New,
	"$5$": sha256_crypt.New,
	"$1$": md5_crypt.New,
}

func hashID(hash string) string {
	if !strings.HasPrefix(hash, "$") {
		return ""
	}
	end := strings.IndexByte(hash[1:], '$')
	if end < 0 {
		return ""
	}
	return hash[:end+2]
}

// VerifyHash checks password against a crypt(3) hash. Hashes other than
// sha512, sha256 and md5-crypt (yescrypt "$y$", bcrypt "$2b$", DES) yield
// ErrUnsupportedHash.
func VerifyHash(hash, password string) (bool, error) {
	id := hashID(hash)
	newCrypter, ok := crypters[id]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedHash, id)
	}
	err := newCrypter().Verify(hash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, crypt.ErrKeyMismatch):
		return false, nil
	default:
		return false, fmt.Errorf("malformed %s hash: %w", id, err)
	}
}

// Verifier checks a user's password against their shadow hash, falling back
// to su for hash formats VerifyHash does not know.
type Verifier struct {
	// Su is called for unsupported hashes; nil disables the fallback.
	Su func(username, password string) (bool, error)
}

func (v Verifier) Verify(username, hash, password string) error {
	if Locked(hash) {
		return ErrUserLocked
	}
	ok, err := VerifyHash(hash, password)
	if errors.Is(err, ErrUnsupportedHash) && v.Su != nil {
		ok, err = v.Su(username, password)
	}
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

func HumanAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrUserLocked):
		return "This account is locked."
	case errors.Is(err, ErrUnsupportedHash):
		return "This host uses an uncommon password hash format and system authentication is unavailable."
	default:
		return fmt.Sprintf("Authentication failed: %v", err)
	}
}
