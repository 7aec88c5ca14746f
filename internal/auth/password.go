package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

var errMalformedHash = errors.New("malformed password hash")

// Hash returns a salted bcrypt hash of password. bcrypt reads at most 72
// bytes, so it is fed a SHA-256 digest of the password instead.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches hash. Besides our own bcrypt
// hashes it accepts the Werkzeug pbkdf2/scrypt formats of imported users.
// A malformed hash never matches.
func Verify(hash, password string) bool {
	switch {
	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
	case strings.HasPrefix(hash, "pbkdf2:"), strings.HasPrefix(hash, "scrypt:"):
		ok, err := verifyWerkzeug(hash, password)
		return err == nil && ok
	}
	return false
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// ----------------------------
// Werkzeug: "method$salt$hexdigest"
// ----------------------------

func verifyWerkzeug(stored, password string) (bool, error) {
	method, rest, ok := strings.Cut(stored, "$")
	if !ok {
		return false, errMalformedHash
	}
	salt, digest, ok := strings.Cut(rest, "$")
	if !ok {
		return false, errMalformedHash
	}
	want, err := hex.DecodeString(digest)
	if err != nil || len(want) == 0 {
		return false, errMalformedHash
	}
	got, err := werkzeugDerive(method, salt, password, len(want))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func werkzeugDerive(method, salt, password string, keyLen int) ([]byte, error) {
	parts := strings.Split(method, ":")
	switch parts[0] {
	case "pbkdf2":
		// pbkdf2:<hash>[:iterations]
		if len(parts) < 2 || len(parts) > 3 {
			return nil, errMalformedHash
		}
		var h func() hash.Hash
		switch parts[1] {
		case "sha256":
			h = sha256.New
		case "sha512":
			h = sha512.New
		case "sha1":
			h = sha1.New
		default:
			return nil, errMalformedHash
		}
		iter := 600000
		if len(parts) == 3 {
			n, err := strconv.Atoi(parts[2])
			if err != nil || n <= 0 {
				return nil, errMalformedHash
			}
			iter = n
		}
		return pbkdf2.Key([]byte(password), []byte(salt), iter, keyLen, h), nil

	case "scrypt":
		// scrypt:<N>:<r>:<p>
		n, r, p := 32768, 8, 1
		if len(parts) == 4 {
			vals := make([]int, 3)
			for i, s := range parts[1:] {
				v, err := strconv.Atoi(s)
				if err != nil || v <= 0 {
					return nil, errMalformedHash
				}
				vals[i] = v
			}
			n, r, p = vals[0], vals[1], vals[2]
		} else if len(parts) != 1 {
			return nil, errMalformedHash
		}
		return scrypt.Key([]byte(password), []byte(salt), n, r, p, keyLen)
	}
	return nil, errMalformedHash
}
