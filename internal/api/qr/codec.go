// Package qr implements the signed job-card token carried inside the
// printed QR code: base64url( "{id}|{issuedAt}" . HMAC-SHA256(secret, payload) ).
package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

const separator = '.'

var (
	// ErrMalformedToken is returned when a token cannot be decoded or parsed
	ErrMalformedToken = errors.New("malformed token")

	// ErrBadSignature is returned when the embedded MAC does not match
	ErrBadSignature = errors.New("bad token signature")
)

// Claims is the verified content of a job-card token.
type Claims struct {
	JobCardID int64
	IssuedAt  string
}

// Codec issues and verifies job-card tokens. It is stateless apart from
// the process-wide secret and safe for concurrent use.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue builds a token binding jobCardID and issuedAt. Deterministic for a
// fixed secret: Verify(Issue(id, t)) always yields id back.
func (c *Codec) Issue(jobCardID int64, issuedAt time.Time) string {
	payload := strconv.FormatInt(jobCardID, 10) + "|" + issuedAt.UTC().Format(time.RFC3339)

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))

	raw := make([]byte, 0, len(payload)+1+sha256.Size)
	raw = append(raw, payload...)
	raw = append(raw, separator)
	raw = mac.Sum(raw)

	return base64.URLEncoding.EncodeToString(raw)
}

// IssueNow issues a token stamped with the current time.
func (c *Codec) IssueNow(jobCardID int64) string {
	return c.Issue(jobCardID, time.Now())
}

// Verify decodes and authenticates a token. All decode/parse failures
// surface as ErrMalformedToken and a MAC mismatch as ErrBadSignature;
// callers are expected to collapse both into one "invalid token" outcome.
//
// The MAC is a fixed 32 bytes, so the separator position is anchored at
// len-33 rather than found by scanning. A scan for the last separator byte
// would misparse any token whose MAC happens to contain 0x2E.
func (c *Codec) Verify(token string) (*Claims, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformedToken
	}

	sep := len(raw) - sha256.Size - 1
	if sep < 1 || raw[sep] != separator {
		return nil, ErrMalformedToken
	}
	payload, sig := raw[:sep], raw[sep+1:]

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	// hmac.Equal is constant time; no partial trust on mismatch.
	if !hmac.Equal(expected, sig) {
		return nil, ErrBadSignature
	}

	idStr, issuedAt, ok := strings.Cut(string(payload), "|")
	if !ok {
		return nil, ErrMalformedToken
	}

	jobCardID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}

	return &Claims{JobCardID: jobCardID, IssuedAt: issuedAt}, nil
}

// Invalid reports whether err is one of the codec's reject outcomes.
func Invalid(err error) bool {
	return errors.Is(err, ErrMalformedToken) || errors.Is(err, ErrBadSignature)
}
