package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// TokenName is the backend session cookie.
const TokenName = "token"

const flashName = "flash"

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
)

// Flash is a one-shot notice shown on the next page.
type Flash struct {
	Kind    string `json:"kind"` // "success" or "error"
	Message string `json:"message"`
}

// Manager reads and writes the cookies the web app owns. Backend cookies are
// relayed verbatim through session.ForwardSetCookies instead.
type Manager struct {
	secret   []byte
	path     string
	secure   bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager.
func New(opts ...Option) *Manager {
	m := &Manager{path: "/", sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the signing secret for flash cookies. Secrets shorter than
// 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithSecure marks cookies Secure.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// ValidSecret reports whether secret is long enough for WithSecret.
func ValidSecret(secret string) error {
	if len(secret) < 32 {
		return ErrBadSecret
	}
	return nil
}

// Get returns the value of the named cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Has reports whether the request carries a non-empty cookie name.
func (m *Manager) Has(r *http.Request, name string) bool {
	v, err := m.Get(r, name)
	return err == nil && v != ""
}

// Set writes an HttpOnly cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetFlash stores f for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, f Flash) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	m.Set(w, flashName, m.sign(data), 0)
	return nil
}

// PopFlash returns the pending flash and clears it. A missing flash yields
// ErrNotFound; a tampered one yields ErrBadSig and is cleared too.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) (Flash, error) {
	var f Flash
	if m.secret == nil {
		return f, ErrNoSecret
	}
	raw, err := m.Get(r, flashName)
	if err != nil {
		return f, err
	}
	m.Delete(w, flashName)

	data, err := m.verify(raw)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, errors.Join(ErrBadSig, err)
	}
	return f, nil
}

// sign encodes value as base64(value).base64(hmac).
func (m *Manager) sign(value []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	return base64.RawURLEncoding.EncodeToString(value) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(raw string) ([]byte, error) {
	encoded, encodedSig, ok := strings.Cut(raw, ".")
	if !ok {
		return nil, ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return nil, ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrBadSig
	}
	return value, nil
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}
