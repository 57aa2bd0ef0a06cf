package server

import (
	"encoding/base64"
	"net/http"

	"github.com/biopaper/paperpush/internal/session"
)

// CookieStore is a session.Store over browser cookies.
// Reads come from the request; writes are emitted as Set-Cookie on header
// and are visible to later reads through the same store.
type CookieStore struct {
	req     *http.Request
	header  http.Header
	secure  bool
	pending map[string]*string
}

// NewCookieStore creates a store reading cookies from req and writing to header.
// A nil header makes the store read-only; writes are then dropped.
func NewCookieStore(req *http.Request, header http.Header, secure bool) *CookieStore {
	return &CookieStore{
		req:     req,
		header:  header,
		secure:  secure,
		pending: make(map[string]*string),
	}
}

func (s *CookieStore) Get(key string) (string, error) {
	if value, ok := s.pending[key]; ok {
		if value == nil {
			return "", session.ErrNotFound
		}
		return *value, nil
	}

	cookie, err := s.req.Cookie(key)
	if err != nil {
		return "", session.ErrNotFound
	}

	value, err := decodeCookieValue(cookie.Value)
	if err != nil {
		// Tampered or foreign cookie: treat as absent
		return "", session.ErrNotFound
	}
	return value, nil
}

func (s *CookieStore) Set(key, value string) error {
	s.pending[key] = &value
	s.write(&http.Cookie{
		Name:  key,
		Value: encodeCookieValue(value),
	})
	return nil
}

func (s *CookieStore) Delete(key string) error {
	s.pending[key] = nil
	s.write(&http.Cookie{
		Name:   key,
		MaxAge: -1,
	})
	return nil
}

func (s *CookieStore) write(cookie *http.Cookie) {
	if s.header == nil {
		return
	}
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = s.secure
	cookie.SameSite = http.SameSiteLaxMode
	s.header.Add("Set-Cookie", cookie.String())
}

// Cookie values may not carry quotes or commas, so JSON is base64url encoded
func encodeCookieValue(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

func decodeCookieValue(value string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
