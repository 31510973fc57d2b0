// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in members in Valkey. The browser only
// holds an opaque id in the ts_session cookie; the member record lives
// under session:<id> as JSON and expires after DefaultTTL. Flash messages
// travel in their own cookie so anonymous visitors receive them too.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "ts_session"

	// DefaultTTL matches the two-week login lifetime of the site.
	DefaultTTL = 14 * 24 * time.Hour
)

// ErrNoSession is returned by Update when the request carries no session
// cookie.
var ErrNoSession = errors.New("no session cookie")

// Data holds the session payload stored in Valkey: the signed-in member
// and, for staff, whether the 2FA step has been completed. IsStaff is
// copied at login, so a change of staff access applies from the next one.
type Data struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsStaff   bool      `json:"is_staff"`
	TwoFADone bool      `json:"two_fa_done"`
	CreatedAt time.Time `json:"created_at"`
}

// Store issues session and flash cookies and keeps session data in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure sets the Secure attribute on every cookie the store writes.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// cookie builds a site-wide HttpOnly cookie. A negative maxAge deletes it
// and zero makes it last for the browser session.
func (s *Store) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func key(id string) string { return "session:" + id }

// save writes data under id and restarts its TTL.
func (s *Store) save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, key(id), payload, s.ttl).Err()
}

// Create starts a session for data under a fresh random id and sets the
// session cookie. data.CreatedAt is stamped here.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) error {
	id := rand.Text()
	data.CreatedAt = time.Now()
	if err := s.save(ctx, id, data); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, s.cookie(CookieName, id, int(s.ttl.Seconds())))
	return nil
}

// Get loads the session named by the request cookie. No cookie, or an id
// Valkey no longer knows, is not an error and yields nil.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, key(c.Value)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Update rewrites the current session in place. The id and cookie are
// kept and the TTL starts over.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ErrNoSession
	}
	if err := s.save(ctx, c.Value, data); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Destroy signs the request out. The cookie is expired even when Valkey
// cannot be reached, and that error is returned for the caller to log.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, s.cookie(CookieName, "", -1))
	if err := s.client.Del(ctx, key(c.Value)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
