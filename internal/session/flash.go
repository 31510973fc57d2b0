// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName holds one-shot messages shown on the next page render.
const FlashCookieName = "ts_flash"

// Flash levels, used as CSS classes in templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash is a message carried across a redirect.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AddFlash queues a message for the next request. Flashes live in a
// cookie so anonymous visitors get them without a Valkey session.
func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	flashes := append(readFlashes(r), Flash{Level: level, Message: message})
	s.writeFlashes(w, flashes)
}

// PopFlashes returns queued messages and clears the cookie.
func (s *Store) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, s.cookie(FlashCookieName, "", -1))
	}
	return flashes
}

func (s *Store) writeFlashes(w http.ResponseWriter, flashes []Flash) {
	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, s.cookie(FlashCookieName, base64.RawURLEncoding.EncodeToString(payload), 0))
}

func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
