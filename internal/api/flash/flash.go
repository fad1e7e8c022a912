// Package flash carries one-shot user messages across a redirect in a signed
// cookie. Messages are read and cleared by the next page render.
package flash

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	cookieName = "pickup_flash"
	cookieTTL  = 5 * time.Minute
	maxPending = 5
)

const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryInfo    = "info"
)

type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

var errInvalidCookie = errors.New("invalid flash cookie")

// Flasher reads and writes the flash cookie.
type Flasher struct {
	key    []byte
	secure bool
}

// New returns a Flasher signing with secret. An empty secret gets a random
// per-process key, so pending messages do not survive a restart.
func New(secret string, secure bool) *Flasher {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Flasher{key: key, secure: secure}
}

// Add queues a message for the next render, keeping any messages the request
// already carried.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, category, text string) {
	pending, _ := f.read(r)
	pending = append(pending, Message{Category: category, Text: text})
	if len(pending) > maxPending {
		pending = pending[len(pending)-maxPending:]
	}

	value, err := f.encode(pending)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cookieTTL.Seconds()),
	})
}

func (f *Flasher) Success(w http.ResponseWriter, r *http.Request, text string) {
	f.Add(w, r, CategorySuccess, text)
}

func (f *Flasher) Error(w http.ResponseWriter, r *http.Request, text string) {
	f.Add(w, r, CategoryError, text)
}

func (f *Flasher) Info(w http.ResponseWriter, r *http.Request, text string) {
	f.Add(w, r, CategoryInfo, text)
}

// Pop returns the pending messages and clears the cookie. Tampered cookies
// are dropped.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if _, err := r.Cookie(cookieName); err != nil {
		return nil
	}

	messages, _ := f.read(r)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return messages
}

func (f *Flasher) read(r *http.Request) ([]Message, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, err
	}

	encodedPayload, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return nil, errInvalidCookie
	}
	if !hmac.Equal([]byte(signature), []byte(f.sign(encodedPayload))) {
		return nil, errInvalidCookie
	}

	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (f *Flasher) encode(messages []Message) (string, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}
	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	return encodedPayload + "." + f.sign(encodedPayload), nil
}

func (f *Flasher) sign(payload string) string {
	mac := hmac.New(sha256.New, f.key)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
