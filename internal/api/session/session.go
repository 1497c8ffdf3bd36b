// Package session wraps the signed login cookie. The cookie carries only the
// logged-in e-mail address; everything else is looked up per request.
package session

import (
	"crypto/rand"
	"net/http"
	"sync"

	"github.com/gorilla/sessions"
)

// CookieName is the session cookie key shared with existing deployments.
const CookieName = "ofdb-user"

const emailKey = "email"

var (
	storeInstance *sessions.CookieStore
	storeOnce     sync.Once
)

// InitStore initializes the global cookie store singleton. Must be called
// once at startup before any handler runs. An empty secret gets replaced by
// a random one, which invalidates all sessions on restart.
func InitStore(secret string) {
	storeOnce.Do(func() {
		key := []byte(secret)
		if len(key) == 0 {
			key = make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				panic(err) // the system random source is broken
			}
		}
		storeInstance = sessions.NewCookieStore(key)
		storeInstance.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   7 * 24 * 60 * 60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
	})
}

// Store returns the global cookie store singleton. Panics when InitStore has
// not been called.
func Store() *sessions.CookieStore {
	if storeInstance == nil {
		panic("session store not initialized - call InitStore first")
	}
	return storeInstance
}

// SetLogin binds the session cookie to the given e-mail address.
func SetLogin(w http.ResponseWriter, r *http.Request, email string) error {
	s, _ := Store().Get(r, CookieName)
	s.Values[emailKey] = email
	return s.Save(r, w)
}

// ClearLogin drops the login from the session cookie.
func ClearLogin(w http.ResponseWriter, r *http.Request) error {
	s, _ := Store().Get(r, CookieName)
	delete(s.Values, emailKey)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

// CurrentEmail returns the logged-in e-mail address, empty when the request
// carries no valid session or the store is not initialized.
func CurrentEmail(r *http.Request) string {
	if storeInstance == nil {
		return ""
	}
	s, err := storeInstance.Get(r, CookieName)
	if err != nil {
		return ""
	}
	email, _ := s.Values[emailKey].(string)
	return email
}
