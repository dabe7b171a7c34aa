package session

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// Session is a freshly issued token pair
type Session struct {
	AccessToken     string
	RefreshToken    string
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

// Cookies renders the pair as the two session cookies
func (s *Session) Cookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		newCookie(AccessCookieName, s.AccessToken, int(s.AccessLifetime.Seconds()), secure),
		newCookie(RefreshCookieName, s.RefreshToken, int(s.RefreshLifetime.Seconds()), secure),
	}
}

// ClearCookies returns cookies that expire both session cookies in the browser
func ClearCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		newCookie(AccessCookieName, "", -1, secure),
		newCookie(RefreshCookieName, "", -1, secure),
	}
}

// SetCookies writes cookies to the response
func SetCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

func newCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	}
}
