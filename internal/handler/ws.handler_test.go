package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.pilotonotary.cl/", "http://localhost:3000"})

	cases := map[string]bool{
		"":                             true,
		"https://app.pilotonotary.cl":  true,
		"HTTPS://APP.PILOTONOTARY.CL":  true,
		"http://localhost:3000":        true,
		"https://evil.example":         false,
		"https://app.pilotonotary.cl.": false,
		"http://localhost:3001":        false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest("GET", "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, check(r), origin)
	}
}

func TestOriginCheckerWildcard(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anywhere.example")

	assert.True(t, originChecker([]string{"*"})(r))
	assert.False(t, originChecker(nil)(r))
}
