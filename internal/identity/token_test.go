package identity_test

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opsboard/opsboard-go/internal/identity"
)

func testToken(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testToken(t, fmt.Sprintf(`{"sub":"admin","exp":%d}`, exp.Unix()))

	got, ok := identity.TokenExpiry(token)
	assert.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
}

func TestTokenExpiryMissingClaim(t *testing.T) {
	token := testToken(t, `{"sub":"admin"}`)

	_, ok := identity.TokenExpiry(token)
	assert.False(t, ok)
}

func TestTokenValid(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", testToken(t, fmt.Sprintf(`{"exp":%d}`, now.Add(time.Hour).Unix())), true},
		{"past exp", testToken(t, fmt.Sprintf(`{"exp":%d}`, now.Add(-time.Hour).Unix())), false},
		{"missing exp", testToken(t, `{"sub":"admin"}`), false},
		{"empty token", "", false},
		{"not a jwt", "garbage", false},
		{"bad payload segment", "aGVhZGVy.!!!.sig", false},
		{"payload not json", testToken(t, `not-json`), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, identity.TokenValid(tc.token, now))
		})
	}
}
