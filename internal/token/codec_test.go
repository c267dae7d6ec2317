package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/WidodoTrh/api-exordium/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := token.NewCodec("test-secret")

	tests := []struct {
		name string
		kind token.Kind
	}{
		{name: "access token", kind: token.KindAccess},
		{name: "refresh token", kind: token.KindRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := codec.Issue(tt.kind, "user-123", "session-456", time.Minute)
			require.NoError(t, err)

			claims, err := codec.Verify(raw, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.Subject)
			assert.Equal(t, "session-456", claims.SessionID)
			assert.Equal(t, tt.kind, claims.Kind())
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestCodec_UniqueTokenIDs(t *testing.T) {
	codec := token.NewCodec("test-secret")

	first, err := codec.Issue(token.KindAccess, "user-123", "session-456", time.Minute)
	require.NoError(t, err)
	second, err := codec.Issue(token.KindAccess, "user-123", "session-456", time.Minute)
	require.NoError(t, err)

	a, err := codec.Verify(first, token.KindAccess)
	require.NoError(t, err)
	b, err := codec.Verify(second, token.KindAccess)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCodec_Expired(t *testing.T) {
	codec := token.NewCodec("test-secret")

	raw, err := codec.Issue(token.KindAccess, "user-123", "session-456", -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(raw, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestCodec_KindMismatch(t *testing.T) {
	codec := token.NewCodec("test-secret")

	refresh, err := codec.Issue(token.KindRefresh, "user-123", "session-456", time.Minute)
	require.NoError(t, err)
	access, err := codec.Issue(token.KindAccess, "user-123", "session-456", time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(refresh, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrWrongKind)

	_, err = codec.Verify(access, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrWrongKind)
}

func TestCodec_Tampered(t *testing.T) {
	codec := token.NewCodec("test-secret")

	raw, err := codec.Issue(token.KindAccess, "user-123", "session-456", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "flipped signature byte", raw: flipLastChar(raw)},
		{name: "flipped payload byte", raw: flipPayloadChar(raw)},
		{name: "truncated", raw: raw[:len(raw)/2]},
		{name: "garbage", raw: "not.a.token"},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.raw, token.KindAccess)
			assert.ErrorIs(t, err, token.ErrMalformed)
		})
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	raw, err := token.NewCodec("secret-a").Issue(token.KindAccess, "user-123", "session-456", time.Minute)
	require.NoError(t, err)

	_, err = token.NewCodec("secret-b").Verify(raw, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrMalformed)
}

func flipLastChar(s string) string {
	last := s[len(s)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return s[:len(s)-1] + string(replacement)
}

func flipPayloadChar(s string) string {
	parts := strings.Split(s, ".")
	payload := parts[1]
	first := byte('A')
	if payload[0] == 'A' {
		first = 'B'
	}
	return parts[0] + "." + string(first) + payload[1:] + "." + parts[2]
}
