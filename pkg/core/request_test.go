package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(http.MethodGet, Version1, EndpointPing)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "1", req.Version)
	assert.Equal(t, "ping", req.Path)
	assert.Equal(t, AuthNone, req.Auth)
	assert.Equal(t, 1, req.Weight)
	require.NotNil(t, req.Query)
	assert.Equal(t, 0, req.Query.Len())
}

func TestRequest_Chaining(t *testing.T) {
	req := NewRequest(http.MethodPost, Version3, EndpointOrder).
		SetAuth(AuthSigned).
		SetWeight(1).
		SetQuery("symbol", "BTCUSDT").
		SetQuery("side", SideBuy)

	assert.Equal(t, AuthSigned, req.Auth)
	assert.Equal(t, "symbol=BTCUSDT&side=BUY", req.Query.Encode())
}

func TestRequest_SetQueryOnNilParams(t *testing.T) {
	req := &Request{Method: http.MethodGet, Version: Version1, Path: EndpointTime}
	req.SetQuery("a", 1)

	require.NotNil(t, req.Query)
	assert.Equal(t, "a=1", req.Query.Encode())
}

func TestAuthLevel_String(t *testing.T) {
	assert.Equal(t, "none", AuthNone.String())
	assert.Equal(t, "api-key", AuthAPIKey.String())
	assert.Equal(t, "signed", AuthSigned.String())
}
