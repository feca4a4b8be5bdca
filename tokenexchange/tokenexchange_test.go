package tokenexchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyproto/anytype-push-sender/domain"
)

var ctx = context.Background()

var testAssertion = domain.Assertion{Header: "aGVhZGVy", Claims: "Y2xhaW1z", Signature: "c2ln"}

func TestExchanger_Exchange(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, GrantTypeJWTBearer, r.PostForm.Get("grant_type"))
			assert.Equal(t, "aGVhZGVy.Y2xhaW1z.c2ln", r.PostForm.Get("assertion"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"T","token_type":"Bearer","expires_in":3599}`))
		})
		token, err := fx.Exchange(ctx, testAssertion)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessToken{Value: "T", TokenType: "Bearer", ExpiresIn: 3599}, token)
	})
	t.Run("invalid grant", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"invalid_grant"}`))
		})
		_, err := fx.Exchange(ctx, testAssertion)
		require.ErrorIs(t, err, domain.ErrTokenExchange)
		require.ErrorIs(t, err, ErrUnexpectedStatus)
		var exErr *ExchangeError
		require.ErrorAs(t, err, &exErr)
		assert.Equal(t, http.StatusBadRequest, exErr.StatusCode)
		assert.Equal(t, "invalid_grant", exErr.Detail)
	})
	t.Run("error without description", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized_client"}`))
		})
		_, err := fx.Exchange(ctx, testAssertion)
		var exErr *ExchangeError
		require.ErrorAs(t, err, &exErr)
		assert.Equal(t, "unauthorized_client", exErr.Detail)
	})
	t.Run("non json error body", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		})
		_, err := fx.Exchange(ctx, testAssertion)
		require.ErrorIs(t, err, ErrUnexpectedStatus)
		var exErr *ExchangeError
		require.ErrorAs(t, err, &exErr)
		assert.Equal(t, "upstream down", exErr.Detail)
		assert.Contains(t, err.Error(), "status 502")
	})
	t.Run("invalid json", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := fx.Exchange(ctx, testAssertion)
		require.ErrorIs(t, err, domain.ErrTokenExchange)
		require.ErrorIs(t, err, ErrDecode)
		assert.Contains(t, err.Error(), "<html>")
	})
	t.Run("no access token", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
		})
		_, err := fx.Exchange(ctx, testAssertion)
		require.ErrorIs(t, err, domain.ErrTokenExchange)
		require.ErrorIs(t, err, ErrNoAccessToken)
		assert.Contains(t, err.Error(), `{"token_type":"Bearer"}`)
	})
	t.Run("transport", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
		fx.server.Close()
		_, err := fx.Exchange(ctx, testAssertion)
		require.ErrorIs(t, err, domain.ErrTokenExchange)
		require.ErrorIs(t, err, ErrTransport)
	})
	t.Run("canceled", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		})
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := fx.Exchange(cctx, testAssertion)
		require.ErrorIs(t, err, ErrTransport)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type fixture struct {
	Exchanger
	server *httptest.Server
	a      *app.App
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	server := httptest.NewServer(handler)
	fx := &fixture{
		Exchanger: New(),
		server:    server,
		a:         new(app.App),
	}
	fx.a.Register(&testConfig{OAuth: Config{TokenEndpoint: server.URL + "/token", TimeoutSec: 5}}).Register(fx.Exchanger)
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
		server.Close()
	})
	return fx
}

type testConfig struct {
	OAuth Config
}

func (c *testConfig) Init(a *app.App) (err error) {
	return
}

func (c *testConfig) Name() (name string) {
	return "config"
}

func (c *testConfig) GetOAuth() Config {
	return c.OAuth
}
