package fcmrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anyproto/any-sync/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyproto/anytype-push-sender/domain"
	"github.com/anyproto/anytype-push-sender/sender"
)

var ctx = context.Background()

var testNotification = domain.Notification{
	DeviceToken: "D",
	Data:        map[string]string{"title": "Hi", "body": "Yo", "id": "1"},
}

func TestRestSender_SendMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/projects/p/messages:send", r.URL.Path)
			assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var env domain.Envelope
			require.NoError(t, json.Unmarshal(body, &env))
			assert.Equal(t, domain.NewEnvelope(testNotification), env)

			_, _ = w.Write([]byte(`{"name":"projects/p/messages/123"}`))
		})
		res, err := fx.Send(ctx, domain.AccessToken{Value: "T"}, testNotification)
		require.NoError(t, err)
		assert.Equal(t, "projects/p/messages/123", res.Name)
	})
	t.Run("no name", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})
		_, err := fx.Send(ctx, domain.AccessToken{Value: "T"}, testNotification)
		require.ErrorIs(t, err, domain.ErrApplicationDispatch)
		var dErr *domain.DispatchError
		require.ErrorAs(t, err, &dErr)
		assert.Equal(t, `{}`, dErr.Body)
	})
	t.Run("fcm error object", func(t *testing.T) {
		const errBody = `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(errBody))
		})
		_, err := fx.Send(ctx, domain.AccessToken{Value: "T"}, testNotification)
		require.ErrorIs(t, err, domain.ErrApplicationDispatch)
		var dErr *domain.DispatchError
		require.ErrorAs(t, err, &dErr)
		assert.Equal(t, http.StatusNotFound, dErr.StatusCode)
		assert.Equal(t, errBody, dErr.Body)
	})
	t.Run("invalid response", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`bad gateway`))
		})
		_, err := fx.Send(ctx, domain.AccessToken{Value: "T"}, testNotification)
		require.ErrorIs(t, err, domain.ErrInvalidResponse)
		assert.Contains(t, err.Error(), "bad gateway")
	})
	t.Run("transport", func(t *testing.T) {
		fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
		fx.server.Close()
		_, err := fx.Send(ctx, domain.AccessToken{Value: "T"}, testNotification)
		require.ErrorIs(t, err, domain.ErrDispatch)
	})
}

func TestRestSender_MessagesURL(t *testing.T) {
	s := newSender("https://fcm.googleapis.com/", http.DefaultClient).(*restSender)
	assert.Equal(t, "https://fcm.googleapis.com/v1/projects/my-project/messages:send", s.messagesURL("my-project"))
}

type fixture struct {
	sender.Sender
	server *httptest.Server
	a      *app.App
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	server := httptest.NewServer(handler)
	fx := &fixture{
		Sender: sender.New(),
		server: server,
		a:      new(app.App),
	}
	fx.a.Register(&testConfig{FCM: sender.Config{
		ProjectId: "p",
		Provider:  ProviderName,
		Endpoint:  server.URL,
	}}).
		Register(fx.Sender).
		Register(New())
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
		server.Close()
	})
	return fx
}

type testConfig struct {
	FCM sender.Config
}

func (c *testConfig) Init(a *app.App) (err error) {
	return
}

func (c *testConfig) Name() (name string) {
	return "config"
}

func (c *testConfig) GetFCM() sender.Config {
	return c.FCM
}
