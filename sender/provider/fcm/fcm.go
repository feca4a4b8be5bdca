package fcm

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/anyproto/anytype-push-sender/domain"
	"github.com/anyproto/anytype-push-sender/sender"
)

const CName = "push.provider.fcm"

const ProviderName = "sdk"

var log = logger.NewNamed(CName)

type configSource interface {
	GetFCM() sender.Config
}

func New() FCM {
	return new(fcm)
}

type FCM interface {
	app.Component
}

type fcm struct {
}

func (f *fcm) Init(a *app.App) (err error) {
	s := a.MustComponent(sender.CName).(sender.Sender)
	conf := a.MustComponent("config").(configSource).GetFCM().WithDefaults()

	base := http.DefaultTransport
	if conf.Endpoint != sender.DefaultEndpoint {
		if base, err = newEndpointTransport(conf.Endpoint, base); err != nil {
			return err
		}
	}
	s.RegisterProvider(ProviderName, &fcmSender{base: base, conf: conf})
	return
}

func (f *fcm) Name() (name string) {
	return CName
}

type fcmSender struct {
	base http.RoundTripper
	conf sender.Config
}

// newClient builds a messaging client bound to a single access token.
func (f *fcmSender) newClient(ctx context.Context, token domain.AccessToken, projectId string) (*messaging.Client, error) {
	hc := &http.Client{
		Timeout: f.conf.Timeout(),
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value, TokenType: "Bearer"}),
			Base:   f.base,
		},
	}
	fcmApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectId}, option.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}
	return fcmApp.Messaging(ctx)
}

func (f *fcmSender) SendMessage(ctx context.Context, token domain.AccessToken, projectId string, n domain.Notification) (res domain.Result, err error) {
	client, err := f.newClient(ctx, token, projectId)
	if err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, Err: err}
	}
	name, err := client.Send(ctx, buildFcmMessage(n))
	if err != nil {
		if resp := errorutils.HTTPResponse(err); resp != nil {
			log.Warn("fcm returned error", zap.Int("status", resp.StatusCode), zap.Error(err))
			return res, &domain.DispatchError{Kind: domain.ErrApplicationDispatch, StatusCode: resp.StatusCode, Err: err}
		}
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, Err: err}
	}
	if name == "" {
		return res, &domain.DispatchError{Kind: domain.ErrApplicationDispatch}
	}
	return domain.Result{Name: name}, nil
}

func buildFcmMessage(n domain.Notification) *messaging.Message {
	env := domain.NewEnvelope(n)
	return &messaging.Message{
		Token: env.Message.Token,
		Data:  env.Message.Data,
		Android: &messaging.AndroidConfig{
			Priority: strings.ToLower(env.Message.Android.Priority),
		},
		APNS: &messaging.APNSConfig{
			Headers: env.Message.APNS.Headers,
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: env.Message.APNS.Payload.Aps.Alert.Title,
						Body:  env.Message.APNS.Payload.Aps.Alert.Body,
					},
				},
			},
		},
	}
}

// endpointTransport sends every request to the configured FCM host instead
// of the one hardcoded in the SDK.
type endpointTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func newEndpointTransport(endpoint string, base http.RoundTripper) (*endpointTransport, error) {
	target, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, err
	}
	return &endpointTransport{target: target, base: base}, nil
}

func (t *endpointTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.URL.Path = t.target.Path + req.URL.Path
	r.Host = t.target.Host
	return t.base.RoundTrip(r)
}
