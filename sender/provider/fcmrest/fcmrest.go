package fcmrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anyproto/any-sync/app"

	"github.com/anyproto/anytype-push-sender/domain"
	"github.com/anyproto/anytype-push-sender/sender"
)

const CName = "push.provider.fcmrest"

const ProviderName = "rest"

type configSource interface {
	GetFCM() sender.Config
}

func New() FCMRest {
	return new(fcmRest)
}

type FCMRest interface {
	app.Component
}

type fcmRest struct{}

func (f *fcmRest) Init(a *app.App) (err error) {
	s := a.MustComponent(sender.CName).(sender.Sender)
	conf := a.MustComponent("config").(configSource).GetFCM().WithDefaults()
	s.RegisterProvider(ProviderName, newSender(conf.Endpoint, &http.Client{Timeout: conf.Timeout()}))
	return
}

func (f *fcmRest) Name() (name string) {
	return CName
}

func newSender(endpoint string, client *http.Client) sender.Provider {
	return &restSender{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
	}
}

type restSender struct {
	endpoint string
	client   *http.Client
}

func (r *restSender) messagesURL(projectId string) string {
	return fmt.Sprintf("%s/v1/projects/%s/messages:send", r.endpoint, url.PathEscape(projectId))
}

func (r *restSender) SendMessage(ctx context.Context, token domain.AccessToken, projectId string, n domain.Notification) (res domain.Result, err error) {
	payload, err := json.Marshal(domain.NewEnvelope(n))
	if err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.messagesURL(projectId), bytes.NewReader(payload))
	if err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrDispatch, StatusCode: resp.StatusCode, Err: err}
	}

	var decoded map[string]any
	if err = json.Unmarshal(body, &decoded); err != nil {
		return res, &domain.DispatchError{Kind: domain.ErrInvalidResponse, StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	name, _ := decoded["name"].(string)
	if name == "" {
		return res, &domain.DispatchError{Kind: domain.ErrApplicationDispatch, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return domain.Result{Name: name}, nil
}
