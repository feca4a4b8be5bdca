//go:generate mockgen -destination mock_tokenexchange/mock_tokenexchange.go github.com/anyproto/anytype-push-sender/tokenexchange Exchanger

package tokenexchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-sender/domain"
)

const CName = "push.tokenexchange"

const (
	DefaultTokenEndpoint = "https://oauth2.googleapis.com/token"
	GrantTypeJWTBearer   = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

var log = logger.NewNamed(CName)

var (
	ErrTransport        = errors.New("token request failed")
	ErrUnexpectedStatus = errors.New("token endpoint returned an error")
	ErrDecode           = errors.New("token response is not valid json")
	ErrNoAccessToken    = errors.New("no access token in response")
)

type configSource interface {
	GetOAuth() Config
}

type Config struct {
	TokenEndpoint string `yaml:"tokenEndpoint"`
	Scope         string `yaml:"scope"`
	TimeoutSec    int    `yaml:"timeoutSec"`
}

// ExchangeError is returned for every failed exchange. It matches
// domain.ErrTokenExchange and its Reason with errors.Is.
type ExchangeError struct {
	Reason     error
	StatusCode int
	Detail     string
	Err        error
}

func (e *ExchangeError) Error() string {
	msg := e.Reason.Error()
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ExchangeError) Unwrap() []error {
	errs := []error{domain.ErrTokenExchange, e.Reason}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func New() Exchanger {
	return new(exchanger)
}

type Exchanger interface {
	Exchange(ctx context.Context, assertion domain.Assertion) (domain.AccessToken, error)
	app.Component
}

type exchanger struct {
	endpoint string
	client   *http.Client
}

func (e *exchanger) Init(a *app.App) (err error) {
	conf := a.MustComponent("config").(configSource).GetOAuth()
	e.endpoint = conf.TokenEndpoint
	if e.endpoint == "" {
		e.endpoint = DefaultTokenEndpoint
	}
	e.client = &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second}
	return
}

func (e *exchanger) Name() (name string) {
	return CName
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *exchanger) Exchange(ctx context.Context, assertion domain.Assertion) (token domain.AccessToken, err error) {
	form := url.Values{}
	form.Set("grant_type", GrantTypeJWTBearer)
	form.Set("assertion", assertion.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return token, &ExchangeError{Reason: ErrTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return token, &ExchangeError{Reason: ErrTransport, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return token, &ExchangeError{Reason: ErrTransport, StatusCode: resp.StatusCode, Err: err}
	}

	var tr tokenResponse
	decodeErr := json.Unmarshal(body, &tr)
	if resp.StatusCode != http.StatusOK {
		detail := string(body)
		if decodeErr == nil {
			if tr.ErrorDescription != "" {
				detail = tr.ErrorDescription
			} else if tr.Error != "" {
				detail = tr.Error
			}
		}
		log.Warn("token request rejected", zap.Int("status", resp.StatusCode), zap.String("detail", detail))
		return token, &ExchangeError{Reason: ErrUnexpectedStatus, StatusCode: resp.StatusCode, Detail: detail}
	}
	if decodeErr != nil {
		return token, &ExchangeError{Reason: ErrDecode, StatusCode: resp.StatusCode, Detail: string(body), Err: decodeErr}
	}
	if tr.AccessToken == "" {
		return token, &ExchangeError{Reason: ErrNoAccessToken, StatusCode: resp.StatusCode, Detail: string(body)}
	}
	log.Debug("access token obtained", zap.String("type", tr.TokenType), zap.Int64("expiresIn", tr.ExpiresIn))
	return domain.AccessToken{
		Value:     tr.AccessToken,
		TokenType: tr.TokenType,
		ExpiresIn: tr.ExpiresIn,
	}, nil
}
