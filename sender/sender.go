//go:generate mockgen -destination mock_sender/mock_sender.go github.com/anyproto/anytype-push-sender/sender Sender

package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-sender/domain"
)

const CName = "push.sender"

const (
	DefaultEndpoint = "https://fcm.googleapis.com"
	DefaultProvider = "rest"
)

var log = logger.NewNamed(CName)

type configSource interface {
	GetFCM() Config
}

type Config struct {
	ProjectId  string `yaml:"projectId"`
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	TimeoutSec int    `yaml:"timeoutSec"`
}

// WithDefaults fills the empty fields with the production values.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	return c
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func New() Sender {
	return new(sender)
}

type Sender interface {
	RegisterProvider(name string, provider Provider)
	Send(ctx context.Context, token domain.AccessToken, n domain.Notification) (domain.Result, error)
	app.ComponentRunnable
}

// Provider delivers a single notification to the FCM project.
type Provider interface {
	SendMessage(ctx context.Context, token domain.AccessToken, projectId string, n domain.Notification) (domain.Result, error)
}

type sender struct {
	conf      Config
	providers map[string]Provider
}

func (s *sender) Init(a *app.App) (err error) {
	s.conf = a.MustComponent("config").(configSource).GetFCM().WithDefaults()
	s.providers = make(map[string]Provider)
	return
}

func (s *sender) Name() (name string) {
	return CName
}

func (s *sender) Run(ctx context.Context) (err error) {
	if _, ok := s.providers[s.conf.Provider]; !ok {
		return fmt.Errorf("fcm provider %q is not registered", s.conf.Provider)
	}
	if s.conf.ProjectId == "" {
		log.Warn("fcm projectId is empty")
	}
	return
}

func (s *sender) RegisterProvider(name string, provider Provider) {
	s.providers[name] = provider
}

func (s *sender) Send(ctx context.Context, token domain.AccessToken, n domain.Notification) (domain.Result, error) {
	provider, ok := s.providers[s.conf.Provider]
	if !ok {
		return domain.Result{}, &domain.DispatchError{
			Kind: domain.ErrDispatch,
			Err:  fmt.Errorf("unexpected provider %q", s.conf.Provider),
		}
	}
	res, err := provider.SendMessage(ctx, token, s.conf.ProjectId, n)
	if err != nil {
		log.Warn("fcm send error", zap.String("provider", s.conf.Provider), zap.Error(err))
		return res, err
	}
	log.Info("push sent", zap.String("provider", s.conf.Provider), zap.String("name", res.Name))
	return res, nil
}

func (s *sender) Close(ctx context.Context) (err error) {
	return nil
}
