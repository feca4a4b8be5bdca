package push

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-sender/credential"
	"github.com/anyproto/anytype-push-sender/domain"
	"github.com/anyproto/anytype-push-sender/jwtsigner"
	"github.com/anyproto/anytype-push-sender/sender"
	"github.com/anyproto/anytype-push-sender/tokenexchange"
)

const CName = "push"

var log = logger.NewNamed(CName)

type Stage uint8

const (
	StageStart Stage = iota
	StageSigned
	StageTokenObtained
	StageDispatched
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageSigned:
		return "signed"
	case StageTokenObtained:
		return "tokenObtained"
	case StageDispatched:
		return "dispatched"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

func New() Push {
	return new(push)
}

type Push interface {
	// Send runs credential → assertion → access token → messages:send.
	// The first failing stage aborts the call and its error is returned as is.
	Send(ctx context.Context, n domain.Notification) (domain.Result, error)
	Registry() *prometheus.Registry
	app.Component
}

type push struct {
	credential credential.Loader
	signer     jwtsigner.Signer
	exchanger  tokenexchange.Exchanger
	sender     sender.Sender
	registry   *prometheus.Registry
	metrics    struct {
		sendCount    atomic.Uint64
		successCount atomic.Uint64
		failures     *prometheus.CounterVec
		sendDuration *prometheus.SummaryVec
	}
}

func (p *push) Init(a *app.App) (err error) {
	p.credential = a.MustComponent(credential.CName).(credential.Loader)
	p.signer = a.MustComponent(jwtsigner.CName).(jwtsigner.Signer)
	p.exchanger = a.MustComponent(tokenexchange.CName).(tokenexchange.Exchanger)
	p.sender = a.MustComponent(sender.CName).(sender.Sender)
	p.registry = prometheus.NewRegistry()
	registerMetrics(p.registry, p)
	return
}

func (p *push) Name() (name string) {
	return CName
}

func (p *push) Registry() *prometheus.Registry {
	return p.registry
}

func (p *push) Send(ctx context.Context, n domain.Notification) (res domain.Result, err error) {
	st := time.Now()
	stage := StageStart
	defer func() {
		p.observe(stage, time.Since(st), err)
		fields := []zap.Field{
			zap.String("stage", stage.String()),
			zap.Duration("total", time.Since(st)),
		}
		if err != nil {
			log.Warn("push.send", append(fields, zap.Error(err))...)
		} else {
			log.Info("push.send", append(fields, zap.String("name", res.Name))...)
		}
	}()

	if err = validate(n); err != nil {
		return
	}
	sa, err := p.credential.Load(ctx)
	if err != nil {
		return
	}
	assertion, err := p.signer.Sign(ctx, sa)
	if err != nil {
		return
	}
	stage = StageSigned

	token, err := p.exchanger.Exchange(ctx, assertion)
	if err != nil {
		return
	}
	stage = StageTokenObtained

	if res, err = p.sender.Send(ctx, token, n); err != nil {
		return
	}
	stage = StageDispatched
	return
}

func validate(n domain.Notification) error {
	if n.DeviceToken == "" {
		return fmt.Errorf("%w: empty device token", domain.ErrInvalidNotification)
	}
	return nil
}

func (p *push) observe(stage Stage, dur time.Duration, err error) {
	p.metrics.sendCount.Add(1)
	result := "success"
	if err != nil {
		result = "failure"
		p.metrics.failures.WithLabelValues(stage.String()).Inc()
	} else {
		p.metrics.successCount.Add(1)
	}
	p.metrics.sendDuration.WithLabelValues(result).Observe(dur.Seconds())
}
