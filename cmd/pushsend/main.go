package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-sender/config"
	"github.com/anyproto/anytype-push-sender/credential"
	"github.com/anyproto/anytype-push-sender/domain"
	"github.com/anyproto/anytype-push-sender/jwtsigner"
	"github.com/anyproto/anytype-push-sender/push"
	"github.com/anyproto/anytype-push-sender/sender"
	"github.com/anyproto/anytype-push-sender/sender/provider/fcm"
	"github.com/anyproto/anytype-push-sender/sender/provider/fcmrest"
	"github.com/anyproto/anytype-push-sender/tokenexchange"
)

var log = logger.NewNamed("main")

type dataFlag map[string]string

func (d dataFlag) String() string {
	return fmt.Sprint(map[string]string(d))
}

func (d dataFlag) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	d[key] = value
	return nil
}

var (
	flagConfigFile  = flag.String("c", "etc/pushsend.yml", "path to config file")
	flagDeviceToken = flag.String("token", "", "device registration token")
	flagTitle       = flag.String("title", "", "notification title, stored as data.title")
	flagBody        = flag.String("body", "", "notification body, stored as data.body")
	flagData        = dataFlag{}
)

func main() {
	flag.Var(flagData, "data", "data payload entry key=value, repeatable")
	flag.Parse()

	conf, err := config.NewFromFile(*flagConfigFile)
	if err != nil {
		log.Fatal("can't open config file", zap.Error(err))
	}
	conf.Log.ApplyGlobal()

	a := new(app.App)
	Bootstrap(a, conf)

	ctx := context.Background()
	if err = a.Start(ctx); err != nil {
		log.Fatal("can't start app", zap.Error(err))
	}

	res, sendErr := send(ctx, a.MustComponent(push.CName).(push.Push), conf)

	if textfile := conf.GetMetric().Textfile; textfile != "" {
		if err = writeMetrics(textfile, a.MustComponent(push.CName).(push.Push).Registry()); err != nil {
			log.Warn("can't write metrics", zap.String("path", textfile), zap.Error(err))
		}
	}
	if err = a.Close(ctx); err != nil {
		log.Warn("app close error", zap.Error(err))
	}

	if sendErr != nil {
		fmt.Fprintln(os.Stderr, "Error sending notification:", sendErr)
		os.Exit(1)
	}
	fmt.Println("Notification sent:", res.Name)
}

func send(ctx context.Context, p push.Push, conf *config.Config) (domain.Result, error) {
	if conf.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(conf.TimeoutSec)*time.Second)
		defer cancel()
	}
	return p.Send(ctx, buildNotification(*flagDeviceToken, *flagTitle, *flagBody, flagData))
}

func buildNotification(token, title, body string, data map[string]string) domain.Notification {
	n := domain.Notification{
		DeviceToken: token,
		Data:        make(map[string]string, len(data)+2),
	}
	for k, v := range data {
		n.Data[k] = v
	}
	if title != "" {
		n.Data[domain.DataKeyTitle] = title
	}
	if body != "" {
		n.Data[domain.DataKeyBody] = body
	}
	return n
}

func writeMetrics(path string, reg *prometheus.Registry) error {
	return prometheus.WriteToTextfile(path, reg)
}

func Bootstrap(a *app.App, conf *config.Config) {
	a.Register(conf).
		Register(credential.New()).
		Register(jwtsigner.New()).
		Register(tokenexchange.New()).
		Register(sender.New()).
		Register(fcmrest.New()).
		Register(fcm.New()).
		Register(push.New())
}
