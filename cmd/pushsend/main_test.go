package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anyproto/any-sync/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyproto/anytype-push-sender/config"
	"github.com/anyproto/anytype-push-sender/credential/testcredential"
	"github.com/anyproto/anytype-push-sender/push"
)

func TestDataFlag(t *testing.T) {
	d := dataFlag{}
	require.NoError(t, d.Set("id=42"))
	require.NoError(t, d.Set("expiry=2026-10-16T00:00:00Z"))
	require.NoError(t, d.Set("empty="))
	assert.Equal(t, dataFlag{"id": "42", "expiry": "2026-10-16T00:00:00Z", "empty": ""}, d)
	require.Error(t, d.Set("novalue"))
	require.Error(t, d.Set("=x"))
}

func TestBuildNotification(t *testing.T) {
	n := buildNotification("D", "Hi", "", map[string]string{"id": "1", "body": "Yo"})
	assert.Equal(t, "D", n.DeviceToken)
	assert.Equal(t, map[string]string{"id": "1", "title": "Hi", "body": "Yo"}, n.Data)
}

func TestBootstrap(t *testing.T) {
	sa, _ := testcredential.New(t)
	conf := &config.Config{}
	conf.Credential.File = testcredential.WriteFile(t, sa)
	conf.FCM.ProjectId = "p"
	for _, provider := range []string{"rest", "sdk"} {
		t.Run(provider, func(t *testing.T) {
			conf.FCM.Provider = provider
			a := new(app.App)
			Bootstrap(a, conf)
			require.NoError(t, a.Start(context.Background()))
			p := a.MustComponent(push.CName).(push.Push)

			path := filepath.Join(t.TempDir(), "push.prom")
			require.NoError(t, writeMetrics(path, p.Registry()))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "push_sender_send_count")
			require.NoError(t, a.Close(context.Background()))
		})
	}
}
