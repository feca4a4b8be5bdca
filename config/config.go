package config

import (
	"os"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"gopkg.in/yaml.v3"

	"github.com/anyproto/anytype-push-sender/credential"
	"github.com/anyproto/anytype-push-sender/jwtsigner"
	"github.com/anyproto/anytype-push-sender/sender"
	"github.com/anyproto/anytype-push-sender/tokenexchange"
)

const CName = "config"

func NewFromFile(path string) (c *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (c *Config, err error) {
	c = &Config{}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return
}

type Metric struct {
	Textfile string `yaml:"textfile"`
}

type Config struct {
	Log        logger.Config        `yaml:"log"`
	Credential credential.Config    `yaml:"credential"`
	OAuth      tokenexchange.Config `yaml:"oauth"`
	FCM        sender.Config        `yaml:"fcm"`
	Metric     Metric               `yaml:"metric"`
	TimeoutSec int                  `yaml:"timeoutSec"`
}

func (c *Config) Init(a *app.App) (err error) {
	return nil
}

func (c *Config) Name() (name string) {
	return CName
}

func (c *Config) GetCredential() credential.Config {
	return c.Credential
}

func (c *Config) GetOAuth() tokenexchange.Config {
	return c.OAuth
}

// GetJWT derives the assertion settings from the oauth section: the audience
// is always the endpoint the assertion is exchanged at.
func (c *Config) GetJWT() jwtsigner.Config {
	return jwtsigner.Config{
		Scope:    c.OAuth.Scope,
		Audience: c.OAuth.TokenEndpoint,
	}
}

func (c *Config) GetFCM() sender.Config {
	return c.FCM
}

func (c *Config) GetMetric() Metric {
	return c.Metric
}
