//go:generate mockgen -destination mock_credential/mock_credential.go github.com/anyproto/anytype-push-sender/credential Loader

package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-sender/domain"
)

const CName = "push.credential"

var log = logger.NewNamed(CName)

type configSource interface {
	GetCredential() Config
}

type Config struct {
	File string `yaml:"file"`
}

func New() Loader {
	return new(loader)
}

type Loader interface {
	// Load reads the service account file on every call
	Load(ctx context.Context) (domain.ServiceAccount, error)
	app.Component
}

type loader struct {
	file string
}

func (l *loader) Init(a *app.App) (err error) {
	l.file = a.MustComponent("config").(configSource).GetCredential().File
	if l.file == "" {
		return fmt.Errorf("%w: credential file is not configured", domain.ErrCredentialParse)
	}
	return
}

func (l *loader) Name() (name string) {
	return CName
}

func (l *loader) Load(ctx context.Context) (domain.ServiceAccount, error) {
	sa, err := LoadFile(l.file)
	if err != nil {
		return sa, err
	}
	log.Debug("service account loaded", zap.String("clientEmail", sa.ClientEmail))
	return sa, nil
}

func LoadFile(path string) (domain.ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ServiceAccount{}, fmt.Errorf("%w: %w", domain.ErrCredentialParse, err)
	}
	return Parse(data)
}

// Parse decodes a service account JSON key. Escaped "\n" sequences in the
// private key are turned into real newlines.
func Parse(data []byte) (sa domain.ServiceAccount, err error) {
	if err = json.Unmarshal(data, &sa); err != nil {
		return domain.ServiceAccount{}, fmt.Errorf("%w: %w", domain.ErrCredentialParse, err)
	}
	sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")
	if sa.ClientEmail == "" {
		return domain.ServiceAccount{}, fmt.Errorf("%w: client_email", domain.ErrMissingCredentialField)
	}
	if strings.TrimSpace(sa.PrivateKey) == "" {
		return domain.ServiceAccount{}, fmt.Errorf("%w: private_key", domain.ErrMissingCredentialField)
	}
	return sa, nil
}
