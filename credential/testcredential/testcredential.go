// Package testcredential generates throwaway service accounts for tests.
package testcredential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/anyproto/anytype-push-sender/domain"
)

const ClientEmail = "push-sender@anytype-test.iam.gserviceaccount.com"

func NewKey(t testing.TB) *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func PEM(key *rsa.PrivateKey) string {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func New(t testing.TB) (domain.ServiceAccount, *rsa.PrivateKey) {
	key := NewKey(t)
	return domain.ServiceAccount{
		ClientEmail: ClientEmail,
		PrivateKey:  PEM(key),
		ProjectId:   "anytype-test",
		TokenURI:    "https://oauth2.googleapis.com/token",
	}, key
}

// WriteFile stores the account as a JSON key file in a temp dir and returns the path.
func WriteFile(t testing.TB, sa domain.ServiceAccount) string {
	data, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   sa.ProjectId,
		"client_email": sa.ClientEmail,
		"private_key":  sa.PrivateKey,
		"token_uri":    sa.TokenURI,
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "service-account.json")
	if err = os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
