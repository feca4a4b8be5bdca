package domain

import "strings"

type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectId   string `json:"project_id"`
	TokenURI    string `json:"token_uri"`
}

// Assertion is a signed JWT split into its three base64url segments.
type Assertion struct {
	Header    string
	Claims    string
	Signature string
}

func (a Assertion) SigningString() string {
	return a.Header + "." + a.Claims
}

func (a Assertion) String() string {
	return strings.Join([]string{a.Header, a.Claims, a.Signature}, ".")
}

type AccessToken struct {
	Value     string
	TokenType string
	ExpiresIn int64
}
