// Package credentials loads the warehouse service-account definition from
// either process environment (populated from a local env file) or a secret
// document held by a hosted secret store.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSection is the secret document key holding the service account.
const DefaultSection = "gcp_service_account"

// ServiceAccount is the Google service-account key field set.
type ServiceAccount struct {
	Type                    string `json:"type" yaml:"type"`
	ProjectID               string `json:"project_id" yaml:"project_id"`
	PrivateKeyID            string `json:"private_key_id" yaml:"private_key_id"`
	PrivateKey              string `json:"private_key" yaml:"private_key"`
	ClientEmail             string `json:"client_email" yaml:"client_email"`
	ClientID                string `json:"client_id" yaml:"client_id"`
	AuthURI                 string `json:"auth_uri" yaml:"auth_uri"`
	TokenURI                string `json:"token_uri" yaml:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url" yaml:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url" yaml:"client_x509_cert_url"`
	UniverseDomain          string `json:"universe_domain,omitempty" yaml:"universe_domain"`
}

// IsZero reports whether no field is set.
func (s ServiceAccount) IsZero() bool {
	return s == ServiceAccount{}
}

// JSON encodes the account in the service-account key file format expected
// by Google client options.
func (s ServiceAccount) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// envKeys maps each field to its environment variable.
var envKeys = []struct {
	name  string
	field func(*ServiceAccount) *string
}{
	{"TYPE", func(s *ServiceAccount) *string { return &s.Type }},
	{"PROJECT_ID", func(s *ServiceAccount) *string { return &s.ProjectID }},
	{"PRIVATE_KEY_ID", func(s *ServiceAccount) *string { return &s.PrivateKeyID }},
	{"PRIVATE_KEY", func(s *ServiceAccount) *string { return &s.PrivateKey }},
	{"CLIENT_EMAIL", func(s *ServiceAccount) *string { return &s.ClientEmail }},
	{"CLIENT_ID", func(s *ServiceAccount) *string { return &s.ClientID }},
	{"AUTH_URI", func(s *ServiceAccount) *string { return &s.AuthURI }},
	{"TOKEN_URI", func(s *ServiceAccount) *string { return &s.TokenURI }},
	{"AUTH_PROVIDER_X509_CERT_URL", func(s *ServiceAccount) *string { return &s.AuthProviderX509CertURL }},
	{"CLIENT_X509_CERT_URL", func(s *ServiceAccount) *string { return &s.ClientX509CertURL }},
	{"UNIVERSE_DOMAIN", func(s *ServiceAccount) *string { return &s.UniverseDomain }},
}

// FromEnv reads the service account from environment variables TYPE,
// PROJECT_ID, PRIVATE_KEY_ID, PRIVATE_KEY, CLIENT_EMAIL, CLIENT_ID, AUTH_URI,
// TOKEN_URI, AUTH_PROVIDER_X509_CERT_URL, CLIENT_X509_CERT_URL and
// UNIVERSE_DOMAIN. Escaped "\n" sequences in the private key are expanded,
// since env files cannot hold multi-line values.
func FromEnv() ServiceAccount {
	var s ServiceAccount
	for _, k := range envKeys {
		*k.field(&s) = os.Getenv(k.name)
	}
	s.PrivateKey = strings.ReplaceAll(s.PrivateKey, `\n`, "\n")
	return s
}

// FromSecrets parses a YAML (or JSON) secret document and returns the
// service account stored under section. A document without that section
// whose top level is itself a service account is accepted as-is.
func FromSecrets(doc []byte, section string) (ServiceAccount, error) {
	if section == "" {
		section = DefaultSection
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(doc, &sections); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse secrets: %w", err)
	}

	var s ServiceAccount
	if node, ok := sections[section]; ok {
		if err := node.Decode(&s); err != nil {
			return ServiceAccount{}, fmt.Errorf("decode secrets section %q: %w", section, err)
		}
	} else if err := yaml.Unmarshal(doc, &s); err != nil {
		return ServiceAccount{}, fmt.Errorf("decode secrets: %w", err)
	}

	if s.IsZero() {
		return ServiceAccount{}, fmt.Errorf("secrets section %q not found", section)
	}
	return s, nil
}
