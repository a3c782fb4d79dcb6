package settingsstore

import (
	"context"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/i18nexus"
)

const (
	envI18nexusAPIKey = "I18NEXUS_API_KEY"
	envI18nexusToken  = "I18NEXUS_PERSONAL_ACCESS_TOKEN"
)

// I18nexusConfigInfo describes the effective translation service credentials
// with secrets masked.
type I18nexusConfigInfo struct {
	APIKey       string `json:"api_key"`
	APIKeySource string `json:"api_key_source"`
	HasAPIKey    bool   `json:"has_api_key"`

	Token       string `json:"token"`
	TokenSource string `json:"token_source"`
	HasToken    bool   `json:"has_token"`
}

// Credentials implements i18nexus.CredentialSource so rotated keys apply to
// the next request.
func (s *SettingsStore) Credentials(context.Context) (i18nexus.Credentials, error) {
	apiKey, _ := s.lookupSecret(entities.SettingKeyI18nexusAPIKey, envI18nexusAPIKey)
	token, _ := s.lookupSecret(entities.SettingKeyI18nexusToken, envI18nexusToken)
	return i18nexus.Credentials{APIKey: apiKey, AccessToken: token}, nil
}

// SetI18nexusAPIKey stores the read key encrypted. An empty key clears the override.
func (s *SettingsStore) SetI18nexusAPIKey(apiKey string) error {
	return s.setSecret(entities.SettingKeyI18nexusAPIKey, apiKey)
}

// SetI18nexusToken stores the personal access token encrypted. An empty token clears the override.
func (s *SettingsStore) SetI18nexusToken(token string) error {
	return s.setSecret(entities.SettingKeyI18nexusToken, token)
}

func (s *SettingsStore) GetI18nexusConfigInfo() I18nexusConfigInfo {
	apiKey, apiKeySource := s.lookupSecret(entities.SettingKeyI18nexusAPIKey, envI18nexusAPIKey)
	token, tokenSource := s.lookupSecret(entities.SettingKeyI18nexusToken, envI18nexusToken)
	return I18nexusConfigInfo{
		APIKey:       maskToken(apiKey),
		APIKeySource: apiKeySource,
		HasAPIKey:    apiKey != "",
		Token:        maskToken(token),
		TokenSource:  tokenSource,
		HasToken:     token != "",
	}
}

// ClearI18nexusCredentials removes database overrides, reverting to the environment.
func (s *SettingsStore) ClearI18nexusCredentials() error {
	return s.clear(entities.SettingKeyI18nexusAPIKey, entities.SettingKeyI18nexusToken)
}

var _ i18nexus.CredentialSource = (*SettingsStore)(nil)
