package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var (
	ErrInvalidIDToken   = errors.New("invalid google id token")
	ErrAudienceMismatch = errors.New("google id token was issued for another client")
	ErrEmailUnverified  = errors.New("google account email is not verified")
)

// GoogleIdentity is the subset of ID token claims used for sign-in
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	HostedDomain  string
}

// tokenInfo mirrors the tokeninfo endpoint response; every value is a string
type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"`
	Exp           string `json:"exp"`
}

// GoogleProvider verifies Google ID tokens and runs the authorization code flow
type GoogleProvider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	tokenInfoURL string
}

// NewGoogleProvider creates a provider for the given OAuth client
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokenInfoURL: defaultTokenInfoURL,
	}
}

// WithTokenInfoURL overrides the tokeninfo endpoint
func (p *GoogleProvider) WithTokenInfoURL(u string) *GoogleProvider {
	p.tokenInfoURL = u
	return p
}

// AuthCodeURL returns the consent page URL
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades an authorization code for tokens and verifies the returned ID token
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, ErrInvalidIDToken
	}
	return p.VerifyIDToken(ctx, idToken)
}

// VerifyIDToken validates idToken with Google and checks it was issued for this client
func (p *GoogleProvider) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.tokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}

	if info.Aud != p.config.ClientID {
		return nil, ErrAudienceMismatch
	}
	if info.Sub == "" || info.Email == "" {
		return nil, ErrInvalidIDToken
	}
	if info.EmailVerified != "true" {
		return nil, ErrEmailUnverified
	}

	return &GoogleIdentity{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: true,
		Name:          info.Name,
		Picture:       info.Picture,
		HostedDomain:  info.HD,
	}, nil
}
