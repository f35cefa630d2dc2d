package identity

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/iotedge-devcomp/authrecord"
)

// accountClaims are the Entra ID claims that identify the signed-in account.
type accountClaims struct {
	ObjectID          string `json:"oid"`
	TenantID          string `json:"tid"`
	PreferredUsername string `json:"preferred_username"`
	UPN               string `json:"upn"`
	Email             string `json:"email"`
	jwt.RegisteredClaims
}

func (c accountClaims) username() string {
	switch {
	case c.PreferredUsername != "":
		return c.PreferredUsername
	case c.UPN != "":
		return c.UPN
	default:
		return c.Email
	}
}

// recordFromToken builds the authentication record for a token response.
// The ID token is verified when present. Refresh responses may carry none, in
// which case the access token's claims are read unverified and previous fills
// any gaps.
func (s *Service) recordFromToken(ctx context.Context, token *oauth2.Token, previous *authrecord.Record) (*authrecord.Record, error) {
	claims, err := s.claimsFromToken(ctx, token)
	if err != nil && previous == nil {
		return nil, err
	}

	record := &authrecord.Record{
		Authority:    s.authority,
		ClientID:     s.oauth.ClientID,
		Version:      authrecord.SupportedVersion,
		RefreshToken: token.RefreshToken,
	}
	if previous != nil {
		record.HomeAccountID = previous.HomeAccountID
		record.TenantID = previous.TenantID
		record.Username = previous.Username
		if record.RefreshToken == "" {
			record.RefreshToken = previous.RefreshToken
		}
	}
	if claims != nil {
		if claims.ObjectID != "" && claims.TenantID != "" {
			record.HomeAccountID = claims.ObjectID + "." + claims.TenantID
			record.TenantID = claims.TenantID
		}
		if name := claims.username(); name != "" {
			record.Username = name
		}
	}

	if record.HomeAccountID == "" {
		return nil, errors.New("[identity recordFromToken] token does not identify an account")
	}
	return record, nil
}

func (s *Service) claimsFromToken(ctx context.Context, token *oauth2.Token) (*accountClaims, error) {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		verifier := oidc.NewVerifier("", s.keySet, &oidc.Config{
			ClientID:        s.oauth.ClientID,
			SkipIssuerCheck: true, // multi-tenant authorities issue per-tenant
			Now:             s.nowTime,
		})
		idToken, err := verifier.Verify(s.clientContext(ctx), raw)
		if err != nil {
			return nil, errors.Wrap(err, "[identity claimsFromToken] ID token verification failed")
		}
		var claims accountClaims
		if err := idToken.Claims(&claims); err != nil {
			return nil, errors.Wrap(err, "[identity claimsFromToken] failed to extract claims")
		}
		return &claims, nil
	}

	if strings.Count(token.AccessToken, ".") != 2 {
		return nil, errors.New("[identity claimsFromToken] no ID token and access token is opaque")
	}
	var claims accountClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, &claims); err != nil {
		return nil, errors.Wrap(err, "[identity claimsFromToken] parse access token")
	}
	return &claims, nil
}
