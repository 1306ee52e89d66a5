package backend

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"

	"github.com/esperanza-dev/go-appstate"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// sessionClaims are minted into both tokens of a session pair
type sessionClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	TokenUse string `json:"use,omitempty"`
}

type tokenService struct {
	signingKey      []byte
	tokenExpiration int
	refreshDuration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          appstate.Logger
	now             func() time.Time
}

func newTokenService(cfg Config, logger appstate.Logger) *tokenService {
	if logger == nil {
		logger = defLogger{}
	}

	tokenExpiration := cfg.GetTokenExpiration()
	if tokenExpiration <= 0 {
		tokenExpiration = 1
	}

	refreshDuration := cfg.GetRefreshDuration()
	if refreshDuration <= 0 {
		refreshDuration = 24 * 7
	}

	return &tokenService{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: tokenExpiration,
		refreshDuration: refreshDuration,
		issuer:          cfg.GetIssuer(),
		audience:        jwt.ClaimStrings(cfg.GetAudience()),
		logger:          logger,
		now:             time.Now,
	}
}

// mintSession issues a fresh access/refresh pair for user
func (ts *tokenService) mintSession(user *appstate.User) (*appstate.Session, error) {
	if user == nil {
		return nil, goerrors.New("user is required to mint a session", goerrors.CategoryBadInput)
	}

	now := ts.now()
	accessExpiry := now.Add(time.Duration(ts.tokenExpiration) * time.Hour)
	refreshExpiry := now.Add(time.Duration(ts.refreshDuration) * time.Hour)

	access, err := ts.sign(user, now, accessExpiry, tokenUseAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := ts.sign(user, now, refreshExpiry, tokenUseRefresh)
	if err != nil {
		return nil, err
	}

	return &appstate.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		IssuedAt:     &now,
		ExpiresAt:    &accessExpiry,
		User:         user,
	}, nil
}

func (ts *tokenService) sign(user *appstate.User, now, expiry time.Time, use string) (string, error) {
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		UID:      user.ID.String(),
		TokenUse: use,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// validate parses and verifies a token string
func (ts *tokenService) validate(raw string) (*sessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "invalid session token")
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, goerrors.New("unable to map session claims", goerrors.CategoryAuth)
	}

	return claims, nil
}
