package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenMismatch = errors.New("token is for another game")

// GameClaims grant the bearer control over one game session.
type GameClaims struct {
	GameSessionId int64 `json:"game_session_id"`
	jwt.RegisteredClaims
}

type Tokens struct {
	key           []byte
	signingMethod jwt.SigningMethod
	lifetime      time.Duration
	now           func() time.Time
}

func NewTokens(c TokenConfig) (*Tokens, error) {
	if c.Secret == "" {
		return nil, errors.New("empty token secret")
	}
	return &Tokens{
		key:           []byte(c.Secret),
		signingMethod: jwt.SigningMethodHS256,
		lifetime:      c.Lifetime.Duration,
		now:           time.Now,
	}, nil
}

func (t *Tokens) Sign(gameSessionId int64) (string, error) {
	now := t.now()
	claims := GameClaims{
		GameSessionId: gameSessionId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(gameSessionId, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}
	return jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.key)
}

func (t *Tokens) Parse(tokenString string) (*GameClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&GameClaims{},
		func(*jwt.Token) (interface{}, error) {
			return t.key, nil
		},
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*GameClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
