package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/innexar/afiliados-api/internal/config"
)

const (
	RoleAfiliado = "affiliate"
	RoleAdmin    = "admin"
)

// Claims do token: Subject carrega o ID do afiliado.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Gerenciador emite e valida tokens HS256.
type Gerenciador struct {
	segredo  []byte
	issuer   string
	audience string
	ttl      time.Duration
	agora    func() time.Time
}

func NovoGerenciador(cfg config.Auth) *Gerenciador {
	return &Gerenciador{
		segredo:  []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTTL,
		agora:    time.Now,
	}
}

// GerarToken gera um JWT com iss, aud, iat, nbf, exp e jti.
func (g *Gerenciador) GerarToken(sub uuid.UUID, email, role string) (string, time.Time, error) {
	now := g.agora()
	exp := now.Add(g.ttl)
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Audience:  []string{g.audience},
			Subject:   sub.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.segredo)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("assinar token: %w", err)
	}
	return tok, exp, nil
}

// Validar confere assinatura, iss, aud e exp e devolve as claims.
func (g *Gerenciador) Validar(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(g.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.agora),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return g.segredo, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("claims inválidas")
	}
	if _, err := uuid.Parse(c.Subject); err != nil {
		return nil, errors.New("sub inválido")
	}
	return c, nil
}
