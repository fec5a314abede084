package models

import "github.com/golang-jwt/jwt/v5"

// Claims представляет стандартные поля JWT и адрес кошелька игрока,
// выданный внешним провайдером идентичности.
type Claims struct {
	Player               string `json:"player"`
	jwt.RegisteredClaims        // Встраиваем стандартные поля: Issuer, Subject, Audience, ExpiresAt, NotBefore, IssuedAt, ID (JTI)
}
