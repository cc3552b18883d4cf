package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information an operator token encodes
type OperatorClaims struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Hospital string `json:"hospital,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewOperatorToken(expiresIn time.Duration, id string, name string, hospital string, secretKey string) (tokenString string, err error) {
	claims := OperatorClaims{
		id,
		name,
		hospital,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateOperatorToken(tokenString string, secretKey string) (claims *OperatorClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*OperatorClaims)
	valid = valid && token.Valid
	return
}
