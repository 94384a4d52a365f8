package helpers

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"skillswap_server/global"

	"github.com/golang-jwt/jwt"
)

func TestGenerateJWT(t *testing.T) {

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	global.JwtKey = key
	global.JwtParseKey = &key.PublicKey

	signed, err := GenerateJWT("user-1", "sam")
	if err != nil {
		t.Fatal(err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return global.JwtParseKey, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		t.Fatal("claims invalid")
	}
	if claims["id"] != "user-1" {
		t.Fatalf("id claim = %v", claims["id"])
	}
	if claims["username"] != "sam" {
		t.Fatalf("username claim = %v", claims["username"])
	}
	if _, ok := claims["exp"].(float64); !ok {
		t.Fatal("exp claim missing")
	}
}
