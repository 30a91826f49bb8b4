package hash

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input limit; longer passwords are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("inventory-login-placeholder")
	if err != nil {
		return ""
	}
	return h
})

// CheckDummy burns one comparison against a throwaway hash so a lookup miss
// costs about as much as a wrong password.
func CheckDummy(password string) {
	_ = CheckPassword(dummyHash(), password)
}
