package security

import "time"

const (
	TOKEN_KEY = "Authorization"

	ROLE_KEY = "role"
)

// TokenClaims is the resolved identity carried through a request or
// connection after the access token has been exchanged against the store.
type TokenClaims struct {
	User       string            `json:"u"`
	UserName   string            `json:"un"`
	Fields     map[string]string `json:"f"`
	ExpireTime int64             `json:"exp"`
	NotBefore  int64             `json:"nbf"`
}

func NewTokenClaims(userID, userName, role string, expireTime int64) TokenClaims {
	return TokenClaims{
		User:     userID,
		UserName: userName,
		Fields: map[string]string{
			ROLE_KEY: role,
		},
		ExpireTime: expireTime,
		NotBefore:  time.Now().Unix() - 1,
	}
}

func (t TokenClaims) GetUser() string {
	return t.User
}

func (t TokenClaims) GetRole() string {
	return t.Field(ROLE_KEY)
}

func (t TokenClaims) Field(key string) string {
	if t.Fields == nil {
		return ""
	}

	return t.Fields[key]
}
