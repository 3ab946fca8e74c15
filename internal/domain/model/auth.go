package model

// AuthContact is the identity resolved from a gateway bearer token
// (§4.6: HMAC-signed bearer with sub/iat/exp).
type AuthContact struct {
	UserID   string
	Platform Platform
}
