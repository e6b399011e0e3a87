// file: model/token.go

package model

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult bundles the issued tokens with the public view of the user.
type LoginResult struct {
	User   *PublicUser
	Tokens TokenPair
}
