// Package jwt issues and validates RS256 access tokens for the bookshelf API.
//
// Tokens are built on github.com/golang-jwt/jwt/v5. The service adds the
// issuer, a random token id and the iat/nbf/exp claims on Sign, and Validate
// rejects tokens signed with any algorithm other than RS256.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/private.pem",
//	    Issuer:         "bookshelf",
//	    ExpirationMins: 15,
//	})
//
//	token, err := svc.Sign(jwt.Claims{UserID: user.ID, Username: user.Username})
//	claims, err := svc.Validate(token)
//
// Errors are reported as the package sentinels (ErrTokenExpired,
// ErrInvalidSignature, ...) regardless of the underlying parser error.
package jwt
