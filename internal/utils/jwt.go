package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/iliyamo/course-stream/internal/model"
)

// Verification failures.  Every error returned by VerifyAccessToken wraps
// exactly one of these so callers can classify it with errors.Is.
var (
    ErrTokenMalformed = errors.New("token malformed")
    ErrTokenSignature = errors.New("token signature invalid")
    ErrTokenExpired   = errors.New("token expired")
)

// AccessClaims is the payload of a login token: the identity claim set
// {id, email, role} plus the registered expiry and issue time.
type AccessClaims struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
    jwt.RegisteredClaims
}

// AccessToken represents a signed login token along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT carrying the identity.  The
// role is embedded verbatim and cannot change for the token's lifetime.
func NewAccessToken(secret string, id model.Identity, ttl time.Duration) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, errors.New("empty signing secret")
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := AccessClaims{
        ID:    id.ID,
        Email: id.Email,
        Role:  id.Role,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, fmt.Errorf("sign access token: %w", err)
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken checks the signature (HS256 only), structure and expiry
// of raw and returns the identity it carries.  Tokens without an exp claim
// or with a role the API does not know are rejected as malformed.
func VerifyAccessToken(secret, raw string) (model.Identity, error) {
    var claims AccessClaims
    _, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return model.Identity{}, classify(err)
    }
    if claims.ID == "" || !model.ValidRole(claims.Role) {
        return model.Identity{}, fmt.Errorf("%w: missing id or unknown role", ErrTokenMalformed)
    }
    return model.Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role}, nil
}

// classify maps golang-jwt errors onto the three verification failures.
func classify(err error) error {
    switch {
    case errors.Is(err, jwt.ErrTokenExpired):
        return fmt.Errorf("%w: %v", ErrTokenExpired, err)
    case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
        return fmt.Errorf("%w: %v", ErrTokenSignature, err)
    default:
        return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
    }
}
