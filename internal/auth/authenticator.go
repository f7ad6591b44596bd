package auth

import (
	"crypto/subtle"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teamboard/teamboard/internal/ierr"
)

type Claims struct {
	jwt.RegisteredClaims
	AuthorizedProjects []int64 `json:"authorizedProjects,omitempty"`
}

// Authentication is the resolved identity of a REST caller. UserID stamps
// the updated_by field of broadcast events; it is zero for service callers
// authenticated by API key.
type Authentication struct {
	UserID             int64
	AuthorizedProjects []int64
	IsService          bool
}

func (a *Authentication) IsAuthorized(projectID int64) bool {
	if a.IsService {
		return true
	}

	return slices.Contains(a.AuthorizedProjects, projectID)
}

type Authenticator struct {
	secret    []byte
	apiKeys   []string
	jwtParser *jwt.Parser
}

func NewAuthenticator(secret string, apiKeys []string) *Authenticator {
	jwtParser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience("teamboard"),
	)

	return &Authenticator{
		secret:    []byte(secret),
		apiKeys:   apiKeys,
		jwtParser: jwtParser,
	}
}

func (a *Authenticator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("unexpected signing method"))
	}

	return a.secret, nil
}

// AuthenticateJWT validates a user token. The subject claim must be the
// user's numeric id.
func (a *Authenticator) AuthenticateJWT(tokenString string) (*Authentication, error) {
	claims := Claims{}

	_, err := a.jwtParser.ParseWithClaims(tokenString, &claims, a.keyFunc)
	if err != nil {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid subject claim"))
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("subject must be a positive user id"))
	}

	if len(claims.AuthorizedProjects) == 0 {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("authorized projects cannot be empty"))
	}

	return &Authentication{
		UserID:             userID,
		AuthorizedProjects: claims.AuthorizedProjects,
	}, nil
}

// AuthenticateAPIKey validates a shared service key. Service callers are
// authorized for every project.
func (a *Authenticator) AuthenticateAPIKey(apiKey string) (*Authentication, error) {
	for _, key := range a.apiKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			return &Authentication{
				IsService: true,
			}, nil
		}
	}

	return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("invalid api key"))
}
