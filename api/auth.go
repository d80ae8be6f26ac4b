package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/musclegram/musclegram/api/apiutil"
)

// requireAuth is middleware that requires authentication
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer, err := s.authenticate(c)
		if err != nil {
			return apiutil.Error(c, http.StatusUnauthorized, "AuthenticationRequired", err.Error())
		}
		c.Set("viewer", viewer)
		return next(c)
	}
}

// optionalAuth is middleware that optionally authenticates
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer, _ := s.authenticate(c)
		if viewer != "" {
			c.Set("viewer", viewer)
		}
		return next(c)
	}
}

// authenticate returns the user id from the bearer token's sub claim.
// Browsers cannot set headers on websocket requests, so ?token= is accepted
// as well.
func (s *Server) authenticate(c echo.Context) (string, error) {
	tokenString := c.QueryParam("token")

	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", fmt.Errorf("invalid authorization header format")
		}
		tokenString = parts[1]
	}

	if tokenString == "" {
		return "", fmt.Errorf("missing authorization header")
	}

	var opts []jwt.ParseOption
	if s.jwtSecret != nil {
		opts = append(opts, jwt.WithKey(jwa.HS256, s.jwtSecret), jwt.WithValidate(true))
	} else {
		opts = append(opts, jwt.WithVerify(false), jwt.WithValidate(false))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", fmt.Errorf("missing 'sub' claim in token")
	}

	return sub, nil
}
