package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/infrastructure/config"
	"dealership/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// HeaderALBIdentity carries the OIDC claims JWT added by the AWS load balancer.
	HeaderALBIdentity = "x-amzn-oidc-data"

	ClaimName = "name"
	ClaimCPF  = "custom:cpf"

	identityKey = "identity"
)

var (
	errMissingToken  = errors.New("missing identity token")
	errInvalidClaims = errors.New("identity token lacks a valid name or cpf")

	errUnauthorized = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
)

// IdentityFunc extracts the customer identity from a request.
type IdentityFunc func(c *gin.Context) (entities.Customer, error)

// NewIdentity builds the identity middleware for the configured auth mode.
// The resolved customer is stored in the gin context and read with CustomerFrom.
func NewIdentity(cfg config.AuthConfig, log *zap.Logger) (gin.HandlerFunc, error) {
	var extract IdentityFunc
	switch cfg.Mode {
	case config.AuthModeALB:
		extract = fromALBHeader
	case config.AuthModeJWT:
		extract = fromBearerToken([]byte(cfg.JWTSecret))
	case config.AuthModeDev:
		dev := entities.Customer{Name: cfg.DevName, CPF: cfg.DevCPF}
		extract = func(*gin.Context) (entities.Customer, error) { return dev, nil }
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
	return Identity(extract, log), nil
}

// Identity aborts with 401 when extract fails.
func Identity(extract IdentityFunc, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := extract(c)
		if err != nil {
			log.Info("[http][auth] rejected request", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}
		c.Set(identityKey, customer)
		c.Next()
	}
}

// CustomerFrom returns the identity stored by the middleware.
func CustomerFrom(c *gin.Context) (entities.Customer, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entities.Customer{}, false
	}
	customer, ok := v.(entities.Customer)
	return customer, ok
}

// fromALBHeader trusts the load balancer: the token was verified before it
// reached the service, so only the claims are decoded.
func fromALBHeader(c *gin.Context) (entities.Customer, error) {
	raw := strings.TrimSpace(c.GetHeader(HeaderALBIdentity))
	if raw == "" {
		return entities.Customer{}, errMissingToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return entities.Customer{}, fmt.Errorf("decode alb token: %w", err)
	}
	return customerFromClaims(claims)
}

func fromBearerToken(secret []byte) IdentityFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(c *gin.Context) (entities.Customer, error) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return entities.Customer{}, errMissingToken
		}

		claims := jwt.MapClaims{}
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			return entities.Customer{}, fmt.Errorf("verify bearer token: %w", err)
		}
		return customerFromClaims(claims)
	}
}

func customerFromClaims(claims jwt.MapClaims) (entities.Customer, error) {
	name, _ := claims[ClaimName].(string)
	cpf, _ := claims[ClaimCPF].(string)
	if strings.TrimSpace(name) == "" || !valueobjects.IsValidCPF(cpf) {
		return entities.Customer{}, errInvalidClaims
	}
	return entities.Customer{Name: strings.TrimSpace(name), CPF: cpf}, nil
}
