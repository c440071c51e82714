package usecase

import (
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/pkg/jwt"
)

// TokenValidator resolves a bearer token into the actor that engine
// operations run as.
type TokenValidator interface {
	ValidateToken(tokenString string) (user.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (user.Actor, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return user.Actor{}, errs.Wrapf(err, "token role %q", claims.Role)
	}

	return user.NewActor(claims.UserID, role), nil
}
