package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxOperatorKey = "operator"
	ctxRoleKey     = "role"

	tokenTTL = 24 * time.Hour
)

type sessionClaims struct {
	OperatorID string     `json:"operator_id"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) generateToken(op *model.Operator) (string, error) {
	claims := &sessionClaims{
		OperatorID: op.ID,
		Name:       op.Name,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

type loginRequest struct {
	PIN string `json:"pin"`
}

// handleLogin exchanges an operator PIN for a session token.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	master := s.loadMasterData(c.Context())
	op, err := master.OperatorByPIN(req.PIN)
	if err != nil {
		return apiError(c, err)
	}

	token, err := s.generateToken(op)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	// Remember who is signed in so a terminal restart resumes the session.
	session := model.Session{Operator: *op, IssuedAt: time.Now()}
	if err := s.store.PutBlob(c.Context(), service.BlobSession, session); err != nil {
		common.LogError(err, "failed to persist session", common.Fields{"operator": op.Name})
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"operator": fiber.Map{"id": op.ID, "name": op.Name, "role": op.Role},
	})
}

// handleLogout drops the persisted session.
func (s *Server) handleLogout(c *fiber.Ctx) error {
	if err := s.store.DeleteBlob(c.Context(), service.BlobSession); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// authMiddleware validates the bearer token and stashes the operator
// identity on the request context.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return fiber.NewError(fiber.StatusUnauthorized, "authorization must be 'Bearer <token>'")
	}

	token, err := jwt.ParseWithClaims(parts[1], &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "malformed token claims")
	}

	c.Locals(ctxOperatorKey, model.Operator{ID: claims.OperatorID, Name: claims.Name, Role: claims.Role})
	c.Locals(ctxRoleKey, claims.Role)
	return c.Next()
}

// requireMaster gates master-data, configuration and reset routes.
func requireMaster(c *fiber.Ctx) error {
	role, ok := c.Locals(ctxRoleKey).(model.Role)
	if !ok || role != model.RoleMaster {
		return fiber.NewError(fiber.StatusForbidden, "master role required")
	}
	return c.Next()
}

func currentOperator(c *fiber.Ctx) model.Operator {
	op, _ := c.Locals(ctxOperatorKey).(model.Operator)
	return op
}
