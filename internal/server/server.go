// Package server exposes the weighbridge terminal over HTTP so remote
// dashboards and the CLI can drive weighings without sitting at the scale.
package server

import (
	"context"
	"errors"
	"strings"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/scale"
	"github.com/example/weighbridge/internal/service"
	"github.com/gofiber/fiber/v2"
)

// Config carries the listener settings.
type Config struct {
	Addr      string
	JWTSecret string
}

// Server wires the ledger, scale reader and storage behind a Fiber app.
type Server struct {
	app      *fiber.App
	store    service.Storage
	ledger   *ledger.Ledger
	recovery *ledger.Recovery
	reader   *scale.Reader
	cfg      Config
}

func New(cfg Config, store service.Storage, l *ledger.Ledger, reader *scale.Reader) *Server {
	s := &Server{
		store:    store,
		ledger:   l,
		recovery: ledger.NewRecovery(store),
		reader:   reader,
		cfg:      cfg,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "weighbridge",
		ErrorHandler: errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/health", s.handleHealth)
	api.Post("/auth/login", s.handleLogin)

	auth := api.Group("", s.authMiddleware)
	auth.Post("/auth/logout", s.handleLogout)

	auth.Get("/scale/weight", s.handleWeight)
	auth.Get("/scale/log", s.handleRawLog)
	auth.Post("/scale/connect", s.handleConnect)
	auth.Post("/scale/disconnect", s.handleDisconnect)

	auth.Post("/weighings", s.handleOpenWeighing)
	auth.Post("/weighings/:id/complete", s.handleCompleteWeighing)
	auth.Get("/weighings/pending", s.handleListPending)
	auth.Get("/weighings/completed", s.handleListCompleted)
	auth.Get("/weighings/:id", s.handleGetWeighing)
	auth.Get("/weighings/:id/ticket", s.handleTicket)

	auth.Get("/reports/summary", s.handleSummary)
	auth.Get("/reports/export.csv", s.handleExportCSV)

	auth.Get("/drafts/:direction", s.handleGetDraft)
	auth.Put("/drafts/:direction", s.handlePutDraft)
	auth.Delete("/drafts/:direction", s.handleClearDraft)
	auth.Get("/active/:direction", s.handleGetActive)
	auth.Put("/active/:direction", s.handlePutActive)
	auth.Delete("/active/:direction", s.handleClearActive)

	auth.Get("/master", s.handleGetMaster)
	auth.Get("/config/app", s.handleGetAppConfig)
	auth.Get("/config/serial", s.handleGetSerialConfig)

	master := auth.Group("", requireMaster)
	master.Put("/master", s.handlePutMaster)
	master.Put("/config/app", s.handlePutAppConfig)
	master.Put("/config/serial", s.handlePutSerialConfig)
	master.Get("/backup", s.handleBackup)
	master.Post("/restore", s.handleRestore)
	master.Post("/reset", s.handleReset)
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen() error {
	common.LogInfo("http server listening", common.Fields{"addr": s.cfg.Addr})
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "scale_connected": s.reader.Connected()})
}

// errorHandler is the Fiber-level fallback for errors handlers return raw.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return apiError(c, err)
}

// apiError maps domain errors onto HTTP statuses and keeps operator-facing
// messages intact.
func apiError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, common.ErrDuplicatePending),
		errors.Is(err, common.ErrAlreadyCompleted),
		errors.Is(err, common.ErrDuplicateEntry):
		status = fiber.StatusConflict
	case errors.Is(err, common.ErrEmptyPlate),
		errors.Is(err, common.ErrWeightTooLow),
		errors.Is(err, common.ErrPINFormat),
		errors.Is(err, common.ErrInvalidConfig):
		status = fiber.StatusBadRequest
	case errors.Is(err, common.ErrInvalidPIN):
		status = fiber.StatusUnauthorized
	case errors.Is(err, common.ErrDeviceUnavailable):
		status = fiber.StatusServiceUnavailable
	}

	msg := err.Error()
	var ue *common.UserError
	if errors.As(err, &ue) {
		msg = ue.UserMessage
	}
	if status == fiber.StatusInternalServerError {
		common.LogError(err, "request failed", common.Fields{"path": c.Path()})
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// loadMasterData returns the stored master data, falling back to the seed set.
func (s *Server) loadMasterData(ctx context.Context) model.MasterData {
	master := model.DefaultMasterData()
	if _, err := s.store.GetBlob(ctx, service.BlobMasterData, &master); err != nil {
		common.LogError(err, "failed to load master data", nil)
	}
	return master
}

func (s *Server) loadAppConfig(ctx context.Context) model.AppConfig {
	cfg := model.DefaultAppConfig()
	if _, err := s.store.GetBlob(ctx, service.BlobAppConfig, &cfg); err != nil {
		common.LogError(err, "failed to load app config", nil)
	}
	return cfg
}

func (s *Server) loadSerialConfig(ctx context.Context) model.SerialConfig {
	cfg := model.DefaultSerialConfig()
	if _, err := s.store.GetBlob(ctx, service.BlobSerialConfig, &cfg); err != nil {
		common.LogError(err, "failed to load serial config", nil)
	}
	return cfg
}

// parseDirectionParam accepts both the canonical direction names and the
// short ticket prefixes used in URLs.
func parseDirectionParam(c *fiber.Ctx, name string) (model.Direction, error) {
	switch strings.ToUpper(c.Params(name)) {
	case "OUT", string(model.DirectionOutbound):
		return model.DirectionOutbound, nil
	case "IN", string(model.DirectionInbound):
		return model.DirectionInbound, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "direction must be 'out' or 'in'")
}
