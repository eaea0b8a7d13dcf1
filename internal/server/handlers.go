package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/report"
	"github.com/example/weighbridge/internal/service"
	"github.com/example/weighbridge/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// ---- scale ----

func (s *Server) handleWeight(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"weight":    s.reader.CurrentWeight(),
		"connected": s.reader.Connected(),
	})
}

func (s *Server) handleRawLog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"lines": s.reader.RawLog()})
}

func (s *Server) handleConnect(c *fiber.Ctx) error {
	cfg := s.loadSerialConfig(c.Context())
	if err := s.reader.Start(cfg); err != nil {
		return apiError(c, err)
	}
	return c.JSON(fiber.Map{"connected": true})
}

func (s *Server) handleDisconnect(c *fiber.Ctx) error {
	s.reader.Stop()
	return c.JSON(fiber.Map{"connected": false})
}

// ---- weighings ----

type openWeighingRequest struct {
	Direction   string `json:"direction"`
	PlateNumber string `json:"plateNumber"`
	DriverName  string `json:"driverName"`
	CargoType   string `json:"cargoType"`
	PartyName   string `json:"partyName"`
	// Weight overrides the live scale reading when set; manual entry only.
	Weight int64 `json:"weight"`
}

func (s *Server) handleOpenWeighing(c *fiber.Ctx) error {
	var req openWeighingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "direction must be OUTBOUND or INBOUND")
	}

	weight := req.Weight
	if weight == 0 {
		weight = s.reader.CurrentWeight()
	}

	tx, err := s.ledger.Open(c.Context(), ledger.OpenRequest{
		Direction:   direction,
		PlateNumber: req.PlateNumber,
		DriverName:  req.DriverName,
		CargoType:   req.CargoType,
		PartyName:   req.PartyName,
		Weight:      weight,
		Operator:    currentOperator(c),
	})
	if err != nil {
		return apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

type completeWeighingRequest struct {
	Weight int64 `json:"weight"`
}

func (s *Server) handleCompleteWeighing(c *fiber.Ctx) error {
	var req completeWeighingRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	weight := req.Weight
	if weight == 0 {
		weight = s.reader.CurrentWeight()
	}

	tx, err := s.ledger.Close(c.Context(), c.Params("id"), weight)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(tx)
}

func (s *Server) handleListPending(c *fiber.Ctx) error {
	direction, err := queryDirection(c)
	if err != nil {
		return err
	}
	txs, err := s.ledger.ListPending(c.Context(), direction)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(txs)
}

func (s *Server) handleListCompleted(c *fiber.Ctx) error {
	direction, err := queryDirection(c)
	if err != nil {
		return err
	}
	txs, err := s.ledger.ListCompleted(c.Context(), direction, c.Query("search"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(txs)
}

func (s *Server) handleGetWeighing(c *fiber.Ctx) error {
	tx, err := s.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(tx)
}

func (s *Server) handleTicket(c *fiber.Ctx) error {
	tx, err := s.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return apiError(c, err)
	}
	if !tx.Completed() {
		return fiber.NewError(fiber.StatusConflict, "ticket is only printable for completed weighings")
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(report.RenderTicket(tx, s.loadAppConfig(c.Context())))
}

// ---- reports ----

func (s *Server) handleSummary(c *fiber.Ctx) error {
	direction, err := queryDirection(c)
	if err != nil {
		return err
	}
	txs, err := s.ledger.ListCompleted(c.Context(), direction, c.Query("search"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(report.Summarize(txs))
}

func (s *Server) handleExportCSV(c *fiber.Ctx) error {
	direction, err := queryDirection(c)
	if err != nil {
		return err
	}
	txs, err := s.ledger.ListCompleted(c.Context(), direction, c.Query("search"))
	if err != nil {
		return apiError(c, err)
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, txs); err != nil {
		return apiError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="laporan-timbangan.csv"`)
	return c.Send(buf.Bytes())
}

// ---- drafts and active selections ----

func (s *Server) handleGetDraft(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	draft, found, err := s.recovery.LoadDraft(c.Context(), direction)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(fiber.Map{"draft": draft, "found": found})
}

func (s *Server) handlePutDraft(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	var draft ledger.Draft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.recovery.SaveDraft(c.Context(), direction, draft); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleClearDraft(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	if err := s.recovery.ClearDraft(c.Context(), direction); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetActive(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	id, found, err := s.recovery.Active(c.Context(), direction)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "found": found})
}

type activeSelection struct {
	ID string `json:"id"`
}

func (s *Server) handlePutActive(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	var sel activeSelection
	if err := c.BodyParser(&sel); err != nil || sel.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "selection id is required")
	}

	// Only an existing pending transaction of this direction is selectable.
	tx, err := s.ledger.Get(c.Context(), sel.ID)
	if err != nil {
		return apiError(c, err)
	}
	if tx.Completed() || tx.Direction != direction {
		return fiber.NewError(fiber.StatusConflict, "selection must be a pending weighing of this direction")
	}

	if err := s.recovery.SelectActive(c.Context(), direction, sel.ID); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleClearActive(c *fiber.Ctx) error {
	direction, err := parseDirectionParam(c, "direction")
	if err != nil {
		return err
	}
	if err := s.recovery.ClearActive(c.Context(), direction); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- master data and configuration ----

func (s *Server) handleGetMaster(c *fiber.Ctx) error {
	return c.JSON(s.loadMasterData(c.Context()))
}

func (s *Server) handlePutMaster(c *fiber.Ctx) error {
	var master model.MasterData
	if err := c.BodyParser(&master); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateMasterData(&master); err != nil {
		return apiError(c, err)
	}
	if err := s.store.PutBlob(c.Context(), service.BlobMasterData, master); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validateMasterData rejects replacements that would lock everyone out.
func validateMasterData(m *model.MasterData) error {
	hasMaster := false
	for _, op := range m.Operators {
		if err := model.ValidatePIN(op.PIN); err != nil {
			return fmt.Errorf("operator %s: %w", op.Name, err)
		}
		if op.Role == model.RoleMaster {
			hasMaster = true
		}
	}
	if !hasMaster {
		return fmt.Errorf("%w: at least one master operator is required", common.ErrInvalidConfig)
	}
	return nil
}

func (s *Server) handleGetAppConfig(c *fiber.Ctx) error {
	return c.JSON(s.loadAppConfig(c.Context()))
}

func (s *Server) handlePutAppConfig(c *fiber.Ctx) error {
	var cfg model.AppConfig
	if err := c.BodyParser(&cfg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.store.PutBlob(c.Context(), service.BlobAppConfig, cfg); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetSerialConfig(c *fiber.Ctx) error {
	return c.JSON(s.loadSerialConfig(c.Context()))
}

func (s *Server) handlePutSerialConfig(c *fiber.Ctx) error {
	var cfg model.SerialConfig
	if err := c.BodyParser(&cfg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := cfg.Validate(); err != nil {
		return apiError(c, err)
	}
	if err := s.store.PutBlob(c.Context(), service.BlobSerialConfig, cfg); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- backup, restore, reset ----

// snapshotter is the optional storage upgrade for full-state export; the
// sqlite storage implements it.
type snapshotter interface {
	Snapshot(ctx context.Context) (*storage.Backup, error)
	Restore(ctx context.Context, b *storage.Backup) error
}

func (s *Server) handleBackup(c *fiber.Ctx) error {
	bs, ok := s.store.(snapshotter)
	if !ok {
		return fiber.NewError(fiber.StatusNotImplemented, "storage does not support backups")
	}
	b, err := bs.Snapshot(c.Context())
	if err != nil {
		return apiError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="weighbridge-backup.json"`)
	return c.JSON(b)
}

func (s *Server) handleRestore(c *fiber.Ctx) error {
	bs, ok := s.store.(snapshotter)
	if !ok {
		return fiber.NewError(fiber.StatusNotImplemented, "storage does not support backups")
	}
	var b storage.Backup
	if err := c.BodyParser(&b); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid backup payload")
	}
	if err := bs.Restore(c.Context(), &b); err != nil {
		return apiError(c, err)
	}
	common.LogInfo("backup restored", common.Fields{
		"transactions": len(b.Transactions),
		"operator":     currentOperator(c).Name,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	if err := s.ledger.ClearAll(c.Context()); err != nil {
		return apiError(c, err)
	}
	common.LogInfo("ledger reset", common.Fields{"operator": currentOperator(c).Name})
	return c.SendStatus(fiber.StatusNoContent)
}

func queryDirection(c *fiber.Ctx) (model.Direction, error) {
	raw := c.Query("direction", string(model.DirectionOutbound))
	switch model.NormalizeName(raw) {
	case "OUT", string(model.DirectionOutbound):
		return model.DirectionOutbound, nil
	case "IN", string(model.DirectionInbound):
		return model.DirectionInbound, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "direction must be 'out' or 'in'")
}
