package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db  *gorm.DB
	dir domain.Directory
}

func NewAuditLogsHandler(db *gorm.DB, dir domain.Directory) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, dir: dir}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	shopID := c.Param("id")

	shop, err := h.dir.GetShop(c.Request.Context(), shopID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if actor.Role != domain.RoleAdmin &&
		!(actor.Role == domain.RoleShopOwner && shop.OwnerID == actor.ID) {
		httperr.Respond(c, httperr.Forbidden("not_shop_owner"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	// --------------------------------------------------
	// Base query, always scoped to the shop
	// --------------------------------------------------

	q := h.db.
		WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("shop_id = ?", shop.ID)

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}

	if entityID := c.Query("entity_id"); entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse(timezone.DateLayout, fromStr); err == nil {
			q = q.Where("created_at >= ?", from)
		}
	}

	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse(timezone.DateLayout, toStr); err == nil {
			q = q.Where("created_at < ?", to.Add(24*time.Hour))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, httperr.Upstream("audit_count_failed", err))
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, httperr.Upstream("audit_list_failed", err))
		return
	}

	c.JSON(200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
