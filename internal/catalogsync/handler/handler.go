// Package handler exposes sync triggers and the latest inventory over HTTP.
package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/bjorheimar/catalog-sync/internal/auth"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/trigger"
	"github.com/bjorheimar/catalog-sync/internal/inventory"
	invDTO "github.com/bjorheimar/catalog-sync/internal/inventory/dto"
	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/bjorheimar/catalog-sync/internal/store"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Dispatcher interface {
	Run(ctx context.Context, req trigger.Request) (*dto.SyncSummary, error)
}

type SyncHandler struct {
	dispatcher Dispatcher
	stores     store.Repository
	inventory  inventory.Repository
	logger     logger.Logger
}

func NewSyncHandler(d Dispatcher, stores store.Repository, inv inventory.Repository, log logger.Logger) *SyncHandler {
	return &SyncHandler{dispatcher: d, stores: stores, inventory: inv, logger: log}
}

// Register mounts the routes. Every trigger route requires a bearer token
// signed with secret.
func (h *SyncHandler) Register(r fiber.Router, secret string) {
	r.Get("/healthz", h.Health)
	r.Get("/store/:externalId/inventory", h.StoreInventory)

	jwt := JWTMiddleware(secret)
	r.Post("/sync", jwt, h.trigger(catalogsync.ScopeCatalog))
	r.Post("/sync/products", jwt, h.trigger(catalogsync.ScopeProducts))
	r.Post("/sync/stores", jwt, h.trigger(catalogsync.ScopeStores))
	r.Post("/store/:externalId/sync", jwt, h.SyncStore)
}

func (h *SyncHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *SyncHandler) trigger(scope catalogsync.Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.run(c, trigger.Request{Scope: scope})
	}
}

func (h *SyncHandler) SyncStore(c *fiber.Ctx) error {
	return h.run(c, trigger.Request{Scope: catalogsync.ScopeInventory, StoreExternalID: c.Params("externalId")})
}

func (h *SyncHandler) run(c *fiber.Ctx, req trigger.Request) error {
	summary, err := h.dispatcher.Run(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

type storeInventoryResponse struct {
	Store   *model.Store           `json:"store"`
	Entries []model.InventoryEntry `json:"entries"`
}

// StoreInventory returns the store with its hours and current snapshot.
// ?available=true drops entries not available in stores.
func (h *SyncHandler) StoreInventory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	st, err := h.stores.FindByExternalID(ctx, c.Params("externalId"))
	if err != nil {
		return err
	}
	if st == nil {
		return catalogsync.ErrStoreNotFound
	}
	if st.Hours, err = h.stores.FindHours(ctx, st.ID); err != nil {
		return err
	}

	entries, err := h.inventory.FindLatest(ctx, &invDTO.LatestFilters{
		StoreID:       st.ID,
		AvailableOnly: c.QueryBool("available"),
	})
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []model.InventoryEntry{}
	}
	return c.JSON(storeInventoryResponse{Store: st, Entries: entries})
}

// JWTMiddleware accepts "Authorization: Bearer <token>" signed with secret and
// stores the token subject as the requester.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization must be 'Bearer <token>'")
		}

		claims, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.SetUserContext(auth.WithSubject(c.UserContext(), claims.Subject))
		return c.Next()
	}
}

// StatusFor maps sync errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		fiberErr      *fiber.Error
		upstreamErr   *catalogsync.UpstreamFetchError
		validationErr *catalogsync.ValidationError
		provErr       *catalogsync.ProvisioningError
		hoursErr      *catalogsync.HoursParseError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, trigger.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, catalogsync.ErrStoreNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, trigger.ErrMissingStore):
		return fiber.StatusBadRequest
	case errors.As(err, &validationErr), errors.As(err, &provErr), errors.As(err, &hoursErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &upstreamErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
