package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	authmw "github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
	"github.com/Skotchmaster/inventory/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

// foreignOwner reports whether an authenticated caller names another
// account's id. Malformed ids are left for the service to reject.
func foreignOwner(c echo.Context, raw string) bool {
	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return false
	}
	id, err := service.ParseID(raw)
	return err == nil && id != p.AccountID
}

// callerOf prefers the authenticated principal and falls back to the
// ownerId query parameter for unauthenticated clients. The fallback is a
// claim, not proof; strict delete never reaches here without a principal.
func callerOf(c echo.Context) string {
	if p, ok := authmw.PrincipalFrom(c); ok {
		return p.AccountID.String()
	}
	return c.QueryParam("ownerId")
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	owner := c.Param("ownerId")
	if foreignOwner(c, owner) {
		l.Info("list_products_empty", "reason", "owner differs from principal")
		return c.JSON(http.StatusOK, []models.Product{})
	}

	items, err := h.Svc.List(ctx, owner)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	owner := c.Param("ownerId")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	if foreignOwner(c, owner) {
		l.Info("search_products_empty", "reason", "owner differs from principal")
		return c.JSON(http.StatusOK, service.SearchResult{Products: []models.Product{}})
	}

	res, err := h.Svc.Search(ctx, owner, c.QueryParam("q"), from, limit)
	if err != nil {
		return httpError(err)
	}

	l.Info("search_products_success", "total", res.Total)
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	owner := strings.TrimSpace(req.OwnerID)
	if p, ok := authmw.PrincipalFrom(c); ok {
		if owner == "" {
			owner = p.AccountID.String()
		} else if foreignOwner(c, owner) {
			l.Warn("create_product_error", "status", 403, "reason", "owner differs from principal")
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}

	prod, err := h.Svc.Create(ctx, owner, req.Input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.Update(ctx, callerOf(c), c.Param("id"), req.Patch())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Delete(ctx, callerOf(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}
