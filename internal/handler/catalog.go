package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
)

// CatalogHandler serves /api/categories and /api/products.
type CatalogHandler struct {
	Categories *repository.CategoryRepo
	Products   *repository.ProductRepo
}

// parsePrice accepts a JSON number or numeric string and normalises it to
// two decimals.  Negative values are rejected.
func parsePrice(n json.Number) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || f < 0 {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', 2, 64), true
}

// ----- categories -----

type categoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (r categoryReq) toModel() (model.Category, bool) {
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		return model.Category{}, false
	}
	return model.Category{Name: strings.TrimSpace(*r.Name), Description: r.Description, ImageURL: r.ImageURL}, true
}

// ListCategories: GET /api/categories
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Categories.List(ctx)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, list)
}

// GetCategory: GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, cat)
}

// CreateCategory: POST /api/categories
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, valid := req.toModel()
	if !valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	created, err := h.Categories.Create(ctx, cat)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusCreated, created)
}

// CreateCategories: POST /api/categories/bulk with {"categories": [...]}.
// All rows are written in one transaction.
func (h *CatalogHandler) CreateCategories(c echo.Context) error {
	var req struct {
		Categories []categoryReq `json:"categories"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Categories) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categories array is required and must not be empty"})
	}
	cats := make([]model.Category, 0, len(req.Categories))
	for _, r := range req.Categories {
		cat, valid := r.toModel()
		if !valid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each category must have a name"})
		}
		cats = append(cats, cat)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	created, err := h.Categories.CreateBulk(ctx, cats)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    created,
		"message": fmt.Sprintf("%d categories created successfully", len(created)),
	})
}

// UpdateCategory: PUT /api/categories/:id
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		cat.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		cat.Description = req.Description
	}
	if req.ImageURL != nil {
		cat.ImageURL = req.ImageURL
	}
	updated, err := h.Categories.Update(ctx, cat)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// DeleteCategory: DELETE /api/categories/:id
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Categories.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Category deleted"})
}

// ----- products -----

type productReq struct {
	Name         *string      `json:"name"`
	Description  *string      `json:"description"`
	Price        *json.Number `json:"price"`
	ImageURL     *string      `json:"image_url"`
	IsAvailable  *bool        `json:"is_available"`
	IsOutOfStock *bool        `json:"is_out_of_stock"`
	CategoryID   *uint64      `json:"category_id"`
}

// apply copies the provided fields onto p.
func (r productReq) apply(p *model.Product) error {
	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			return errors.New("name must not be empty")
		}
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Price != nil {
		price, valid := parsePrice(*r.Price)
		if !valid {
			return errors.New("price must be a non-negative number")
		}
		p.Price = price
	}
	if r.ImageURL != nil {
		p.ImageURL = r.ImageURL
	}
	if r.IsAvailable != nil {
		p.IsAvailable = *r.IsAvailable
	}
	if r.IsOutOfStock != nil {
		p.IsOutOfStock = *r.IsOutOfStock
	}
	if r.CategoryID != nil {
		p.CategoryID = *r.CategoryID
	}
	return nil
}

func (r productReq) toModel() (model.Product, error) {
	if r.Name == nil || r.Price == nil || r.CategoryID == nil {
		return model.Product{}, errors.New("name, price, and category_id are required")
	}
	p := model.Product{IsAvailable: true}
	if err := r.apply(&p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// productFilter parses ?available= and ?outOfStock=.  Values other than
// "true" count as false, the way the query flags have always behaved.
func productFilter(c echo.Context) model.ProductFilter {
	var f model.ProductFilter
	if v, present := c.QueryParams()["available"]; present {
		b := v[0] == "true"
		f.Available = &b
	}
	if v, present := c.QueryParams()["outOfStock"]; present {
		b := v[0] == "true"
		f.OutOfStock = &b
	}
	return f
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListProducts: GET /api/products[?category=&available=&outOfStock=]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	f := productFilter(c)
	category := c.QueryParam("category")
	if category != "" {
		id, err := strconv.ParseUint(category, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		f.CategoryID = &id
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Products.List(ctx, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    list,
		"count":   len(list),
		"filters": echo.Map{
			"category":   nullable(category),
			"available":  nullable(c.QueryParam("available")),
			"outOfStock": nullable(c.QueryParam("outOfStock")),
		},
	})
}

// ListProductsByCategory: GET /api/products/category/:categoryId
func (h *CatalogHandler) ListProductsByCategory(c echo.Context) error {
	id, valid := parseID(c, "categoryId")
	if !valid {
		return badID(c)
	}
	f := productFilter(c)
	f.CategoryID = &id

	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Products.List(ctx, f)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": list, "message": "No products found for this category"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": list, "count": len(list)})
}

// GetProduct: GET /api/products/:id
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, p)
}

// CreateProduct: POST /api/products
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	created, err := h.Products.Create(ctx, p)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusCreated, created)
}

// CreateProducts: POST /api/products/bulk with {"products": [...]}.
// One invalid row rejects the whole batch.
func (h *CatalogHandler) CreateProducts(c echo.Context) error {
	var req struct {
		Products []productReq `json:"products"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "products array is required and must not be empty"})
	}
	products := make([]model.Product, 0, len(req.Products))
	for i, r := range req.Products {
		p, err := r.toModel()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("product %d: %v", i, err)})
		}
		products = append(products, p)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	created, err := h.Products.CreateBulk(ctx, products)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    created,
		"message": fmt.Sprintf("%d products created successfully", len(created)),
	})
}

// UpdateProduct: PUT /api/products/:id
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if err := req.apply(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	updated, err := h.Products.Update(ctx, p)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// DeleteProduct: DELETE /api/products/:id
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product deleted"})
}
