package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type createProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	CountInStock int     `json:"countInStock" validate:"gte=0"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		CountInStock: req.CountInStock,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

type productPage struct {
	Products []*entity.Product `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Count    int               `json:"count"`
}

// GetProducts lists the catalog newest first, optionally filtered by ?category=.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.productUseCase.ListProducts(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	page, pages := utils.Paginate(products, params)

	return response.Success(c, productPage{
		Products: page,
		Page:     params.Page,
		Pages:    pages,
		Count:    len(products),
	})
}
