package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafaelleal24/product-catalog/internal/adapters/http/handlers"
	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/dto"
	"github.com/rafaelleal24/product-catalog/internal/core/service"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type ProductController struct {
	productService *service.ProductService
	now            func() time.Time
}

type ProductResponse struct {
	ID       int64   `json:"id" example:"1"`
	Name     string  `json:"name" example:"Rice"`
	SKU      string  `json:"sku" example:"FOOD001"`
	Price    float64 `json:"price" example:"10.5"`
	Stock    int     `json:"stock" example:"100"`
	Category string  `json:"category" example:"อาหาร"`
}

type CreateProductResponse struct {
	ProductResponse
	Timestamp string `json:"timestamp" example:"2024-05-01T12:00:00+07:00"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:       int64(product.ID),
		Name:     product.Name,
		SKU:      product.SKU,
		Price:    product.Price,
		Stock:    product.Stock,
		Category: string(product.Category),
	}
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService, now: time.Now}
}

// CreateProduct godoc
// @Summary     Create a product
// @Description Validates and stores a new product. SKUs are unique.
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key header   string                   false "Replays the first response for repeated requests"
// @Param       request         body     dto.CreateProductRequest true  "Product data"
// @Success     200             {object} CreateProductResponse
// @Failure     400             {object} handlers.ErrorResponse
// @Failure     409             {object} handlers.ErrorResponse
// @Failure     422             {object} handlers.ValidationErrorResponse
// @Failure     429             {object} handlers.ErrorResponse
// @Failure     500             {object} handlers.ErrorResponse
// @Router      /api/products [post]
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var request dto.CreateProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, bindError(err))
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), c.GetHeader(IdempotencyKeyHeader), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateProductResponse{
		ProductResponse: NewProductResponse(product),
		Timestamp:       pc.now().Format(time.RFC3339),
	})
}

// GetAll godoc
// @Summary     List all products
// @Description Returns every stored product ordered by id
// @Tags        products
// @Produce     json
// @Success     200 {object} ListProductsResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /api/products [get]
func (pc *ProductController) GetAll(c *gin.Context) {
	products, err := pc.productService.GetAll(c.Request.Context())
	if err != nil {
		handlers.HandleError(c, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, product := range products {
		response[i] = NewProductResponse(product)
	}

	c.JSON(http.StatusOK, ListProductsResponse{Products: response})
}

// bindError reports a value of the wrong JSON type as a validation failure on
// that field. Anything else means the body is not a JSON object.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return serviceerrors.NewValidationError([]serviceerrors.FieldError{{
			Field: typeErr.Field,
			Error: fmt.Sprintf("%s must be %s", typeErr.Field, jsonTypeName(typeErr.Type)),
		}})
	}
	return serviceerrors.NewInvalidRequestError("request body must be a valid JSON object")
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid value"
	}
}
