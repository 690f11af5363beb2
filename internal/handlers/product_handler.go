package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
	"royalfootwear/internal/services"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	productService services.ProductServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductQuery holds the catalog filters accepted on the query string.
type ProductQuery struct {
	Category   string `form:"category" binding:"omitempty,product_category"`
	Brand      string `form:"brand" binding:"max=100"`
	Search     string `form:"search" binding:"max=100"`
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`
	Featured   *bool  `form:"featured"`
	Discounted bool   `form:"discounted"`
	Stock      string `form:"stock" binding:"omitempty,oneof=in_stock out_of_stock"`
	Sort       string `form:"sort" binding:"omitempty,oneof=newest oldest price-low price-high rating name-asc name-desc"`
}

func (q ProductQuery) filter() (services.ProductFilter, error) {
	f := services.ProductFilter{
		Brand:      q.Brand,
		Search:     q.Search,
		Featured:   q.Featured,
		Discounted: q.Discounted,
		Sort:       q.Sort,
	}
	if q.Category != "" {
		c := models.ProductCategory(q.Category)
		f.Category = &c
	}
	if q.Stock != "" {
		inStock := q.Stock == "in_stock"
		f.InStock = &inStock
	}

	var err error
	if f.MinPrice, err = parsePrice("min_price", q.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice("max_price", q.MaxPrice); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+field)
	}
	return &d, nil
}

// StockQuery is the query of the stock check endpoint.
type StockQuery struct {
	Size     int `form:"size" binding:"required,gt=0"`
	Quantity int `form:"quantity" binding:"omitempty,gte=1"`
}

// ListProducts returns a filtered page of the catalog
// @Summary     List products
// @Description Filter, sort and paginate the catalog
// @Tags        products
// @Produce     json
// @Param       category   query string false "Category"
// @Param       brand      query string false "Brand"
// @Param       search     query string false "Matches name, description or brand"
// @Param       min_price  query number false "Minimum list price"
// @Param       max_price  query number false "Maximum list price"
// @Param       featured   query bool   false "Featured only"
// @Param       discounted query bool   false "Discounted only"
// @Param       stock      query string false "in_stock or out_of_stock"
// @Param       sort       query string false "newest, oldest, price-low, price-high, rating, name-asc, name-desc"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 12, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Product]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct returns one product
// @Summary     Get a product
// @Tags        products
// @Produce     json
// @Param       id path string true "Product ID"
// @Success     200 {object} models.Product
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetAvailableSizes returns the sizes of a product that are in stock
// @Summary     Available sizes
// @Tags        products
// @Produce     json
// @Param       id path string true "Product ID"
// @Success     200 {object} map[string][]int
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id}/sizes [get]
func (h *ProductHandler) GetAvailableSizes(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sizes, err := h.productService.AvailableSizes(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sizes": sizes})
}

// CheckStock reports whether a quantity of a size is in stock
// @Summary     Check stock
// @Tags        products
// @Produce     json
// @Param       id       path  string true  "Product ID"
// @Param       size     query int    true  "Size"
// @Param       quantity query int    false "Quantity (default 1)"
// @Success     200 {object} map[string]bool
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id}/stock [get]
func (h *ProductHandler) CheckStock(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if query.Quantity == 0 {
		query.Quantity = 1
	}

	inStock, err := h.productService.CheckStock(c.Request.Context(), id, query.Size, query.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_stock": inStock})
}

// ListBrands returns the distinct brands of the catalog
// @Summary     List brands
// @Tags        products
// @Produce     json
// @Success     200 {object} map[string][]string
// @Router      /products/brands [get]
func (h *ProductHandler) ListBrands(c *gin.Context) {
	brands, err := h.productService.ListBrands(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}
