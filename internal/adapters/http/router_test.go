package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	_ "github.com/rafaelleal24/product-catalog/docs"
	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	adapthttp "github.com/rafaelleal24/product-catalog/internal/adapters/http"
	"github.com/rafaelleal24/product-catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/product-catalog/internal/adapters/metrics"
	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/port/mock"
	"github.com/rafaelleal24/product-catalog/internal/core/service"
	"github.com/rafaelleal24/product-catalog/internal/core/validation"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	repo := mock.NewMockProductPort(ctrl)
	repo.EXPECT().GetAll(gomock.Any()).Return([]*domain.Product{}, nil).AnyTimes()

	v, err := validation.NewValidator(nil)
	require.NoError(t, err)

	router := adapthttp.NewRouter(
		controllers.NewHealthController(nil),
		controllers.NewProductController(service.NewProductService(repo, mock.NewMockTransactionManager(ctrl), v, nil)),
		nil,
		metrics.New(),
		config.CatalogConfig{CreateRateLimit: 30, RateLimitWindow: time.Minute},
	)
	return router.Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter(t *testing.T) {
	h := newHandler(t)

	t.Run("root", func(t *testing.T) {
		w := get(h, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"Hello":"World"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("health without checkers", func(t *testing.T) {
		w := get(h, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list products", func(t *testing.T) {
		w := get(h, "/api/products")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"products":[]}`, w.Body.String())
	})

	t.Run("openapi document", func(t *testing.T) {
		w := get(h, "/swagger/doc.json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/api/products")
		assert.Contains(t, w.Body.String(), "Product Catalog API")
	})

	t.Run("metrics record served routes", func(t *testing.T) {
		w := get(h, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `catalog_http_requests_total`)
		assert.Contains(t, w.Body.String(), `route="/api/products"`)
	})

	t.Run("unknown route is 404", func(t *testing.T) {
		w := get(h, "/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
