package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mtofleet/fleet-backend/api/routes"
)

func newTestLoader(authCalled *bool) (*gin.Engine, *routes.Loader) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	auth := func(c *gin.Context) {
		if authCalled != nil {
			*authCalled = true
		}
		c.Next()
	}
	return engine, routes.NewLoader(auth)
}

func doRequest(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestLoadServiceUnknown(t *testing.T) {
	engine, loader := newTestLoader(nil)

	_, err := loader.LoadService(engine, "nonsense", nil)
	assert.Error(t, err)

	var cfgErr *routes.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "nonsense", cfgErr.Service)
}

func TestLoadServiceStubsMissingHandlers(t *testing.T) {
	assert := assert.New(t)
	engine, loader := newTestLoader(nil)

	_, err := loader.LoadService(engine, "drivers", routes.HandlerSet{})
	assert.NoError(err)

	w := doRequest(engine, http.MethodGet, "/api/drivers/available")
	assert.Equal(http.StatusNotImplemented, w.Code)

	var body map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(false, body["success"])
	assert.Equal("drivers.available not implemented yet", body["message"])
}

func TestLoadServiceWiresHandlers(t *testing.T) {
	assert := assert.New(t)
	engine, loader := newTestLoader(nil)

	handled := false
	_, err := loader.LoadService(engine, "drivers", routes.HandlerSet{
		"available": func(c *gin.Context) {
			handled = true
			c.JSON(http.StatusOK, gin.H{"success": true})
		},
	})
	assert.NoError(err)

	w := doRequest(engine, http.MethodGet, "/api/drivers/available")
	assert.Equal(http.StatusOK, w.Code)
	assert.True(handled)
}

func TestLoadServiceAppliesAuthPerEndpoint(t *testing.T) {
	assert := assert.New(t)

	authCalled := false
	engine, loader := newTestLoader(&authCalled)
	_, err := loader.LoadService(engine, "auth", routes.HandlerSet{
		"login":  func(c *gin.Context) { c.Status(http.StatusOK) },
		"logout": func(c *gin.Context) { c.Status(http.StatusOK) },
	})
	assert.NoError(err)

	// login is configured AuthRequired=false.
	doRequest(engine, http.MethodPost, "/api/auth/login")
	assert.False(authCalled)

	doRequest(engine, http.MethodPost, "/api/auth/logout")
	assert.True(authCalled)
}

func TestLoadServiceRunsValidation(t *testing.T) {
	assert := assert.New(t)
	engine, loader := newTestLoader(nil)

	_, err := loader.LoadService(engine, "drivers", routes.HandlerSet{
		"get": func(c *gin.Context) { c.Status(http.StatusOK) },
	})
	assert.NoError(err)

	w := doRequest(engine, http.MethodGet, "/api/drivers/abc")
	assert.Equal(http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/drivers/7")
	assert.Equal(http.StatusOK, w.Code)
}

func TestLoadAllServicesCoversWholeTable(t *testing.T) {
	assert := assert.New(t)
	engine, loader := newTestLoader(nil)

	assert.NoError(loader.LoadAllServices(engine, nil))

	registered := routes.RegisteredRoutes()
	ginRoutes := engine.Routes()
	assert.Equal(len(registered), len(ginRoutes))

	// Every configured legacy endpoint answers 501 until its handler lands.
	w := doRequest(engine, http.MethodGet, "/api/mto/assignments")
	assert.Equal(http.StatusNotImplemented, w.Code)
}
