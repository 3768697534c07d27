// api/routes/loader.go
package routes

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/middleware"
	"github.com/mtofleet/fleet-backend/internal/logger"
)

var customLog = logger.NewLogger()

// HandlerSet maps endpoint names of one service to their handlers. Endpoints
// without a handler are still registered, backed by a not-implemented stub, so
// the published surface never depends on implementation progress.
type HandlerSet map[string]gin.HandlerFunc

// RouteInfo describes one registered route for the discovery endpoint.
type RouteInfo struct {
	Service      string `json:"service"`
	Endpoint     string `json:"endpoint"`
	Path         string `json:"path"`
	Method       string `json:"method"`
	AuthRequired bool   `json:"authRequired"`
}

// ConfigurationError reports a request to load a service the endpoint table
// does not define.
type ConfigurationError struct {
	Service string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("service %q not found in endpoint configuration", e.Service)
}

// Loader assembles gin routes from the Services table.
type Loader struct {
	auth gin.HandlerFunc
}

// NewLoader builds a loader that applies the given middleware to every
// endpoint whose configuration demands authentication.
func NewLoader(auth gin.HandlerFunc) *Loader {
	return &Loader{auth: auth}
}

func notImplementedStub(service, endpoint string) gin.HandlerFunc {
	message := fmt.Sprintf("%s.%s not implemented yet", service, endpoint)
	return func(c *gin.Context) {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "message": message})
	}
}

// LoadService registers every endpoint of one configured service on r.
// The middleware chain per endpoint is: rate limit, auth, extra, validation,
// then the handler from the set, or a 501 stub when the set has none.
func (l *Loader) LoadService(r gin.IRouter, service string, handlers HandlerSet, extra ...gin.HandlerFunc) (*gin.RouterGroup, error) {
	svc, ok := Services[service]
	if !ok {
		return nil, &ConfigurationError{Service: service}
	}

	grp := r.Group(svc.BasePath)

	names := make([]string, 0, len(svc.Endpoints))
	for name := range svc.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ep := svc.Endpoints[name]

		chain := make([]gin.HandlerFunc, 0, 4+len(extra)+len(ep.Validation))
		if ep.RateLimit != nil {
			rl := middleware.NewRateLimiter(ep.RateLimit.Max, time.Duration(ep.RateLimit.WindowMs)*time.Millisecond)
			chain = append(chain, middleware.RateLimitMiddleware(rl))
		}
		if ep.AuthRequired {
			chain = append(chain, l.auth)
		}
		if len(ep.Roles) > 0 {
			chain = append(chain, middleware.RequireRoles(ep.Roles...))
		}
		chain = append(chain, extra...)
		chain = append(chain, ep.Validation...)

		handler, ok := handlers[name]
		if !ok {
			handler = notImplementedStub(service, name)
		}
		chain = append(chain, handler)

		grp.Handle(ep.Method, ep.Path, chain...)
	}

	customLog.Infof("RouteLoader: loaded service %s (%d endpoints) at %s", service, len(names), svc.BasePath)
	return grp, nil
}

// LoadAllServices registers every service in the table, in sorted order so
// registration is deterministic. Services absent from handlerSets come up
// entirely as stubs.
func (l *Loader) LoadAllServices(r gin.IRouter, handlerSets map[string]HandlerSet) error {
	names := make([]string, 0, len(Services))
	for name := range Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := l.LoadService(r, name, handlerSets[name]); err != nil {
			return err
		}
	}
	return nil
}

// RegisteredRoutes projects the endpoint table into a flat, sorted route list.
func RegisteredRoutes() []RouteInfo {
	routes := make([]RouteInfo, 0, 64)
	for svcName, svc := range Services {
		for epName, ep := range svc.Endpoints {
			routes = append(routes, RouteInfo{
				Service:      svcName,
				Endpoint:     epName,
				Path:         svc.BasePath + ep.Path,
				Method:       ep.Method,
				AuthRequired: ep.AuthRequired,
			})
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Service != routes[j].Service {
			return routes[i].Service < routes[j].Service
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
