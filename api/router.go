// api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/handlers"
	"github.com/mtofleet/fleet-backend/api/middleware"
	"github.com/mtofleet/fleet-backend/api/routes"
	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// Version is reported by the /api/version endpoint.
const Version = "1.0.0"

var startTime = time.Now()

// SetupRouter initializes the Gin router and registers the full API surface
// from the endpoint configuration table.
func SetupRouter(store *storage.Store, cfg *config.Config) (*gin.Engine, error) {
	router := gin.Default() // Includes Logger and Recovery

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Global limiter on top of any per-endpoint policy from the route table.
	globalLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	router.Use(middleware.RateLimitMiddleware(globalLimiter))
	router.Use(middleware.ErrorHandler())

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(store.DB, cfg)
	userHandler := handlers.NewUserHandler(store)
	vehicleHandler := handlers.NewVehicleHandler(store)
	driverHandler := handlers.NewDriverHandler(store)
	stationHandler := handlers.NewStationHandler(store)
	fuelLogHandler := handlers.NewFuelLogHandler(store)
	unitHandler := handlers.NewUnitHandler(store)

	handlerSets := map[string]routes.HandlerSet{
		"auth": {
			"login":   authHandler.Login,
			"logout":  authHandler.Logout,
			"refresh": authHandler.Refresh,
			"me":      authHandler.Me,
		},
		"users": {
			"list":           userHandler.FindAll,
			"create":         userHandler.Create,
			"get":            userHandler.FindByID,
			"update":         userHandler.Update,
			"delete":         userHandler.Delete,
			"deactivate":     userHandler.SoftDelete,
			"updatePassword": userHandler.UpdatePassword,
			"bulkCreate":     userHandler.BulkCreate,
			"count":          userHandler.Count,
			"byRole":         userHandler.ByRole,
			"byUnit":         userHandler.ByUnit,
		},
		"vehicles": {
			"list":                vehicleHandler.FindAll,
			"create":              vehicleHandler.Create,
			"get":                 vehicleHandler.FindByID,
			"update":              vehicleHandler.Update,
			"delete":              vehicleHandler.Delete,
			"deactivate":          vehicleHandler.SoftDelete,
			"bulkCreate":          vehicleHandler.BulkCreate,
			"count":               vehicleHandler.Count,
			"byRegNo":             vehicleHandler.GetByRegNo,
			"available":           vehicleHandler.Available,
			"updateStatus":        vehicleHandler.UpdateStatus,
			"updateOdometer":      vehicleHandler.UpdateOdometer,
			"scheduleMaintenance": vehicleHandler.ScheduleMaintenance,
			"byUnit":              vehicleHandler.ByUnit,
		},
		"drivers": {
			"list":             driverHandler.FindAll,
			"create":           driverHandler.Create,
			"get":              driverHandler.FindByID,
			"update":           driverHandler.Update,
			"delete":           driverHandler.Delete,
			"deactivate":       driverHandler.SoftDelete,
			"bulkCreate":       driverHandler.BulkCreate,
			"count":            driverHandler.Count,
			"available":        driverHandler.Available,
			"assign":           driverHandler.AssignToVehicle,
			"release":          driverHandler.ReleaseFromVehicle,
			"updateStatus":     driverHandler.UpdateStatus,
			"updateRating":     driverHandler.UpdateRating,
			"expiringLicenses": driverHandler.ExpiringLicenses,
		},
		"fuelStations": {
			"list":         stationHandler.FindAll,
			"create":       stationHandler.Create,
			"get":          stationHandler.FindByID,
			"update":       stationHandler.Update,
			"delete":       stationHandler.Delete,
			"deactivate":   stationHandler.SoftDelete,
			"bulkCreate":   stationHandler.BulkCreate,
			"count":        stationHandler.Count,
			"byCode":       stationHandler.GetByCode,
			"active":       stationHandler.Active,
			"updateStock":  stationHandler.UpdateStock,
			"updatePrices": stationHandler.UpdatePrices,
			"lowStock":     stationHandler.LowStock,
		},
		"fuelLogs": {
			"list":              fuelLogHandler.FindAll,
			"create":            fuelLogHandler.Create,
			"get":               fuelLogHandler.FindByID,
			"delete":            fuelLogHandler.Delete,
			"byVehicle":         fuelLogHandler.ByVehicle,
			"byDriver":          fuelLogHandler.ByDriver,
			"pending":           fuelLogHandler.Pending,
			"approve":           fuelLogHandler.Approve,
			"reject":            fuelLogHandler.Reject,
			"consumptionReport": fuelLogHandler.ConsumptionReport,
		},
		"units": {
			"list":            unitHandler.FindAll,
			"create":          unitHandler.Create,
			"get":             unitHandler.FindByID,
			"update":          unitHandler.Update,
			"delete":          unitHandler.Delete,
			"byCode":          unitHandler.GetByCode,
			"subUnits":        unitHandler.SubUnits,
			"updateFuelQuota": unitHandler.UpdateFuelQuota,
			"byDistrict":      unitHandler.ByDistrict,
		},
	}

	loader := routes.NewLoader(middleware.AuthMiddleware(store.DB, cfg))
	if err := loader.LoadAllServices(router, handlerSets); err != nil {
		return nil, err
	}

	// --- Unauthenticated test surface, hand-registered ---
	testRoutes := router.Group("/test")
	{
		resources := map[string]*handlers.CRUD{
			"users":         userHandler.CRUD,
			"vehicles":      vehicleHandler.CRUD,
			"drivers":       driverHandler.CRUD,
			"fuel-stations": stationHandler.CRUD,
			"fuel-logs":     fuelLogHandler.CRUD,
			"units":         unitHandler.CRUD,
		}
		for name, crud := range resources {
			grp := testRoutes.Group("/" + name)
			grp.GET("/", crud.FindAll)
			grp.POST("/", crud.Create)
			grp.GET("/:id", crud.FindByID)
			grp.DELETE("/:id", crud.Delete)
		}
	}

	// --- Discovery & operational endpoints ---
	registered := routes.RegisteredRoutes()
	router.GET("/api/endpoints", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(registered), "data": registered})
	})
	router.GET("/api/health", func(c *gin.Context) {
		if err := store.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "degraded", "message": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	router.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "version": Version})
	})
	router.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"uptime":  time.Since(startTime).String(),
			"routes":  len(registered),
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Endpoint not found"})
	})

	return router, nil
}
