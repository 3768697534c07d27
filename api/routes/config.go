// api/routes/config.go
package routes

import (
	"github.com/gin-gonic/gin"
)

// RateLimitConfig is a per-endpoint rate-limit policy.
type RateLimitConfig struct {
	WindowMs int
	Max      int
}

// DefaultRateLimit is the system-wide fallback policy: 100 requests per 15 minutes.
var DefaultRateLimit = RateLimitConfig{WindowMs: 900000, Max: 100}

// Endpoint is one named operation within a service.
type Endpoint struct {
	Path         string
	Method       string
	AuthRequired bool
	Roles        []string // empty means any authenticated role
	RateLimit    *RateLimitConfig
	Validation   []gin.HandlerFunc
}

// Service is a named group of endpoints sharing a base path.
type Service struct {
	BasePath  string
	Endpoints map[string]Endpoint
}

// Services is the declarative endpoint table. It is read-only after process
// start: the loader interprets it once to assemble the actual routes, and the
// registry endpoint projects it for discovery.
var Services = map[string]Service{
	"auth": {
		BasePath: "/api/auth",
		Endpoints: map[string]Endpoint{
			"login":   {Path: "/login", Method: "POST", AuthRequired: false, RateLimit: &RateLimitConfig{WindowMs: 900000, Max: 10}},
			"logout":  {Path: "/logout", Method: "POST", AuthRequired: true},
			"refresh": {Path: "/refresh", Method: "POST", AuthRequired: false},
			"me":      {Path: "/me", Method: "GET", AuthRequired: true},
		},
	},

	"users": {
		BasePath: "/api/users",
		Endpoints: map[string]Endpoint{
			"list":           {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":         {Path: "/", Method: "POST", AuthRequired: true, Roles: []string{"admin"}},
			"get":            {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"update":         {Path: "/:id", Method: "PUT", AuthRequired: true, Roles: []string{"admin"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":         {Path: "/:id", Method: "DELETE", AuthRequired: true, Roles: []string{"admin"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"deactivate":     {Path: "/:id/deactivate", Method: "PATCH", AuthRequired: true, Roles: []string{"admin"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"updatePassword": {Path: "/:id/password", Method: "PATCH", AuthRequired: true, Roles: []string{"admin"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"bulkCreate":     {Path: "/bulk", Method: "POST", AuthRequired: true, Roles: []string{"admin"}},
			"count":          {Path: "/count", Method: "GET", AuthRequired: true},
			"byRole":         {Path: "/role/:role", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"byUnit":         {Path: "/unit/:unitId", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
		},
	},

	"vehicles": {
		BasePath: "/api/vehicles",
		Endpoints: map[string]Endpoint{
			"list":                {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":              {Path: "/", Method: "POST", AuthRequired: true},
			"get":                 {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"update":              {Path: "/:id", Method: "PUT", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":              {Path: "/:id", Method: "DELETE", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"deactivate":          {Path: "/:id/deactivate", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"bulkCreate":          {Path: "/bulk", Method: "POST", AuthRequired: true},
			"count":               {Path: "/count", Method: "GET", AuthRequired: true},
			"byRegNo":             {Path: "/regno/:vehRegNo", Method: "GET", AuthRequired: true},
			"available":           {Path: "/available", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"updateStatus":        {Path: "/:id/status", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"updateOdometer":      {Path: "/:id/odometer", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"scheduleMaintenance": {Path: "/:id/maintenance", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"byUnit":              {Path: "/unit/:unitId", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
		},
	},

	"drivers": {
		BasePath: "/api/drivers",
		Endpoints: map[string]Endpoint{
			"list":             {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":           {Path: "/", Method: "POST", AuthRequired: true},
			"get":              {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"update":           {Path: "/:id", Method: "PUT", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":           {Path: "/:id", Method: "DELETE", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"deactivate":       {Path: "/:id/deactivate", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"bulkCreate":       {Path: "/bulk", Method: "POST", AuthRequired: true},
			"count":            {Path: "/count", Method: "GET", AuthRequired: true},
			"available":        {Path: "/available", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"assign":           {Path: "/:id/assign", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"release":          {Path: "/:id/release", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"updateStatus":     {Path: "/:id/status", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"updateRating":     {Path: "/:id/rating", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"expiringLicenses": {Path: "/expiring-licenses", Method: "GET", AuthRequired: true},
		},
	},

	"fuelStations": {
		BasePath: "/api/fuel-stations",
		Endpoints: map[string]Endpoint{
			"list":         {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":       {Path: "/", Method: "POST", AuthRequired: true},
			"get":          {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"update":       {Path: "/:id", Method: "PUT", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":       {Path: "/:id", Method: "DELETE", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"deactivate":   {Path: "/:id/deactivate", Method: "PATCH", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"bulkCreate":   {Path: "/bulk", Method: "POST", AuthRequired: true},
			"count":        {Path: "/count", Method: "GET", AuthRequired: true},
			"byCode":       {Path: "/code/:stationCode", Method: "GET", AuthRequired: true},
			"active":       {Path: "/active", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"updateStock":  {Path: "/:id/stock", Method: "PATCH", AuthRequired: true, Roles: []string{"admin", "bunk"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"updatePrices": {Path: "/:id/prices", Method: "PATCH", AuthRequired: true, Roles: []string{"admin", "bunk"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"lowStock":     {Path: "/low-stock", Method: "GET", AuthRequired: true},
		},
	},

	"fuelLogs": {
		BasePath: "/api/fuel-logs",
		Endpoints: map[string]Endpoint{
			"list":              {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":            {Path: "/", Method: "POST", AuthRequired: true, RateLimit: &RateLimitConfig{WindowMs: 60000, Max: 30}},
			"get":               {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":            {Path: "/:id", Method: "DELETE", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"byVehicle":         {Path: "/vehicle/:vehicleId", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"byDriver":          {Path: "/driver/:driverId", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"pending":           {Path: "/pending", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"approve":           {Path: "/:id/approve", Method: "PATCH", AuthRequired: true, Roles: []string{"admin", "mto"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"reject":            {Path: "/:id/reject", Method: "PATCH", AuthRequired: true, Roles: []string{"admin", "mto"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"consumptionReport": {Path: "/report/consumption", Method: "GET", AuthRequired: true},
		},
	},

	"units": {
		BasePath: "/api/units",
		Endpoints: map[string]Endpoint{
			"list":            {Path: "/", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
			"create":          {Path: "/", Method: "POST", AuthRequired: true},
			"get":             {Path: "/:id", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"update":          {Path: "/:id", Method: "PUT", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"delete":          {Path: "/:id", Method: "DELETE", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id")}},
			"byCode":          {Path: "/code/:unitCode", Method: "GET", AuthRequired: true},
			"subUnits":        {Path: "/:id/sub-units", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{IDParam("id"), Pagination()}},
			"updateFuelQuota": {Path: "/:id/fuel-quota", Method: "PATCH", AuthRequired: true, Roles: []string{"admin"}, Validation: []gin.HandlerFunc{IDParam("id")}},
			"byDistrict":      {Path: "/district/:district", Method: "GET", AuthRequired: true, Validation: []gin.HandlerFunc{Pagination()}},
		},
	},

	// Legacy role-oriented services. Still part of the published surface, but
	// resolved to stubs until their handler sets land.
	"driver": {
		BasePath: "/api/driver",
		Endpoints: map[string]Endpoint{
			"assignments": {Path: "/assignments", Method: "GET", AuthRequired: true},
			"checkin":     {Path: "/checkin", Method: "POST", AuthRequired: true},
			"checkout":    {Path: "/checkout", Method: "POST", AuthRequired: true},
			"fuelQuota":   {Path: "/fuel/quota", Method: "GET", AuthRequired: true},
			"fuelRequest": {Path: "/fuel/request", Method: "POST", AuthRequired: true},
			"tripReport":  {Path: "/trip/report", Method: "POST", AuthRequired: true},
		},
	},
	"officer": {
		BasePath: "/api/officer",
		Endpoints: map[string]Endpoint{
			"assignments":      {Path: "/assignments", Method: "GET", AuthRequired: true},
			"vehicles":         {Path: "/vehicles", Method: "GET", AuthRequired: true},
			"createAssignment": {Path: "/assignment/create", Method: "POST", AuthRequired: true},
			"approveBreak":     {Path: "/break/:breakId/approve", Method: "PUT", AuthRequired: true},
		},
	},
	"mto": {
		BasePath: "/api/mto",
		Endpoints: map[string]Endpoint{
			"assignments":       {Path: "/assignments", Method: "GET", AuthRequired: true},
			"driversAvailable":  {Path: "/drivers/available", Method: "GET", AuthRequired: true},
			"vehiclesAvailable": {Path: "/vehicles/available", Method: "GET", AuthRequired: true},
			"createAssignment":  {Path: "/assignment/create", Method: "POST", AuthRequired: true},
			"fuelReports":       {Path: "/reports/fuel", Method: "GET", AuthRequired: true},
		},
	},
	"bunk": {
		BasePath: "/api/bunk",
		Endpoints: map[string]Endpoint{
			"stations":         {Path: "/stations", Method: "GET", AuthRequired: true},
			"stationInventory": {Path: "/:stationId/inventory", Method: "GET", AuthRequired: true},
			"fuelDispense":     {Path: "/fuel/dispense", Method: "POST", AuthRequired: true},
			"dailyReports":     {Path: "/reports/daily", Method: "GET", AuthRequired: true},
		},
	},
	"proxy": {
		BasePath: "/api/proxy",
		Endpoints: map[string]Endpoint{
			"permissions": {Path: "/permissions", Method: "GET", AuthRequired: true},
			"fuelPending": {Path: "/fuel/pending", Method: "GET", AuthRequired: true},
			"approveFuel": {Path: "/fuel/:requestId/approve", Method: "PUT", AuthRequired: true},
		},
	},
	"common": {
		BasePath: "/api",
		Endpoints: map[string]Endpoint{
			"notifications":    {Path: "/notifications", Method: "GET", AuthRequired: true},
			"readNotification": {Path: "/notifications/:notificationId/read", Method: "PUT", AuthRequired: true},
			"profile":          {Path: "/profile", Method: "GET", AuthRequired: true},
			"updateProfile":    {Path: "/profile", Method: "PUT", AuthRequired: true},
		},
	},
	"qr": {
		BasePath: "/api/qr",
		Endpoints: map[string]Endpoint{
			"generate": {Path: "/generate", Method: "POST", AuthRequired: true, RateLimit: &RateLimitConfig{WindowMs: 60000, Max: 10}},
			"verify":   {Path: "/verify", Method: "POST", AuthRequired: true},
		},
	},
	"breaks": {
		BasePath: "/api/breaks",
		Endpoints: map[string]Endpoint{
			"requests":       {Path: "/requests", Method: "GET", AuthRequired: true},
			"getRequest":     {Path: "/requests/:requestId", Method: "GET", AuthRequired: true},
			"approveRequest": {Path: "/requests/:requestId/approve", Method: "PUT", AuthRequired: true},
			"denyRequest":    {Path: "/requests/:requestId/deny", Method: "PUT", AuthRequired: true},
			"active":         {Path: "/active", Method: "GET", AuthRequired: true},
			"history":        {Path: "/history", Method: "GET", AuthRequired: true},
		},
	},
	"reports": {
		BasePath: "/api/reports",
		Endpoints: map[string]Endpoint{
			"daily":     {Path: "/daily", Method: "GET", AuthRequired: true},
			"weekly":    {Path: "/weekly", Method: "GET", AuthRequired: true},
			"monthly":   {Path: "/monthly", Method: "GET", AuthRequired: true},
			"fuelUsage": {Path: "/fuel/usage", Method: "GET", AuthRequired: true},
			"exportCsv": {Path: "/export/csv", Method: "GET", AuthRequired: true},
		},
	},
}

// ResolvePath returns the full path (basePath + endpoint path) for a
// service/endpoint pair, or an empty string if either is unknown. Never errors.
func ResolvePath(service, endpoint string) string {
	svc, ok := Services[service]
	if !ok {
		return ""
	}
	ep, ok := svc.Endpoints[endpoint]
	if !ok {
		return ""
	}
	return svc.BasePath + ep.Path
}

// ResolveRateLimit returns the endpoint's configured rate-limit policy, or the
// system default when the endpoint is unknown or carries no policy.
func ResolveRateLimit(service, endpoint string) RateLimitConfig {
	svc, ok := Services[service]
	if !ok {
		return DefaultRateLimit
	}
	ep, ok := svc.Endpoints[endpoint]
	if !ok || ep.RateLimit == nil {
		return DefaultRateLimit
	}
	return *ep.RateLimit
}
