// api/models/request_models.go
package models

// Request DTOs for the non-CRUD resource operations. Anything that maps
// straight onto entity columns goes through the generic record layer instead.

type UpdatePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type UpdateVehicleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available in_use maintenance retired"`
}

type UpdateOdometerRequest struct {
	TotalKm float64 `json:"totalKm" binding:"required,gt=0"`
}

type ScheduleMaintenanceRequest struct {
	NextServiceDue string `json:"nextServiceDue" binding:"required"`
}

type AssignDriverRequest struct {
	VehicleID int64 `json:"vehicleId" binding:"required,gt=0"`
}

type UpdateDriverStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available on_duty off_duty on_leave"`
}

type UpdateRatingRequest struct {
	Rating float64 `json:"rating" binding:"required,gte=0,lte=5"`
}

// Stock and price updates accept either fuel column, but at least one.
type UpdateStockRequest struct {
	PetrolStock *float64 `json:"petrolStock" binding:"omitempty,gte=0"`
	DieselStock *float64 `json:"dieselStock" binding:"omitempty,gte=0"`
}

type UpdatePricesRequest struct {
	PetrolPrice *float64 `json:"petrolPrice" binding:"omitempty,gt=0"`
	DieselPrice *float64 `json:"dieselPrice" binding:"omitempty,gt=0"`
}

type UpdateFuelQuotaRequest struct {
	PetrolQuota *float64 `json:"petrolQuota" binding:"omitempty,gte=0"`
	DieselQuota *float64 `json:"dieselQuota" binding:"omitempty,gte=0"`
}

type RejectFuelLogRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}
