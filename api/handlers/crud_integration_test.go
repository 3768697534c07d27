// api/handlers/crud_integration_test.go
package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func vehiclePayload(regNo string) gin.H {
	return gin.H{
		"vehRegNo":        regNo,
		"makeType":        "Mahindra",
		"vehicleModel":    "Bolero",
		"year":            2021,
		"fuelType":        "diesel",
		"tankCapacity":    60,
		"seatingCapacity": 7,
	}
}

func driverPayload(name, license string) gin.H {
	return gin.H{
		"name":          name,
		"phoneNo":       "99" + license,
		"licenseNo":     license,
		"licenseExpiry": "2030-06-30",
		"experience":    5,
	}
}

func stationPayload(code string) gin.H {
	return gin.H{
		"stationName":       "Highway Fuels " + code,
		"stationCode":       code,
		"address":           "NH-48",
		"district":          "Tumakuru",
		"state":             "Karnataka",
		"pincode":           "572101",
		"contactNo":         "0816-222333",
		"ownerName":         "R. Gowda",
		"contractStartDate": "2025-01-01",
		"contractEndDate":   "2026-12-31",
		"petrolStock":       5000,
		"dieselStock":       100,
		"petrolPrice":       102.5,
		"dieselPrice":       89.0,
	}
}

func TestVehicleCRUD(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)
	token := loginAs(t, server)

	t.Run("Empty List", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Empty(body["data"])

		pagination := body["pagination"].(map[string]any)
		assert.Equal(float64(0), pagination["total"])
		assert.Equal(float64(0), pagination["pages"])
	})

	var vehicleID float64
	t.Run("Create", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, vehiclePayload("KA01AB1234"))
		assert.Equal(http.StatusCreated, status)

		data := dataOf(t, body)
		vehicleID = data["id"].(float64)
		assert.Equal("KA01AB1234", data["vehRegNo"])
		assert.Equal("available", data["status"])
	})

	t.Run("Duplicate Registration", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, vehiclePayload("KA01AB1234"))
		assert.Equal(http.StatusConflict, status)

		errObj := errorOf(t, body)
		assert.Equal("DUPLICATE_ENTRY", errObj["code"])
		assert.Equal("vehRegNo", errObj["field"])
		assert.NotEmpty(errObj["timestamp"])
	})

	t.Run("Validation Failure", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, gin.H{"vehRegNo": "KA01XX0001"})
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("VALIDATION_ERROR", errorOf(t, body)["code"])
	})

	t.Run("Get By ID", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal("KA01AB1234", dataOf(t, body)["vehRegNo"])

		status, body = doJSON(t, server, http.MethodGet, "/api/vehicles/9999", token, nil)
		assert.Equal(http.StatusNotFound, status)
		assert.Equal("NOT_FOUND", errorOf(t, body)["code"])

		status, _ = doJSON(t, server, http.MethodGet, "/api/vehicles/abc", token, nil)
		assert.Equal(http.StatusBadRequest, status)
	})

	t.Run("Get By Registration", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/regno/KA01AB1234", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(vehicleID, dataOf(t, body)["id"])
	})

	t.Run("Pagination Past End", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/?page=2&limit=20", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Empty(body["data"])

		pagination := body["pagination"].(map[string]any)
		assert.Equal(float64(1), pagination["total"])
		assert.Equal(float64(1), pagination["pages"])
	})

	t.Run("Filter By Unknown Column", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/?nonsense=1", token, nil)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("INVALID_QUERY", errorOf(t, body)["code"])
	})

	t.Run("Sort By Unknown Column", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/?sort=notacolumn", token, nil)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("INVALID_QUERY", errorOf(t, body)["code"])

		// System columns are sortable even though the spec does not list them.
		status, _ = doJSON(t, server, http.MethodGet, "/api/vehicles/?sort=-updatedAt", token, nil)
		assert.Equal(http.StatusOK, status)
	})

	t.Run("Update Status", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/vehicles/1/status", token, gin.H{"status": "maintenance"})
		assert.Equal(http.StatusOK, status)
		assert.Equal("maintenance", dataOf(t, body)["status"])

		status, _ = doJSON(t, server, http.MethodPatch, "/api/vehicles/1/status", token, gin.H{"status": "flying"})
		assert.Equal(http.StatusBadRequest, status)
	})

	t.Run("Odometer Never Goes Backwards", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPatch, "/api/vehicles/1/odometer", token, gin.H{"totalKm": 1500})
		assert.Equal(http.StatusOK, status)

		status, body := doJSON(t, server, http.MethodPatch, "/api/vehicles/1/odometer", token, gin.H{"totalKm": 900})
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("INVALID_ODOMETER", errorOf(t, body)["code"])
	})

	t.Run("Soft Delete", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPatch, "/api/vehicles/1/deactivate", token, nil)
		assert.Equal(http.StatusOK, status)

		status, body := doJSON(t, server, http.MethodGet, "/api/vehicles/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(false, dataOf(t, body)["isActive"])
	})
}

func TestVehicleBulkCreate(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)
	token := loginAs(t, server)

	bad := vehiclePayload("KA09ZZ0003")
	delete(bad, "fuelType")

	status, body := doJSON(t, server, http.MethodPost, "/api/vehicles/bulk", token, []gin.H{
		vehiclePayload("KA09ZZ0001"),
		vehiclePayload("KA09ZZ0002"),
		bad,
		vehiclePayload("KA09ZZ0004"),
	})
	assert.Equal(http.StatusCreated, status)

	data := dataOf(t, body)
	assert.Equal(float64(3), data["created"])
	assert.Equal(float64(1), data["failed"])

	failures := data["failures"].([]any)
	failure := failures[0].(map[string]any)
	assert.Equal(float64(2), failure["index"])

	status, _ = doJSON(t, server, http.MethodPost, "/api/vehicles/bulk", token, gin.H{"not": "an array"})
	assert.Equal(http.StatusBadRequest, status)
}

func TestStationOperations(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)
	token := loginAs(t, server)

	status, _ := doJSON(t, server, http.MethodPost, "/api/fuel-stations/", token, stationPayload("HF-02"))
	assert.Equal(http.StatusCreated, status)

	t.Run("Get By Code", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/fuel-stations/code/HF-02", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal("HF-02", dataOf(t, body)["stationCode"])
	})

	t.Run("Restock Adds To Current Level", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/fuel-stations/1/stock", token, gin.H{"dieselStock": 400})
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(500), dataOf(t, body)["dieselStock"])

		status, _ = doJSON(t, server, http.MethodPatch, "/api/fuel-stations/1/stock", token, gin.H{})
		assert.Equal(http.StatusBadRequest, status)
	})

	t.Run("Update Prices", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/fuel-stations/1/prices", token, gin.H{"dieselPrice": 91.5})
		assert.Equal(http.StatusOK, status)
		data := dataOf(t, body)
		assert.Equal(91.5, data["dieselPrice"])
		assert.Equal(102.5, data["petrolPrice"], "untouched price survives a partial update")
	})

	t.Run("Low Stock", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/fuel-stations/low-stock", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Len(body["data"].([]any), 1, "diesel at 500 is under the default 1000 threshold")

		status, body = doJSON(t, server, http.MethodGet, "/api/fuel-stations/low-stock?threshold=100", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Empty(body["data"])
	})
}

func TestDriverAssignmentFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)
	token := loginAs(t, server)

	status, _ := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, vehiclePayload("KA10AA0001"))
	assert.Equal(http.StatusCreated, status)
	status, _ = doJSON(t, server, http.MethodPost, "/api/drivers/", token, driverPayload("S. Kumar", "DL100001"))
	assert.Equal(http.StatusCreated, status)
	status, _ = doJSON(t, server, http.MethodPost, "/api/drivers/", token, driverPayload("M. Reddy", "DL100002"))
	assert.Equal(http.StatusCreated, status)

	t.Run("Assign", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/drivers/1/assign", token, gin.H{"vehicleId": 1})
		assert.Equal(http.StatusOK, status)

		driver := dataOf(t, body)
		assert.Equal("on_duty", driver["status"])
		vehicle, ok := driver["assignedVehicleId"].(map[string]any)
		assert.True(ok, "assignment response should populate the vehicle")
		assert.Equal("in_use", vehicle["status"])
	})

	t.Run("Vehicle Not Available", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/drivers/2/assign", token, gin.H{"vehicleId": 1})
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("VEHICLE_NOT_AVAILABLE", errorOf(t, body)["code"])

		// The failed assignment must not have touched the second driver.
		status, body = doJSON(t, server, http.MethodGet, "/api/drivers/2", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal("available", dataOf(t, body)["status"])
	})

	t.Run("Driver Not Available", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, vehiclePayload("KA10AA0002"))
		assert.Equal(http.StatusCreated, status)

		status, body := doJSON(t, server, http.MethodPatch, "/api/drivers/1/assign", token, gin.H{"vehicleId": 2})
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("DRIVER_NOT_AVAILABLE", errorOf(t, body)["code"])
	})

	t.Run("Off Duty", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/drivers/2/status", token, gin.H{"status": "off_duty"})
		assert.Equal(http.StatusOK, status)
		assert.Equal("off_duty", dataOf(t, body)["status"])

		status, _ = doJSON(t, server, http.MethodPatch, "/api/drivers/2/status", token, gin.H{"status": "assigned"})
		assert.Equal(http.StatusBadRequest, status)
	})

	t.Run("Release", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/drivers/1/release", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal("available", dataOf(t, body)["status"])

		status, body = doJSON(t, server, http.MethodGet, "/api/vehicles/1", token, nil)
		assert.Equal(http.StatusOK, status)
		vehicle := dataOf(t, body)
		assert.Equal("available", vehicle["status"])
		assert.Nil(vehicle["currentDriverId"])
	})
}

func TestFuelLogFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)
	token := loginAs(t, server)

	status, _ := doJSON(t, server, http.MethodPost, "/api/vehicles/", token, vehiclePayload("KA11BB0001"))
	assert.Equal(http.StatusCreated, status)
	status, _ = doJSON(t, server, http.MethodPost, "/api/drivers/", token, driverPayload("A. Khan", "DL200001"))
	assert.Equal(http.StatusCreated, status)
	status, _ = doJSON(t, server, http.MethodPost, "/api/fuel-stations/", token, stationPayload("HF-01"))
	assert.Equal(http.StatusCreated, status)

	status, _ = doJSON(t, server, http.MethodPatch, "/api/vehicles/1/odometer", token, gin.H{"totalKm": 1000})
	assert.Equal(http.StatusOK, status)

	fill := gin.H{
		"vehicleId":       1,
		"driverId":        1,
		"stationId":       1,
		"fuelType":        "diesel",
		"quantity":        40,
		"pricePerLiter":   89.0,
		"odometerReading": 1200,
		"receiptNo":       "RCPT-0001",
	}

	t.Run("Create Decrements Stock And Advances Odometer", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPost, "/api/fuel-logs/", token, fill)
		assert.Equal(http.StatusCreated, status)

		log := dataOf(t, body)
		assert.Equal("pending", log["approvalStatus"])
		assert.Equal(float64(40*89.0), log["totalAmount"])

		status, body = doJSON(t, server, http.MethodGet, "/api/fuel-stations/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(60), dataOf(t, body)["dieselStock"])

		status, body = doJSON(t, server, http.MethodGet, "/api/vehicles/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(1200), dataOf(t, body)["totalKm"])
	})

	t.Run("Insufficient Stock Leaves No Trace", func(t *testing.T) {
		big := gin.H{}
		for k, v := range fill {
			big[k] = v
		}
		big["receiptNo"] = "RCPT-0002"
		big["quantity"] = 500
		big["odometerReading"] = 1300

		status, body := doJSON(t, server, http.MethodPost, "/api/fuel-logs/", token, big)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("INSUFFICIENT_STOCK", errorOf(t, body)["code"])

		// Stock and odometer are untouched by the rejected fill.
		status, body = doJSON(t, server, http.MethodGet, "/api/fuel-stations/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(60), dataOf(t, body)["dieselStock"])

		status, body = doJSON(t, server, http.MethodGet, "/api/vehicles/1", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(1200), dataOf(t, body)["totalKm"])

		status, body = doJSON(t, server, http.MethodGet, "/api/fuel-logs/", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Equal(float64(1), body["pagination"].(map[string]any)["total"])
	})

	t.Run("Backwards Odometer Rejected", func(t *testing.T) {
		stale := gin.H{}
		for k, v := range fill {
			stale[k] = v
		}
		stale["receiptNo"] = "RCPT-0003"
		stale["odometerReading"] = 800

		status, body := doJSON(t, server, http.MethodPost, "/api/fuel-logs/", token, stale)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("INVALID_ODOMETER", errorOf(t, body)["code"])
	})

	t.Run("Missing Odometer Reading", func(t *testing.T) {
		incomplete := gin.H{}
		for k, v := range fill {
			incomplete[k] = v
		}
		incomplete["receiptNo"] = "RCPT-0004"
		delete(incomplete, "odometerReading")

		status, body := doJSON(t, server, http.MethodPost, "/api/fuel-logs/", token, incomplete)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("VALIDATION_ERROR", errorOf(t, body)["code"])
	})

	t.Run("Approve", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPatch, "/api/fuel-logs/1/approve", token, nil)
		assert.Equal(http.StatusOK, status)

		log := dataOf(t, body)
		assert.Equal("approved", log["approvalStatus"])
		assert.Equal(float64(1), log["approvedBy"], "seeded admin approved the fill")
	})

	t.Run("Pending Is Empty After Approval", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/fuel-logs/pending", token, nil)
		assert.Equal(http.StatusOK, status)
		assert.Empty(body["data"])
	})

	t.Run("Consumption Report", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/fuel-logs/report/consumption", token, nil)
		assert.Equal(http.StatusOK, status)

		rows := body["data"].([]any)
		assert.Len(rows, 1)
		row := rows[0].(map[string]any)
		assert.Equal("KA11BB0001", row["vehRegNo"])
		assert.Equal(float64(40), row["totalQuantity"])
	})
}

func TestUnauthenticatedTestRouter(t *testing.T) {
	server, _ := setupTestServer(t)
	assert := assert.New(t)

	// No token anywhere on the /test surface.
	status, body := doJSON(t, server, http.MethodPost, "/test/vehicles/", "", vehiclePayload("KA12CC0001"))
	assert.Equal(http.StatusCreated, status)
	id := dataOf(t, body)["id"].(float64)

	status, body = doJSON(t, server, http.MethodGet, "/test/vehicles/", "", nil)
	assert.Equal(http.StatusOK, status)
	assert.Len(body["data"].([]any), 1)

	status, _ = doJSON(t, server, http.MethodDelete, "/test/vehicles/1", "", nil)
	assert.Equal(http.StatusOK, status)
	_ = id
}
