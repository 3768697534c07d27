// internal/storage/store.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mtofleet/fleet-backend/internal/core"
)

// Store bundles the per-entity repos over one database handle. Constructed
// once at startup; holds no per-request state.
type Store struct {
	DB *sql.DB

	Users    *EntityRepo
	Units    *EntityRepo
	Vehicles *EntityRepo
	Drivers  *EntityRepo
	Stations *EntityRepo
	FuelLogs *EntityRepo

	byTable map[string]*EntityRepo
}

// NewStore wires the entity repos and their relation resolver.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		DB:       db,
		Users:    NewEntityRepo(db, UserSpec),
		Units:    NewEntityRepo(db, UnitSpec),
		Vehicles: NewEntityRepo(db, VehicleSpec),
		Drivers:  NewEntityRepo(db, DriverSpec),
		Stations: NewEntityRepo(db, StationSpec),
		FuelLogs: NewEntityRepo(db, FuelLogSpec),
	}

	s.byTable = map[string]*EntityRepo{}
	for _, repo := range []*EntityRepo{s.Users, s.Units, s.Vehicles, s.Drivers, s.Stations, s.FuelLogs} {
		s.byTable[repo.spec.Table] = repo
		repo.resolve = s.repoByTable
	}
	return s
}

func (s *Store) repoByTable(table string) *EntityRepo {
	return s.byTable[table]
}

// WithTx runs fn inside one transaction. The transaction commits only if fn
// returns nil; any error (or panic) rolls back every mutation made through it.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			customLog.Warnf("Storage: rollback failed: %v (original error: %v)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// --- Entity specs ---

var UserSpec = EntitySpec{
	Table: "users",
	Name:  "User",
	Columns: map[string]core.ColumnType{
		"name": core.ColumnText, "username": core.ColumnText, "email": core.ColumnText,
		"phoneNo": core.ColumnText, "password": core.ColumnText, "role": core.ColumnText,
		"badgeNo": core.ColumnText, "unitId": core.ColumnInteger,
		"isIpsOfficer": core.ColumnBoolean, "refreshToken": core.ColumnText,
		"lastLogin": core.ColumnText, "isActive": core.ColumnBoolean,
	},
	Required:   []string{"name", "username", "email", "password", "role"},
	Searchable: []string{"name", "username", "email"},
	Hidden:     []string{"password", "refreshToken"},
	Relations:  map[string]string{"unitId": "units"},
}

var UnitSpec = EntitySpec{
	Table: "units",
	Name:  "Unit",
	Columns: map[string]core.ColumnType{
		"unitName": core.ColumnText, "unitCode": core.ColumnText, "unitType": core.ColumnText,
		"address": core.ColumnText, "district": core.ColumnText, "state": core.ColumnText,
		"pincode": core.ColumnText, "contactNo": core.ColumnText,
		"headOfficerId": core.ColumnInteger, "parentUnitId": core.ColumnInteger,
		"vehicleCount": core.ColumnInteger, "personnelCount": core.ColumnInteger,
		"petrolQuota": core.ColumnReal, "dieselQuota": core.ColumnReal,
		"isActive": core.ColumnBoolean,
	},
	Required:   []string{"unitName", "unitCode", "unitType", "address", "district", "state", "pincode", "contactNo"},
	Searchable: []string{"unitName", "unitCode", "district"},
	Relations:  map[string]string{"parentUnitId": "units", "headOfficerId": "users"},
}

var VehicleSpec = EntitySpec{
	Table: "vehicles",
	Name:  "Vehicle",
	Columns: map[string]core.ColumnType{
		"vehRegNo": core.ColumnText, "makeType": core.ColumnText, "vehicleModel": core.ColumnText,
		"year": core.ColumnInteger, "fuelType": core.ColumnText,
		"tankCapacity": core.ColumnReal, "seatingCapacity": core.ColumnInteger,
		"status": core.ColumnText, "unitId": core.ColumnInteger, "currentDriverId": core.ColumnInteger,
		"lastServiceDate": core.ColumnText, "nextServiceDue": core.ColumnText,
		"totalKm": core.ColumnReal, "isActive": core.ColumnBoolean,
	},
	Required:   []string{"vehRegNo", "makeType", "vehicleModel", "year", "fuelType", "tankCapacity", "seatingCapacity"},
	Searchable: []string{"vehRegNo", "makeType", "vehicleModel"},
	Relations:  map[string]string{"unitId": "units", "currentDriverId": "drivers"},
}

var DriverSpec = EntitySpec{
	Table: "drivers",
	Name:  "Driver",
	Columns: map[string]core.ColumnType{
		"name": core.ColumnText, "phoneNo": core.ColumnText, "licenseNo": core.ColumnText,
		"licenseExpiry": core.ColumnText, "unitId": core.ColumnInteger,
		"assignedVehicleId": core.ColumnInteger, "status": core.ColumnText,
		"experience": core.ColumnInteger, "rating": core.ColumnReal,
		"totalTrips": core.ColumnInteger, "isActive": core.ColumnBoolean,
	},
	Required:   []string{"name", "phoneNo", "licenseNo", "licenseExpiry", "experience"},
	Searchable: []string{"name", "phoneNo", "licenseNo"},
	Relations:  map[string]string{"unitId": "units", "assignedVehicleId": "vehicles"},
}

var StationSpec = EntitySpec{
	Table: "fuel_stations",
	Name:  "Fuel Station",
	Columns: map[string]core.ColumnType{
		"stationName": core.ColumnText, "stationCode": core.ColumnText, "address": core.ColumnText,
		"district": core.ColumnText, "state": core.ColumnText, "pincode": core.ColumnText,
		"contactNo": core.ColumnText, "ownerName": core.ColumnText, "gstNo": core.ColumnText,
		"contractStartDate": core.ColumnText, "contractEndDate": core.ColumnText,
		"petrolQuota": core.ColumnReal, "dieselQuota": core.ColumnReal,
		"petrolStock": core.ColumnReal, "dieselStock": core.ColumnReal,
		"petrolPrice": core.ColumnReal, "dieselPrice": core.ColumnReal,
		"isActive": core.ColumnBoolean,
	},
	Required: []string{
		"stationName", "stationCode", "address", "district", "state", "pincode",
		"contactNo", "ownerName", "contractStartDate", "contractEndDate",
	},
	Searchable: []string{"stationName", "stationCode", "district"},
}

var FuelLogSpec = EntitySpec{
	Table: "fuel_logs",
	Name:  "Fuel Log",
	Columns: map[string]core.ColumnType{
		"vehicleId": core.ColumnInteger, "driverId": core.ColumnInteger,
		"stationId": core.ColumnInteger, "unitId": core.ColumnInteger,
		"fuelType": core.ColumnText, "quantity": core.ColumnReal,
		"pricePerLiter": core.ColumnReal, "totalAmount": core.ColumnReal,
		"odometerReading": core.ColumnReal, "receiptNo": core.ColumnText,
		"approvedBy": core.ColumnInteger, "approvalStatus": core.ColumnText,
		"remarks": core.ColumnText,
		"fillDate": core.ColumnText, "isActive": core.ColumnBoolean,
	},
	Required:   []string{"vehicleId", "driverId", "stationId", "fuelType", "quantity", "pricePerLiter", "odometerReading", "receiptNo"},
	Searchable: []string{"receiptNo"},
	Relations: map[string]string{
		"vehicleId": "vehicles", "driverId": "drivers",
		"stationId": "fuel_stations", "unitId": "units",
	},
}
