// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/logger"
)

var customLog = logger.NewLogger()

// schemaStatements creates every entity table plus the indexes the list
// endpoints lean on. Column names match the JSON field names so the dynamic
// CRUD layer needs no mapping between the two.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unitName TEXT NOT NULL,
		unitCode TEXT NOT NULL UNIQUE,
		unitType TEXT NOT NULL,
		address TEXT NOT NULL,
		district TEXT NOT NULL,
		state TEXT NOT NULL,
		pincode TEXT NOT NULL,
		contactNo TEXT NOT NULL,
		headOfficerId INTEGER,
		parentUnitId INTEGER REFERENCES units(id),
		vehicleCount INTEGER DEFAULT 0,
		personnelCount INTEGER DEFAULT 0,
		petrolQuota REAL DEFAULT 0,
		dieselQuota REAL DEFAULT 0,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		phoneNo TEXT UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'driver',
		badgeNo TEXT,
		unitId INTEGER REFERENCES units(id),
		isIpsOfficer BOOLEAN DEFAULT 0,
		refreshToken TEXT,
		lastLogin TIMESTAMP,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehRegNo TEXT NOT NULL UNIQUE,
		makeType TEXT NOT NULL,
		vehicleModel TEXT NOT NULL,
		year INTEGER NOT NULL,
		fuelType TEXT NOT NULL,
		tankCapacity REAL NOT NULL,
		seatingCapacity INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		unitId INTEGER REFERENCES units(id),
		currentDriverId INTEGER,
		lastServiceDate TEXT,
		nextServiceDue TEXT,
		totalKm REAL DEFAULT 0,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phoneNo TEXT NOT NULL UNIQUE,
		licenseNo TEXT NOT NULL UNIQUE,
		licenseExpiry TEXT NOT NULL,
		unitId INTEGER REFERENCES units(id),
		assignedVehicleId INTEGER,
		status TEXT NOT NULL DEFAULT 'available',
		experience INTEGER NOT NULL DEFAULT 0,
		rating REAL,
		totalTrips INTEGER DEFAULT 0,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS fuel_stations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stationName TEXT NOT NULL,
		stationCode TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL,
		district TEXT NOT NULL,
		state TEXT NOT NULL,
		pincode TEXT NOT NULL,
		contactNo TEXT NOT NULL,
		ownerName TEXT NOT NULL,
		gstNo TEXT,
		contractStartDate TEXT NOT NULL,
		contractEndDate TEXT NOT NULL,
		petrolQuota REAL DEFAULT 0,
		dieselQuota REAL DEFAULT 0,
		petrolStock REAL DEFAULT 0,
		dieselStock REAL DEFAULT 0,
		petrolPrice REAL NOT NULL DEFAULT 0,
		dieselPrice REAL NOT NULL DEFAULT 0,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS fuel_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicleId INTEGER NOT NULL REFERENCES vehicles(id),
		driverId INTEGER NOT NULL REFERENCES drivers(id),
		stationId INTEGER NOT NULL REFERENCES fuel_stations(id),
		unitId INTEGER REFERENCES units(id),
		fuelType TEXT NOT NULL,
		quantity REAL NOT NULL,
		pricePerLiter REAL NOT NULL,
		totalAmount REAL NOT NULL DEFAULT 0,
		odometerReading REAL NOT NULL,
		receiptNo TEXT NOT NULL UNIQUE,
		approvedBy INTEGER,
		approvalStatus TEXT NOT NULL DEFAULT 'pending',
		remarks TEXT,
		fillDate TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		isActive BOOLEAN NOT NULL DEFAULT 1,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deletedAt TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_status_unit ON vehicles(status, unitId);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_status_unit ON drivers(status, unitId);`,
	`CREATE INDEX IF NOT EXISTS idx_fuel_logs_vehicle ON fuel_logs(vehicleId, fillDate);`,
	`CREATE INDEX IF NOT EXISTS idx_fuel_logs_status ON fuel_logs(approvalStatus, unitId);`,
}

// Connect initializes the SQLite connection pool and ensures the schema exists.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
	customLog.Printf("Storage: Initializing database: %s", dbPath)

	if err := os.MkdirAll(cfg.DatabaseDir, 0750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.DatabaseDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		customLog.Warnf("Storage: Failed to open db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			customLog.Warnf("Storage: Failed to apply schema: %v", err)
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	customLog.Println("Storage: Database connection successful, schema ensured.")

	return db, nil
}
