package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/core"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

func testStoreSetup(t *testing.T) *storage.Store {
	t.Helper()

	cfg := &config.Config{
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "test_fleet.db",
	}
	db, err := storage.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return storage.NewStore(db)
}

func testVehicle(regNo string) storage.Record {
	return storage.Record{
		"vehRegNo":        regNo,
		"makeType":        "Tata",
		"vehicleModel":    "Sumo",
		"year":            2020,
		"fuelType":        "diesel",
		"tankCapacity":    60.0,
		"seatingCapacity": 8,
	}
}

func TestInsertAndGet(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	record, err := store.Vehicles.Insert(ctx, testVehicle("KA01AB1234"))
	assert.NoError(err)
	assert.Equal("KA01AB1234", record["vehRegNo"])
	assert.Equal(int64(2020), record["year"])
	assert.Equal(60.0, record["tankCapacity"])
	assert.Equal("available", record["status"], "schema default should apply")
	assert.Equal(true, record["isActive"], "BOOLEAN columns scan as bool")
	assert.NotNil(record["createdAt"])
}

func TestInsertValidation(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	payload := testVehicle("KA01AB0001")
	delete(payload, "year")            // missing required
	payload["tankCapacity"] = "sixty"  // wrong type
	payload["turboEncabulator"] = true // unknown field

	_, err := store.Vehicles.Insert(ctx, payload)
	var valErr *storage.ValidationError
	assert.ErrorAs(err, &valErr)

	fields := map[string]bool{}
	for _, fe := range valErr.Fields {
		fields[fe.Field] = true
	}
	assert.True(fields["year"])
	assert.True(fields["tankCapacity"])
	assert.True(fields["turboEncabulator"])
}

func TestInsertDuplicate(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	_, err := store.Vehicles.Insert(ctx, testVehicle("KA01AB7777"))
	assert.NoError(err)

	_, err = store.Vehicles.Insert(ctx, testVehicle("KA01AB7777"))
	var dupErr *storage.DuplicateError
	assert.ErrorAs(err, &dupErr)
	assert.Equal("vehRegNo", dupErr.Field)
}

func TestUpdate(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	record, err := store.Vehicles.Insert(ctx, testVehicle("KA02CD0001"))
	assert.NoError(err)
	id := record["id"].(int64)

	updated, err := store.Vehicles.Update(ctx, id, storage.Record{"status": "maintenance"})
	assert.NoError(err)
	assert.Equal("maintenance", updated["status"])

	_, err = store.Vehicles.Update(ctx, 99999, storage.Record{"status": "maintenance"})
	assert.ErrorIs(err, storage.ErrNotFound)

	_, err = store.Vehicles.Update(ctx, id, storage.Record{"createdAt": "2020-01-01"})
	var valErr *storage.ValidationError
	assert.ErrorAs(err, &valErr, "system-column-only payload leaves nothing to update")
}

func TestSoftDelete(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	record, err := store.Vehicles.Insert(ctx, testVehicle("KA03EF0001"))
	assert.NoError(err)
	id := record["id"].(int64)

	assert.NoError(store.Vehicles.SoftDelete(ctx, id))

	record, err = store.Vehicles.GetByID(ctx, id)
	assert.NoError(err, "soft-deleted rows remain readable")
	assert.Equal(false, record["isActive"])
	assert.NotNil(record["deletedAt"])

	assert.ErrorIs(store.Vehicles.SoftDelete(ctx, 99999), storage.ErrNotFound)
}

func TestListFilterAndPaginate(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	for _, regNo := range []string{"KA05AA0001", "KA05AA0002", "KA05AA0003"} {
		_, err := store.Vehicles.Insert(ctx, testVehicle(regNo))
		assert.NoError(err)
	}

	p := core.Pagination{Page: 2, Limit: 2, Sort: "vehRegNo"}
	records, total, err := store.Vehicles.List(ctx, &core.Filter{}, p)
	assert.NoError(err)
	assert.Equal(int64(3), total)
	assert.Len(records, 1)
	assert.Equal("KA05AA0003", records[0]["vehRegNo"])

	// A page past the end is empty, not an error.
	p.Page = 5
	records, total, err = store.Vehicles.List(ctx, &core.Filter{}, p)
	assert.NoError(err)
	assert.Equal(int64(3), total)
	assert.Empty(records)

	filter := &core.Filter{Where: []string{"vehRegNo = ?"}, Args: []any{"KA05AA0002"}}
	records, total, err = store.Vehicles.List(ctx, filter, core.Pagination{Page: 1, Limit: 20, Sort: "-createdAt"})
	assert.NoError(err)
	assert.Equal(int64(1), total)
	assert.Len(records, 1)
}

func TestBulkInsertContinuesPastFailures(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	bad := testVehicle("KA06BB0003")
	delete(bad, "fuelType")

	created, failures := store.Vehicles.BulkInsert(ctx, []storage.Record{
		testVehicle("KA06BB0001"),
		testVehicle("KA06BB0002"),
		bad,
		testVehicle("KA06BB0004"),
	})
	assert.Equal(3, created)
	assert.Len(failures, 1)
	assert.Equal(2, failures[0].Index)
	assert.Contains(failures[0].Error, "fuelType")
}

func TestPopulateExpandsRelations(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	unit, err := store.Units.Insert(ctx, storage.Record{
		"unitName": "City Armed Reserve", "unitCode": "CAR-01", "unitType": "reserve",
		"address": "1 HQ Road", "district": "Bengaluru", "state": "Karnataka",
		"pincode": "560001", "contactNo": "080-1234",
	})
	assert.NoError(err)

	payload := testVehicle("KA07CC0001")
	payload["unitId"] = unit["id"].(int64)
	vehicle, err := store.Vehicles.Insert(ctx, payload)
	assert.NoError(err)

	expanded, err := store.Vehicles.GetByID(ctx, vehicle["id"].(int64), "unitId")
	assert.NoError(err)
	related, ok := expanded["unitId"].(storage.Record)
	assert.True(ok, "populate should replace the FK with the related record")
	assert.Equal("CAR-01", related["unitCode"])

	// Unknown populate targets are skipped, not errors.
	plain, err := store.Vehicles.GetByID(ctx, vehicle["id"].(int64), "nonsense")
	assert.NoError(err)
	assert.Equal(unit["id"], plain["unitId"])
}

func TestWithTxRollsBackOnError(t *testing.T) {
	assert := assert.New(t)
	store := testStoreSetup(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := store.Vehicles.InsertTx(ctx, tx, testVehicle("KA08DD0001")); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(err, sentinel)

	total, err := store.Vehicles.Count(ctx, &core.Filter{})
	assert.NoError(err)
	assert.Equal(int64(0), total, "rolled-back insert must not persist")
}
