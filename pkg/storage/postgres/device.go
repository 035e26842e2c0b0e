package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

func newDeviceStore(db *sqlx.DB) *deviceStore {
	return &deviceStore{
		db: db,
	}
}

type deviceStore struct {
	db *sqlx.DB
}

type sqlDataDevice struct {
	ID               int32     `db:"id"`
	DeviceID         string    `db:"device_id"`
	Name             string    `db:"name"`
	Status           string    `db:"status"`
	EndTime          int64     `db:"end_time"`
	SavedTime        int64     `db:"saved_time"`
	BatteryLevel     int       `db:"battery_level"`
	CurrentSessionID string    `db:"current_session_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

var sqlParamsDevice = []string{
	"id",
	"device_id",
	"name",
	"status",
	"end_time",
	"saved_time",
	"battery_level",
	"current_session_id",
	"created_at",
	"updated_at",
}

func (d *sqlDataDevice) Scan(m *model.Device) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.DeviceID = m.DeviceID
	d.Name = m.Name
	d.Status = string(m.Status)
	d.EndTime = m.EndTime
	d.SavedTime = m.SavedTime
	d.BatteryLevel = m.BatteryLevel
	d.CurrentSessionID = m.CurrentSessionID
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataDevice) Model() (*model.Device, error) {
	m := &model.Device{
		ID:               d.ID,
		DeviceID:         d.DeviceID,
		Name:             d.Name,
		Status:           model.Status(d.Status),
		EndTime:          d.EndTime,
		SavedTime:        d.SavedTime,
		BatteryLevel:     d.BatteryLevel,
		CurrentSessionID: d.CurrentSessionID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}

	return m, nil
}

func (s *deviceStore) FetchAll() (map[int32]model.Device, error) {
	return fetchAllDevices(s.db)
}

func (s *deviceStore) FindByID(id int32) (*model.Device, error) {
	return findDeviceByID(s.db, id)
}

func (s *deviceStore) FindByDeviceID(deviceID string) (*model.Device, error) {
	return findDeviceByDeviceID(s.db, deviceID)
}

func (s *deviceStore) Create(m *model.Device) error {
	return createDevice(s.db, m)
}

func (s *deviceStore) Delete(id int32) error {
	return deleteDevice(s.db, id)
}

func (s *deviceStore) UpdateSession(deviceID string, expect model.Status, fields model.SessionFields) (*model.Device, error) {
	return updateDeviceSession(s.db, deviceID, expect, fields)
}

func (s *deviceStore) SetBatteryLevel(deviceID string, level int) error {
	return setDeviceBatteryLevel(s.db, deviceID, level)
}

func fetchAllDevices(db *sqlx.DB) (map[int32]model.Device, error) {
	rows := make([]sqlDataDevice, 0)
	models := make(map[int32]model.Device)

	query := "SELECT * FROM devices ORDER BY id"
	if err := db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all devices")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to device model")
		}

		models[d.ID] = *m
	}

	return models, nil
}

func findDeviceByID(db *sqlx.DB, id int32) (*model.Device, error) {
	d := sqlDataDevice{}
	query := "SELECT * FROM devices WHERE id=$1"
	if err := db.Get(&d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find device")
	}

	return d.Model()
}

func findDeviceByDeviceID(db *sqlx.DB, deviceID string) (*model.Device, error) {
	d := sqlDataDevice{}
	query := "SELECT * FROM devices WHERE device_id=$1"
	if err := db.Get(&d, query, deviceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find device")
	}

	return d.Model()
}

func createDevice(db *sqlx.DB, m *model.Device) error {
	// Set default values
	if m.Status == "" {
		m.Status = model.StatusLocked
	}

	d := sqlDataDevice{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert device model to SQL data")
	}

	// Remove the id column because it's of SQL type serial
	sqlParamsWithoutID := make([]string, 0)
	for _, s := range sqlParamsDevice {
		if s != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, s)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO devices (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := db.NamedQuery(query, d)
	if err != nil {
		return errors.Wrap(err, "failed to create device")
	}
	if rows.Next() {
		rows.Scan(&m.ID)
	}

	return nil
}

func deleteDevice(db *sqlx.DB, id int32) error {
	query := "DELETE FROM devices WHERE id=$1"
	res, err := db.Exec(query, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete device")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func updateDeviceSession(db *sqlx.DB, deviceID string, expect model.Status, fields model.SessionFields) (*model.Device, error) {
	set := []string{"status=$2", "updated_at=$3"}
	args := []interface{}{deviceID, string(fields.Status), time.Now().Round(time.Second).UTC()}

	if fields.EndTime != nil {
		args = append(args, *fields.EndTime)
		set = append(set, fmt.Sprintf("end_time=$%d", len(args)))
	}
	if fields.SavedTime != nil {
		args = append(args, *fields.SavedTime)
		set = append(set, fmt.Sprintf("saved_time=$%d", len(args)))
	}
	if fields.CurrentSessionID != nil {
		args = append(args, *fields.CurrentSessionID)
		set = append(set, fmt.Sprintf("current_session_id=$%d", len(args)))
	}

	query := fmt.Sprintf("UPDATE devices SET %s WHERE device_id=$1", strings.Join(set, ", "))
	if expect != "" {
		args = append(args, string(expect))
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	query += " RETURNING *"

	d := sqlDataDevice{}
	if err := db.Get(&d, query, args...); err != nil {
		if err != sql.ErrNoRows {
			return nil, errors.Wrap(err, "failed to update device session")
		}

		// Distinguish a missing device from a lost update
		if _, err := findDeviceByDeviceID(db, deviceID); err != nil {
			return nil, err
		}
		return nil, storage.ErrConflict
	}

	return d.Model()
}

func setDeviceBatteryLevel(db *sqlx.DB, deviceID string, level int) error {
	query := "UPDATE devices SET battery_level=$2, updated_at=$3 WHERE device_id=$1"
	res, err := db.Exec(query, deviceID, level, time.Now().Round(time.Second).UTC())
	if err != nil {
		return errors.Wrap(err, "failed to update battery level")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
