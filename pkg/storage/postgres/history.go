package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

func newHistoryStore(db *sqlx.DB) *historyStore {
	return &historyStore{
		db: db,
	}
}

type historyStore struct {
	db *sqlx.DB
}

type sqlDataHistory struct {
	ID                 int64     `db:"id"`
	MobileID           string    `db:"mobile_id"`
	TimeDuration       string    `db:"time_duration"`
	Amount             string    `db:"amount"`
	Timestamp          string    `db:"purchase_timestamp"`
	HasFaceData        bool      `db:"has_face_data"`
	HasLocationData    bool      `db:"has_location_data"`
	DeviceUpdateFailed bool      `db:"device_update_failed"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

var sqlParamsHistory = []string{
	"id",
	"mobile_id",
	"time_duration",
	"amount",
	"purchase_timestamp",
	"has_face_data",
	"has_location_data",
	"device_update_failed",
	"created_at",
	"updated_at",
}

// recordID formats the serial row id as a zero-padded decimal so that
// record IDs sort lexicographically in creation order.
func recordID(id int64) string {
	return fmt.Sprintf("%012d", id)
}

func parseRecordID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, storage.ErrNotFound
	}
	return n, nil
}

func (d *sqlDataHistory) Scan(m *model.HistoryRecord) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.MobileID = m.MobileID
	d.TimeDuration = m.TimeDuration
	d.Amount = m.Amount
	d.Timestamp = m.Timestamp
	d.HasFaceData = m.HasFaceData
	d.HasLocationData = m.HasLocationData
	d.DeviceUpdateFailed = m.DeviceUpdateFailed
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataHistory) Model() (*model.HistoryRecord, error) {
	m := &model.HistoryRecord{
		ID:                 recordID(d.ID),
		MobileID:           d.MobileID,
		TimeDuration:       d.TimeDuration,
		Amount:             d.Amount,
		Timestamp:          d.Timestamp,
		HasFaceData:        d.HasFaceData,
		HasLocationData:    d.HasLocationData,
		DeviceUpdateFailed: d.DeviceUpdateFailed,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}

	return m, nil
}

func (s *historyStore) FetchAll() (map[string]model.HistoryRecord, error) {
	rows := make([]sqlDataHistory, 0)
	models := make(map[string]model.HistoryRecord)

	query := "SELECT * FROM history ORDER BY id"
	if err := s.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all history records")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to history model")
		}

		models[m.ID] = *m
	}

	return models, nil
}

func (s *historyStore) FindByID(id string) (*model.HistoryRecord, error) {
	n, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	d := sqlDataHistory{}
	query := "SELECT * FROM history WHERE id=$1"
	if err := s.db.Get(&d, query, n); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find history record")
	}

	return d.Model()
}

func (s *historyStore) Create(m *model.HistoryRecord) error {
	d := sqlDataHistory{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert history model to SQL data")
	}

	// Remove the id column because it's of SQL type serial
	sqlParamsWithoutID := make([]string, 0)
	for _, s := range sqlParamsHistory {
		if s != "id" {
			sqlParamsWithoutID = append(sqlParamsWithoutID, s)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO history (%s) VALUES (%s) RETURNING id",
		strings.Join(sqlParamsWithoutID, ", "),
		":"+strings.Join(sqlParamsWithoutID, ", :"),
	)
	rows, err := s.db.NamedQuery(query, d)
	if err != nil {
		return errors.Wrap(err, "failed to create history record")
	}
	if rows.Next() {
		var id int64
		rows.Scan(&id)
		m.ID = recordID(id)
	}

	return nil
}

func (s *historyStore) SetEvidence(id string, hasFaceData, hasLocationData bool) error {
	n, err := parseRecordID(id)
	if err != nil {
		return err
	}

	query := "UPDATE history SET has_face_data=$2, has_location_data=$3, updated_at=$4 WHERE id=$1"
	res, err := s.db.Exec(query, n, hasFaceData, hasLocationData, time.Now().Round(time.Second).UTC())
	if err != nil {
		return errors.Wrap(err, "failed to update history evidence flags")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *historyStore) MarkDeviceUpdateFailed(id string) error {
	n, err := parseRecordID(id)
	if err != nil {
		return err
	}

	query := "UPDATE history SET device_update_failed=TRUE, updated_at=$2 WHERE id=$1"
	res, err := s.db.Exec(query, n, time.Now().Round(time.Second).UTC())
	if err != nil {
		return errors.Wrap(err, "failed to mark history record")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}
