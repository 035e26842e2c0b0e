package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

func newWhitelistStore(db *sqlx.DB) *whitelistStore {
	return &whitelistStore{
		db: db,
	}
}

type whitelistStore struct {
	db *sqlx.DB
}

type sqlDataInstalledApp struct {
	DeviceID    string `db:"device_id"`
	PackageName string `db:"package_name"`
	AppName     string `db:"app_name"`
}

type sqlDataWhitelistEntry struct {
	DeviceID    string `db:"device_id"`
	PackageName string `db:"package_name"`
}

func (s *whitelistStore) InstalledApps(deviceID string) (map[string]string, error) {
	rows := make([]sqlDataInstalledApp, 0)

	query := "SELECT * FROM device_apps WHERE device_id=$1"
	if err := s.db.Select(&rows, query, deviceID); err != nil {
		return nil, errors.Wrap(err, "failed to fetch installed apps")
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}

	apps := make(map[string]string, len(rows))
	for _, d := range rows {
		apps[d.PackageName] = d.AppName
	}

	return apps, nil
}

func (s *whitelistStore) SaveInstalledApps(deviceID string, apps map[string]string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if _, err := tx.Exec("DELETE FROM device_apps WHERE device_id=$1", deviceID); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to clear installed apps")
	}

	query := "INSERT INTO device_apps (device_id, package_name, app_name) VALUES ($1, $2, $3)"
	for pkg, name := range apps {
		if _, err := tx.Exec(query, deviceID, pkg, name); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "failed to save installed app")
		}
	}

	return tx.Commit()
}

func (s *whitelistStore) Whitelist(deviceID string) ([]string, error) {
	rows := make([]sqlDataWhitelistEntry, 0)

	query := "SELECT * FROM device_whitelist WHERE device_id=$1 ORDER BY package_name"
	if err := s.db.Select(&rows, query, deviceID); err != nil {
		return nil, errors.Wrap(err, "failed to fetch whitelist")
	}

	packages := make([]string, 0, len(rows))
	for _, d := range rows {
		packages = append(packages, d.PackageName)
	}

	return packages, nil
}

func (s *whitelistStore) SaveWhitelist(deviceID string, packages []string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if _, err := tx.Exec("DELETE FROM device_whitelist WHERE device_id=$1", deviceID); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to clear whitelist")
	}

	query := "INSERT INTO device_whitelist (device_id, package_name) VALUES ($1, $2)"
	for _, pkg := range packages {
		if _, err := tx.Exec(query, deviceID, pkg); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "failed to save whitelist entry")
		}
	}

	return tx.Commit()
}
