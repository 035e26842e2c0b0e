package storage

type storageError string

const (
	ErrNotFound = storageError("not found")
	// ErrConflict is returned by conditional session updates when the
	// device status changed between the read and the write.
	ErrConflict = storageError("conflict")
)

func (e storageError) Error() string {
	return string(e)
}
