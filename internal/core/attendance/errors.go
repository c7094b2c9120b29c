package attendance

import "errors"

var (
	ErrInvalidEmployeeID      = errors.New("attendance: invalid employee id")
	ErrInvalidTimeWindow      = errors.New("attendance: invalid time window")
	ErrInvalidRecognitionTime = errors.New("attendance: invalid recognition time")
	ErrInvalidLimit           = errors.New("attendance: invalid limit")
	ErrInvalidBands           = errors.New("attendance: invalid hour bands")
	ErrEmptyBatch             = errors.New("attendance: no records provided")
	ErrMissingBatchFields     = errors.New("attendance: missing essential fields")
	ErrEmployeeNotFound       = errors.New("attendance: employee not found")
	ErrRecordNotFound         = errors.New("attendance: record not found")
	ErrRecordAlreadyExists    = errors.New("attendance: record already exists for date")
	ErrSlotConflict           = errors.New("attendance: slot was written concurrently")
	ErrStorage                = errors.New("attendance: storage failure")
)

// IsWriteConflict は楽観的な書き込みが競合に負けたことを示すエラーかを判定します。
func IsWriteConflict(err error) bool {
	return errors.Is(err, ErrRecordAlreadyExists) || errors.Is(err, ErrSlotConflict)
}
