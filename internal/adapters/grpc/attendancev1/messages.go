package attendancev1

// AttendanceRecord は勤怠記録のワイヤ表現です。時刻は RFC3339、日付は YYYY-MM-DD です。
type AttendanceRecord struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	CheckInAM    *string `json:"check_in_am,omitempty"`
	CheckOutAM   *string `json:"check_out_am,omitempty"`
	CheckInPM    *string `json:"check_in_pm,omitempty"`
	CheckOutPM   *string `json:"check_out_pm,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ProcessAttendanceRequest は 1 件の打刻イベントです。
type ProcessAttendanceRequest struct {
	EmployeeID      string `json:"employee_id"`
	RecognitionTime string `json:"recognition_time,omitempty"`
	TimeWindow      string `json:"time_window,omitempty"`
}

// ProcessAttendanceResponse は打刻イベントの処理結果です。Status は success または info です。
type ProcessAttendanceResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Slot       string            `json:"slot,omitempty"`
	Created    bool              `json:"created"`
	Attendance *AttendanceRecord `json:"attendance,omitempty"`
}

// BatchRecord はオフライン同期の 1 イベントです。
type BatchRecord struct {
	LocalID         string `json:"local_id"`
	EmployeeID      string `json:"employee_id"`
	RecognitionTime string `json:"recognition_time"`
	TimeWindow      string `json:"time_window"`
}

type ProcessAttendanceBatchRequest struct {
	Records []*BatchRecord `json:"records"`
}

type ProcessedRecord struct {
	LocalID string `json:"local_id"`
	DBID    string `json:"db_id"`
	Status  string `json:"status"`
}

type FailedRecord struct {
	LocalID    string `json:"local_id"`
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
	// Code は失敗理由の gRPC ステータスコード名です (例: InvalidArgument)。
	Code       string `json:"code"`
}

type ProcessAttendanceBatchResponse struct {
	Status           string             `json:"status"`
	Message          string             `json:"message"`
	ProcessedRecords []*ProcessedRecord `json:"processed_records"`
	FailedRecords    []*FailedRecord    `json:"failed_records"`
}

type ListAttendanceRequest struct {
	Limit      int32  `json:"limit,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

type ListAttendanceResponse struct {
	Records []*AttendanceRecord `json:"records"`
}
