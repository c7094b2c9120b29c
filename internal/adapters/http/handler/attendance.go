package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ogurasousui/face-attendance/internal/core/attendance"
)

type processAttendanceRequest struct {
	EmployeeID      FlexibleID `json:"employeeId" validate:"required"`
	RecognitionTime string     `json:"recognitionTime"`
	TimeWindow      string     `json:"timeWindow"`
}

type processAttendanceResponse struct {
	Status     string                    `json:"status"`
	Message    string                    `json:"message"`
	Slot       string                    `json:"slot,omitempty"`
	Attendance *attendanceRecordResponse `json:"attendance,omitempty"`
}

// ProcessAttendance は 1 件の打刻イベントを処理します。
// 記録を変更しなかった場合は 409 と既存の記録を返します。
func (h *Handler) ProcessAttendance(w http.ResponseWriter, r *http.Request) {
	var req processAttendanceRequest
	if err := h.decodeJSON(r, &req); err != nil {
		if isValidationError(err) || errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, "Employee ID is required for attendance processing.")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := attendance.ProcessInput{EmployeeID: req.EmployeeID.String()}
	if raw := strings.TrimSpace(req.RecognitionTime); raw != "" {
		t, err := attendance.ParseRecognitionTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid recognitionTime value provided.")
			return
		}
		in.RecognitionTime = &t
	}
	if window := strings.TrimSpace(req.TimeWindow); window != "" {
		in.TimeWindow = &window
	}

	result, err := h.attendance.ProcessAttendance(r.Context(), in)
	if err != nil {
		h.writeProcessError(w, r, in.EmployeeID, err)
		return
	}

	resp := processAttendanceResponse{
		Status:     string(result.Outcome),
		Message:    result.Message,
		Attendance: toRecordResponse(result.Record),
	}
	if result.Outcome == attendance.OutcomeInfo {
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	resp.Slot = result.Slot.String()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeProcessError(w http.ResponseWriter, r *http.Request, employeeID string, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidEmployeeID):
		writeError(w, http.StatusBadRequest, "Employee ID is required for attendance processing.")
	case errors.Is(err, attendance.ErrInvalidTimeWindow):
		writeError(w, http.StatusBadRequest, "Invalid timeWindow value provided.")
	case errors.Is(err, attendance.ErrInvalidRecognitionTime):
		writeError(w, http.StatusBadRequest, "Invalid recognitionTime value provided.")
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, "Employee not found")
	case attendance.IsWriteConflict(err):
		writeError(w, http.StatusConflict, "Attendance is being recorded concurrently, please retry.")
	default:
		h.logger.ErrorContext(r.Context(), "failed to process attendance",
			slog.String("employee_id", employeeID),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to process attendance: "+err.Error())
	}
}

type batchRecordRequest struct {
	ID              FlexibleID `json:"id"`
	LocalID         FlexibleID `json:"localId"`
	EmployeeID      FlexibleID `json:"employeeId"`
	RecognitionTime string     `json:"recognitionTime"`
	TimeWindow      string     `json:"timeWindow"`
}

// localID はクライアントの識別子を返します。id と localId のどちらでも受け付けます。
func (b batchRecordRequest) localID() FlexibleID {
	if b.LocalID.Value != "" {
		return b.LocalID
	}
	return b.ID
}

type batchRequest struct {
	Records []batchRecordRequest `json:"records" validate:"required,min=1"`
}

type processedRecordResponse struct {
	LocalID FlexibleID `json:"localId"`
	DBID    string     `json:"dbId"`
	Status  string     `json:"status"`
}

type failedRecordResponse struct {
	LocalID    FlexibleID `json:"localId"`
	EmployeeID FlexibleID `json:"employeeId"`
	Error      string     `json:"error"`
}

type batchResponse struct {
	Status           string                    `json:"status"`
	Message          string                    `json:"message"`
	ProcessedRecords []processedRecordResponse `json:"processedRecords"`
	FailedRecords    []failedRecordResponse    `json:"failedRecords"`
}

// ProcessAttendanceBatch はオフライン中に蓄積された打刻イベントを同期します。
// 個々の失敗は failedRecords に入り、応答は常に 200 です。
func (h *Handler) ProcessAttendanceBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := h.decodeJSON(r, &req); err != nil {
		if isValidationError(err) || errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, "No records provided for batch processing.")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events := make([]attendance.BatchEvent, len(req.Records))
	localIDs := make(map[string]FlexibleID, len(req.Records))
	employeeIDs := make(map[string]FlexibleID, len(req.Records))
	for i, rec := range req.Records {
		local := rec.localID()
		localIDs[local.Value] = local
		employeeIDs[rec.EmployeeID.Value] = rec.EmployeeID
		events[i] = attendance.BatchEvent{
			LocalID:         local.Value,
			EmployeeID:      rec.EmployeeID.Value,
			RecognitionTime: rec.RecognitionTime,
			TimeWindow:      rec.TimeWindow,
		}
	}

	result, err := h.batch.ProcessBatch(r.Context(), events)
	if err != nil {
		if errors.Is(err, attendance.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, "No records provided for batch processing.")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to process attendance batch", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to process attendance batch: "+err.Error())
		return
	}

	resp := batchResponse{
		Status:           string(result.Status()),
		Message:          result.Message(),
		ProcessedRecords: make([]processedRecordResponse, 0, len(result.Processed)),
		FailedRecords:    make([]failedRecordResponse, 0, len(result.Failed)),
	}
	for _, p := range result.Processed {
		resp.ProcessedRecords = append(resp.ProcessedRecords, processedRecordResponse{
			LocalID: localIDs[p.LocalID],
			DBID:    p.RecordID,
			Status:  p.Status,
		})
	}
	for _, f := range result.Failed {
		resp.FailedRecords = append(resp.FailedRecords, failedRecordResponse{
			LocalID:    localIDs[f.LocalID],
			EmployeeID: employeeIDs[f.EmployeeID],
			Error:      f.Error,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type listAttendanceResponse struct {
	Status  string                      `json:"status"`
	Records []*attendanceRecordResponse `json:"records"`
}

// ListAttendance は直近の勤怠記録を日付の新しい順に返します。
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.attendance.ListAttendance(r.Context(), attendance.ListAttendanceInput{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Limit:      limit,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to list attendance", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := listAttendanceResponse{Status: "success", Records: make([]*attendanceRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}
