package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ogurasousui/face-attendance/internal/core/attendance"
)

// 認識パイプラインが返す結果区分です。
const (
	recognitionSuccess = "success"
	recognitionFail    = "fail"
)

type recognitionData struct {
	EmployeeID FlexibleID `json:"employeeId"`
	Name       string     `json:"name"`
}

type recognitionRequest struct {
	Status      string           `json:"status" validate:"required,oneof=success fail"`
	Message     string           `json:"message"`
	Data        *recognitionData `json:"data"`
	FrameBase64 string           `json:"frame_base64"`
}

type recognitionResponse struct {
	Status           string                    `json:"status"`
	Message          string                    `json:"message"`
	EmployeeID       *FlexibleID               `json:"employeeId,omitempty"`
	EmployeeName     string                    `json:"employeeName,omitempty"`
	AttendanceRecord *attendanceRecordResponse `json:"attendanceRecord,omitempty"`
	FrameBase64      string                    `json:"frame_base64,omitempty"`
}

// RecognitionResult は顔認証の結果を受け取り、認識できた場合は現在時刻で打刻します。
// 打刻に失敗しても認識自体は成功として 200 を返します。
func (h *Handler) RecognitionResult(w http.ResponseWriter, r *http.Request) {
	var req recognitionRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recognition result format.")
		return
	}

	switch {
	case req.Status == recognitionSuccess && req.Data != nil && strings.TrimSpace(req.Data.EmployeeID.Value) != "":
		h.recordRecognized(w, r, req)
	case req.Status == recognitionFail:
		writeJSON(w, http.StatusOK, recognitionResponse{
			Status:      recognitionFail,
			Message:     req.Message,
			FrameBase64: req.FrameBase64,
		})
	default:
		writeError(w, http.StatusBadRequest, "Invalid recognition result format.")
	}
}

func (h *Handler) recordRecognized(w http.ResponseWriter, r *http.Request, req recognitionRequest) {
	employeeID := req.Data.EmployeeID
	displayName := req.Data.Name
	if strings.TrimSpace(displayName) == "" {
		displayName = employeeID.Value
	}

	result, err := h.attendance.ProcessAttendance(r.Context(), attendance.ProcessInput{EmployeeID: employeeID.Value})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "attendance failed for recognized face",
			slog.String("employee_id", employeeID.Value),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusOK, recognitionResponse{
			Status:       "success_with_attendance_error",
			Message:      "Recognized: " + displayName + ", but attendance processing failed: " + err.Error(),
			EmployeeID:   &employeeID,
			EmployeeName: req.Data.Name,
			FrameBase64:  req.FrameBase64,
		})
		return
	}

	writeJSON(w, http.StatusOK, recognitionResponse{
		Status:           recognitionSuccess,
		Message:          "Recognized: " + displayName + ". " + result.Message,
		EmployeeID:       &employeeID,
		EmployeeName:     req.Data.Name,
		AttendanceRecord: toRecordResponse(result.Record),
		FrameBase64:      req.FrameBase64,
	})
}
