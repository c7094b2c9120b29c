package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON は 1 つの JSON 値を dst に読み込み、validate タグを検証します。
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return h.validate.Struct(dst)
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// FlexibleID は JSON の文字列と数値のどちらも受け付ける識別子です。
// 数値で受け取った値は応答でも数値として返します。
type FlexibleID struct {
	Value   string
	Numeric bool
}

// UnmarshalJSON は文字列または数値を受け付けます。
func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = FlexibleID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID{Value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = FlexibleID{Value: n.String(), Numeric: true}
	return nil
}

// MarshalJSON は受け取った形式のまま出力します。
func (id FlexibleID) MarshalJSON() ([]byte, error) {
	if id.Numeric {
		if _, err := strconv.ParseFloat(id.Value, 64); err == nil {
			return []byte(id.Value), nil
		}
	}
	return json.Marshal(id.Value)
}

// String は識別子の文字列表現を返します。
func (id FlexibleID) String() string {
	return id.Value
}

type attendanceRecordResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Employee   string     `json:"employee,omitempty"`
	Date       string     `json:"date"`
	CheckInAM  *time.Time `json:"checkInAm"`
	CheckOutAM *time.Time `json:"checkOutAm"`
	CheckInPM  *time.Time `json:"checkInPm"`
	CheckOutPM *time.Time `json:"checkOutPm"`
	Status     string     `json:"status"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func toRecordResponse(rec *attendance.Record) *attendanceRecordResponse {
	if rec == nil {
		return nil
	}
	resp := &attendanceRecordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Employee:   rec.EmployeeName,
		Date:       attendance.FormatDay(rec.Date),
		CheckInAM:  rec.CheckInAM,
		CheckOutAM: rec.CheckOutAM,
		CheckInPM:  rec.CheckInPM,
		CheckOutPM: rec.CheckOutPM,
		Status:     string(rec.Status),
	}
	if !rec.CreatedAt.IsZero() {
		createdAt := rec.CreatedAt
		resp.CreatedAt = &createdAt
	}
	if !rec.UpdatedAt.IsZero() {
		updatedAt := rec.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
