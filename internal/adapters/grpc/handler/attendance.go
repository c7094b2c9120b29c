package handler

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/face-attendance/internal/adapters/grpc/attendancev1"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BatchProcessor はオフライン同期バッチを処理します。
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []attendance.BatchEvent) (*attendance.BatchResult, error)
}

// AttendanceGrpcHandler は AttendanceService の gRPC 実装です。
type AttendanceGrpcHandler struct {
	svc   attendance.UseCase
	batch BatchProcessor
	attendancev1.UnimplementedAttendanceServiceServer
}

// NewAttendanceGrpcHandler は AttendanceGrpcHandler を生成します。
func NewAttendanceGrpcHandler(svc attendance.UseCase, batch BatchProcessor) *AttendanceGrpcHandler {
	return &AttendanceGrpcHandler{svc: svc, batch: batch}
}

// ProcessAttendance は 1 件の打刻イベントを処理します。記録を変更しなかった場合も OK で status=info を返します。
func (h *AttendanceGrpcHandler) ProcessAttendance(ctx context.Context, req *attendancev1.ProcessAttendanceRequest) (*attendancev1.ProcessAttendanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := attendance.ProcessInput{EmployeeID: req.EmployeeID}
	if raw := strings.TrimSpace(req.RecognitionTime); raw != "" {
		t, err := attendance.ParseRecognitionTime(raw)
		if err != nil {
			return nil, toStatusError(err)
		}
		in.RecognitionTime = &t
	}
	if window := strings.TrimSpace(req.TimeWindow); window != "" {
		in.TimeWindow = &window
	}

	result, err := h.svc.ProcessAttendance(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	resp := &attendancev1.ProcessAttendanceResponse{
		Status:     string(result.Outcome),
		Message:    result.Message,
		Created:    result.Created,
		Attendance: toWireRecord(result.Record),
	}
	if result.Slot != attendance.SlotNone {
		resp.Slot = result.Slot.String()
	}
	return resp, nil
}

// ProcessAttendanceBatch はオフライン中に蓄積されたイベントを処理します。
func (h *AttendanceGrpcHandler) ProcessAttendanceBatch(ctx context.Context, req *attendancev1.ProcessAttendanceBatchRequest) (*attendancev1.ProcessAttendanceBatchResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	events := make([]attendance.BatchEvent, 0, len(req.Records))
	for _, rec := range req.Records {
		if rec == nil {
			continue
		}
		events = append(events, attendance.BatchEvent{
			LocalID:         rec.LocalID,
			EmployeeID:      rec.EmployeeID,
			RecognitionTime: rec.RecognitionTime,
			TimeWindow:      rec.TimeWindow,
		})
	}

	result, err := h.batch.ProcessBatch(ctx, events)
	if err != nil {
		return nil, toStatusError(err)
	}

	resp := &attendancev1.ProcessAttendanceBatchResponse{
		Status:           string(result.Status()),
		Message:          result.Message(),
		ProcessedRecords: make([]*attendancev1.ProcessedRecord, 0, len(result.Processed)),
		FailedRecords:    make([]*attendancev1.FailedRecord, 0, len(result.Failed)),
	}
	for _, p := range result.Processed {
		resp.ProcessedRecords = append(resp.ProcessedRecords, &attendancev1.ProcessedRecord{
			LocalID: p.LocalID,
			DBID:    p.RecordID,
			Status:  p.Status,
		})
	}
	for _, f := range result.Failed {
		resp.FailedRecords = append(resp.FailedRecords, &attendancev1.FailedRecord{
			LocalID:    f.LocalID,
			EmployeeID: f.EmployeeID,
			Error:      f.Error,
			Code:       failureCode(f.Err),
		})
	}
	return resp, nil
}

// ListAttendance は直近の勤怠記録を返します。
func (h *AttendanceGrpcHandler) ListAttendance(ctx context.Context, req *attendancev1.ListAttendanceRequest) (*attendancev1.ListAttendanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Limit < 0 {
		return nil, toStatusError(attendance.ErrInvalidLimit)
	}

	records, err := h.svc.ListAttendance(ctx, attendance.ListAttendanceInput{
		EmployeeID: req.EmployeeID,
		Limit:      int(req.Limit),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	resp := &attendancev1.ListAttendanceResponse{Records: make([]*attendancev1.AttendanceRecord, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, toWireRecord(rec))
	}
	return resp, nil
}

func toWireRecord(rec *attendance.Record) *attendancev1.AttendanceRecord {
	if rec == nil {
		return nil
	}
	return &attendancev1.AttendanceRecord{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		Date:         attendance.FormatDay(rec.Date),
		CheckInAM:    formatTimestamp(rec.CheckInAM),
		CheckOutAM:   formatTimestamp(rec.CheckOutAM),
		CheckInPM:    formatTimestamp(rec.CheckInPM),
		CheckOutPM:   formatTimestamp(rec.CheckOutPM),
		Status:       string(rec.Status),
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    rec.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

// failureCode はバッチ内で失敗したイベントの理由をステータスコード名で返します。
func failureCode(err error) string {
	if err == nil {
		return codes.Unknown.String()
	}
	return status.Code(toStatusError(err)).String()
}
