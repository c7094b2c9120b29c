package handler

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ogurasousui/face-attendance/internal/adapters/grpc/attendancev1"
	"github.com/ogurasousui/face-attendance/internal/adapters/repository/memory"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type stubAttendanceUseCase struct {
	processInput attendance.ProcessInput
	processOut   *attendance.ProcessResult
	processErr   error

	listInput attendance.ListAttendanceInput
	listOut   []*attendance.Record
	listErr   error
}

func (s *stubAttendanceUseCase) ProcessAttendance(ctx context.Context, in attendance.ProcessInput) (*attendance.ProcessResult, error) {
	s.processInput = in
	return s.processOut, s.processErr
}

func (s *stubAttendanceUseCase) ListAttendance(ctx context.Context, in attendance.ListAttendanceInput) ([]*attendance.Record, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

var manila = time.FixedZone("PHT", 8*60*60)

func newBufconnClient(t *testing.T) attendancev1.AttendanceServiceClient {
	t.Helper()

	employees := memory.NewEmployeeRepository(&employee.Employee{ID: "emp-1", FirstName: "Juan", LastName: "Dela Cruz"})
	repo := memory.NewAttendanceRepository(employees)
	svc, err := attendance.NewService(repo, attendance.Options{
		Calendar: attendance.NewCalendar(manila),
		Clock:    stubClock{now: time.Date(2025, 1, 6, 8, 30, 0, 0, manila)},
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	attendancev1.RegisterAttendanceServiceServer(srv, NewAttendanceGrpcHandler(svc, attendance.NewBatchCoordinator(svc, nil)))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return attendancev1.NewAttendanceServiceClient(conn)
}

func TestAttendanceService_EndToEnd(t *testing.T) {
	t.Parallel()

	client := newBufconnClient(t)
	ctx := context.Background()

	first, err := client.ProcessAttendance(ctx, &attendancev1.ProcessAttendanceRequest{
		EmployeeID:      "emp-1",
		RecognitionTime: "2025-01-06T08:05:00+08:00",
	})
	require.NoError(t, err)
	require.Equal(t, "success", first.Status)
	require.Equal(t, "checkInAm", first.Slot)
	require.True(t, first.Created)
	require.NotNil(t, first.Attendance.CheckInAM)

	// 午前出勤済みで昼休み前の打刻は午前退勤として扱われる。
	second, err := client.ProcessAttendance(ctx, &attendancev1.ProcessAttendanceRequest{
		EmployeeID:      "emp-1",
		RecognitionTime: "2025-01-06T08:07:00+08:00",
	})
	require.NoError(t, err)
	require.Equal(t, "success", second.Status)
	require.Equal(t, "checkOutAm", second.Slot)
	require.False(t, second.Created)

	repeat, err := client.ProcessAttendance(ctx, &attendancev1.ProcessAttendanceRequest{
		EmployeeID:      "emp-1",
		RecognitionTime: "2025-01-06T08:10:00+08:00",
	})
	require.NoError(t, err)
	require.Equal(t, "info", repeat.Status)
	require.Equal(t, first.Attendance.ID, repeat.Attendance.ID)

	batch, err := client.ProcessAttendanceBatch(ctx, &attendancev1.ProcessAttendanceBatchRequest{
		Records: []*attendancev1.BatchRecord{
			{LocalID: "1", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T13:02:00+08:00", TimeWindow: "PM In"},
			{LocalID: "2", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T13:00:00+08:00", TimeWindow: "Lunch"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "partial_success", batch.Status)
	require.Equal(t, "Processed 1 records. 1 records failed.", batch.Message)
	require.Len(t, batch.ProcessedRecords, 1)
	require.Equal(t, first.Attendance.ID, batch.ProcessedRecords[0].DBID)
	require.Equal(t, "updated", batch.ProcessedRecords[0].Status)
	require.Len(t, batch.FailedRecords, 1)
	require.Equal(t, "2", batch.FailedRecords[0].LocalID)
	require.Equal(t, codes.InvalidArgument.String(), batch.FailedRecords[0].Code)

	list, err := client.ListAttendance(ctx, &attendancev1.ListAttendanceRequest{})
	require.NoError(t, err)
	require.Len(t, list.Records, 1)
	require.Equal(t, "Juan Dela Cruz", list.Records[0].EmployeeName)
	require.Equal(t, "2025-01-06", list.Records[0].Date)
	require.NotNil(t, list.Records[0].CheckInPM)
	require.Nil(t, list.Records[0].CheckOutPM)
}

func TestAttendanceService_InvalidArgumentCarriesFieldViolation(t *testing.T) {
	t.Parallel()

	client := newBufconnClient(t)

	_, err := client.ProcessAttendance(context.Background(), &attendancev1.ProcessAttendanceRequest{EmployeeID: "  "})
	require.Error(t, err)

	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.InvalidArgument, st.Code())

	var field string
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok && len(br.GetFieldViolations()) > 0 {
			field = br.GetFieldViolations()[0].GetField()
		}
	}
	require.Equal(t, "employee_id", field)
}

func TestAttendanceService_EmptyBatch(t *testing.T) {
	t.Parallel()

	client := newBufconnClient(t)

	_, err := client.ProcessAttendanceBatch(context.Background(), &attendancev1.ProcessAttendanceBatchRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAttendanceGrpcHandler_ProcessAttendance_PassesInput(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	value := time.Date(2025, 1, 6, 13, 1, 0, 0, manila)
	stub := &stubAttendanceUseCase{processOut: &attendance.ProcessResult{
		Outcome: attendance.OutcomeSuccess,
		Message: "Check-in PM recorded for emp-1.",
		Slot:    attendance.SlotCheckInPM,
		Record:  &attendance.Record{ID: "rec-1", EmployeeID: "emp-1", Date: day, CheckInPM: &value, Status: attendance.StatusPresent},
	}}
	h := NewAttendanceGrpcHandler(stub, nil)

	resp, err := h.ProcessAttendance(context.Background(), &attendancev1.ProcessAttendanceRequest{
		EmployeeID:      "emp-1",
		RecognitionTime: "2025-01-06T13:01:00+08:00",
		TimeWindow:      " PM_IN ",
	})
	require.NoError(t, err)

	require.Equal(t, "emp-1", stub.processInput.EmployeeID)
	require.NotNil(t, stub.processInput.RecognitionTime)
	require.True(t, stub.processInput.RecognitionTime.Equal(value))
	require.Equal(t, "PM_IN", *stub.processInput.TimeWindow)

	require.Equal(t, "checkInPm", resp.Slot)
	require.Equal(t, "2025-01-06", resp.Attendance.Date)
	require.Equal(t, "2025-01-06T13:01:00+08:00", *resp.Attendance.CheckInPM)
	require.Nil(t, resp.Attendance.CheckInAM)
}

func TestAttendanceGrpcHandler_ProcessAttendance_BadTime(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{}
	h := NewAttendanceGrpcHandler(stub, nil)

	_, err := h.ProcessAttendance(context.Background(), &attendancev1.ProcessAttendanceRequest{
		EmployeeID:      "emp-1",
		RecognitionTime: "yesterday",
	})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Empty(t, stub.processInput.EmployeeID)
}

func TestAttendanceGrpcHandler_ListAttendance_NegativeLimit(t *testing.T) {
	t.Parallel()

	h := NewAttendanceGrpcHandler(&stubAttendanceUseCase{}, nil)

	_, err := h.ListAttendance(context.Background(), &attendancev1.ListAttendanceRequest{Limit: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "nil", err: nil, want: codes.OK},
		{name: "window", err: attendance.ErrInvalidTimeWindow, want: codes.InvalidArgument},
		{name: "missing fields", err: attendance.ErrMissingBatchFields, want: codes.InvalidArgument},
		{name: "page token", err: employee.ErrInvalidPageToken, want: codes.InvalidArgument},
		{name: "employee", err: attendance.ErrEmployeeNotFound, want: codes.NotFound},
		{name: "employee lookup", err: employee.ErrEmployeeNotFound, want: codes.NotFound},
		{name: "conflict", err: attendance.ErrSlotConflict, want: codes.Aborted},
		{name: "duplicate", err: attendance.ErrRecordAlreadyExists, want: codes.Aborted},
		{name: "canceled", err: context.Canceled, want: codes.Canceled},
		{name: "deadline", err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{name: "storage", err: errors.Join(attendance.ErrStorage, errors.New("connection reset")), want: codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, status.Code(toStatusError(tc.err)))
		})
	}
}
