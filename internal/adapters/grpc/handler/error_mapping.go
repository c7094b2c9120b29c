package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, attendance.ErrInvalidEmployeeID),
		errors.Is(err, attendance.ErrInvalidTimeWindow),
		errors.Is(err, attendance.ErrInvalidRecognitionTime),
		errors.Is(err, attendance.ErrInvalidLimit),
		errors.Is(err, attendance.ErrEmptyBatch),
		errors.Is(err, attendance.ErrMissingBatchFields),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken):
		return invalidArgument(err)
	case errors.Is(err, attendance.ErrEmployeeNotFound), errors.Is(err, employee.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case attendance.IsWriteConflict(err):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func invalidArgument(err error) error {
	st := status.New(codes.InvalidArgument, err.Error())
	field := violatedField(err)
	if field == "" {
		return st.Err()
	}

	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: err.Error()},
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

func violatedField(err error) string {
	switch {
	case errors.Is(err, attendance.ErrInvalidEmployeeID):
		return "employee_id"
	case errors.Is(err, attendance.ErrInvalidTimeWindow):
		return "time_window"
	case errors.Is(err, attendance.ErrInvalidRecognitionTime):
		return "recognition_time"
	case errors.Is(err, attendance.ErrInvalidLimit):
		return "limit"
	case errors.Is(err, attendance.ErrEmptyBatch):
		return "records"
	case errors.Is(err, employee.ErrInvalidID):
		return "id"
	case errors.Is(err, employee.ErrInvalidPageSize):
		return "page_size"
	case errors.Is(err, employee.ErrInvalidPageToken):
		return "page_token"
	default:
		return ""
	}
}
