package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	inputs []ProcessInput
	errFor map[string]error
}

func (p *recordingProcessor) ProcessAttendance(_ context.Context, in ProcessInput) (*ProcessResult, error) {
	p.inputs = append(p.inputs, in)
	if err := p.errFor[in.EmployeeID]; err != nil {
		return nil, err
	}
	return &ProcessResult{
		Outcome: OutcomeSuccess,
		Slot:    SlotCheckInAM,
		Created: len(p.inputs) == 1,
		Record:  &Record{ID: "db-" + in.EmployeeID},
	}, nil
}

func TestBatchCoordinator_PartialSuccess(t *testing.T) {
	t.Parallel()

	repo := newFakeAttendanceRepo()
	svc := newTestService(t, repo, &stubClock{now: at(18, 0)})
	coordinator := NewBatchCoordinator(svc, nil)

	result, err := coordinator.ProcessBatch(context.Background(), []BatchEvent{
		{LocalID: "1", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T08:15:00.000Z", TimeWindow: "AM In"},
		{LocalID: "2", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T12:01:00.000Z"},
		{LocalID: "3", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T13:02:00.000Z", TimeWindow: "PM In"},
	})
	require.NoError(t, err)

	require.Len(t, result.Processed, 2)
	require.Len(t, result.Failed, 1)
	require.Equal(t, BatchStatusPartialSuccess, result.Status())
	require.Equal(t, "Processed 2 records. 1 records failed.", result.Message())

	require.Equal(t, ProcessedEvent{LocalID: "1", RecordID: "att-1", Status: ProcessedCreated}, result.Processed[0])
	require.Equal(t, ProcessedEvent{LocalID: "3", RecordID: "att-1", Status: ProcessedUpdated}, result.Processed[1])

	require.Equal(t, "2", result.Failed[0].LocalID)
	require.Equal(t, "emp-1", result.Failed[0].EmployeeID)
	require.ErrorIs(t, result.Failed[0].Err, ErrMissingBatchFields)

	require.Len(t, repo.records, 1)
	rec := repo.records[dayKey("emp-1", at(0, 0))]
	require.True(t, rec.CheckInAM.Equal(at(8, 15)))
	require.Nil(t, rec.CheckOutAM)
	require.True(t, rec.CheckInPM.Equal(at(13, 2)))
}

func TestBatchCoordinator_IsolatesFailures(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("attendance: storage failure: connection reset")
	proc := &recordingProcessor{errFor: map[string]error{"emp-2": storageErr}}
	coordinator := NewBatchCoordinator(proc, nil)

	result, err := coordinator.ProcessBatch(context.Background(), []BatchEvent{
		{LocalID: "a", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T08:15:00Z", TimeWindow: "AM In"},
		{LocalID: "b", EmployeeID: "emp-2", RecognitionTime: "2025-01-06T08:16:00Z", TimeWindow: "AM In"},
		{LocalID: "c", EmployeeID: "emp-3", RecognitionTime: "2025-01-06T08:17:00Z", TimeWindow: "Lunch"},
		{LocalID: "d", EmployeeID: "emp-4", RecognitionTime: "yesterday", TimeWindow: "AM Out"},
		{LocalID: "e", EmployeeID: "emp-5", RecognitionTime: "2025-01-06T08:18:00Z", TimeWindow: "am_out"},
	})
	require.NoError(t, err)

	require.Len(t, result.Processed, 2)
	require.Equal(t, "a", result.Processed[0].LocalID)
	require.Equal(t, "e", result.Processed[1].LocalID)

	require.Len(t, result.Failed, 3)
	require.Equal(t, "b", result.Failed[0].LocalID)
	require.Equal(t, storageErr.Error(), result.Failed[0].Error)
	require.ErrorIs(t, result.Failed[1].Err, ErrInvalidTimeWindow)
	require.ErrorIs(t, result.Failed[2].Err, ErrInvalidRecognitionTime)

	// 明示ラベルは正規化されてから処理に渡る。
	require.Len(t, proc.inputs, 3)
	require.Equal(t, string(WindowAMOut), *proc.inputs[2].TimeWindow)
	require.True(t, proc.inputs[0].RecognitionTime.Equal(time.Date(2025, 1, 6, 8, 15, 0, 0, time.UTC)))
}

func TestBatchCoordinator_AllSucceeded(t *testing.T) {
	t.Parallel()

	coordinator := NewBatchCoordinator(&recordingProcessor{}, nil)

	result, err := coordinator.ProcessBatch(context.Background(), []BatchEvent{
		{LocalID: "1", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T08:15:00Z", TimeWindow: "AM In"},
	})
	require.NoError(t, err)
	require.Equal(t, BatchStatusSuccess, result.Status())
	require.Empty(t, result.Failed)
	require.Equal(t, "Successfully processed 1 attendance records.", result.Message())
}

func TestBatchCoordinator_EmptyBatch(t *testing.T) {
	t.Parallel()

	_, err := NewBatchCoordinator(&recordingProcessor{}, nil).ProcessBatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestBatchCoordinator_CanceledContextFailsRemaining(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &recordingProcessor{}
	result, err := NewBatchCoordinator(proc, nil).ProcessBatch(ctx, []BatchEvent{
		{LocalID: "1", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T08:15:00Z", TimeWindow: "AM In"},
		{LocalID: "2", EmployeeID: "emp-1", RecognitionTime: "2025-01-06T12:15:00Z", TimeWindow: "AM Out"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Processed)
	require.Len(t, result.Failed, 2)
	require.ErrorIs(t, result.Failed[0].Err, context.Canceled)
	require.Empty(t, proc.inputs)
}
