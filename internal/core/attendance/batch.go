package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Processor は 1 件の打刻イベントを処理します。Service が実装します。
type Processor interface {
	ProcessAttendance(ctx context.Context, in ProcessInput) (*ProcessResult, error)
}

// BatchStatus はバッチ全体の結果区分です。
type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
)

// 処理済みイベントの区分です。
const (
	ProcessedCreated = "created"
	ProcessedUpdated = "updated"
)

// BatchEvent はオフライン中にクライアントが蓄積した打刻イベントです。
// LocalID はクライアント側の識別子で、結果の突き合わせにのみ使います。
type BatchEvent struct {
	LocalID         string
	EmployeeID      string
	RecognitionTime string
	TimeWindow      string
}

// ProcessedEvent は永続化に成功したイベントです。
type ProcessedEvent struct {
	LocalID  string
	RecordID string
	Status   string
}

// FailedEvent は処理に失敗したイベントです。
type FailedEvent struct {
	LocalID    string
	EmployeeID string
	Error      string
	Err        error
}

// BatchResult は成功と失敗に分割されたバッチ結果です。
type BatchResult struct {
	Processed []ProcessedEvent
	Failed    []FailedEvent
}

// Status は失敗が 1 件も無ければ success、それ以外は partial_success を返します。
func (r *BatchResult) Status() BatchStatus {
	if len(r.Failed) == 0 {
		return BatchStatusSuccess
	}
	return BatchStatusPartialSuccess
}

// Message は結果の要約文を返します。
func (r *BatchResult) Message() string {
	if len(r.Failed) == 0 {
		return fmt.Sprintf("Successfully processed %d attendance records.", len(r.Processed))
	}
	return fmt.Sprintf("Processed %d records. %d records failed.", len(r.Processed), len(r.Failed))
}

// BatchCoordinator はイベント列を入力順に 1 件ずつ処理し、失敗をイベント単位で隔離します。
type BatchCoordinator struct {
	processor Processor
	logger    *slog.Logger
}

// NewBatchCoordinator は BatchCoordinator を生成します。
func NewBatchCoordinator(processor Processor, logger *slog.Logger) *BatchCoordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchCoordinator{processor: processor, logger: logger}
}

// ProcessBatch はイベントを順に処理します。個々の失敗で処理を中断することはありません。
// バッチのイベントは明示ラベルを必須とし、暗黙判定にはフォールバックしません。
func (c *BatchCoordinator) ProcessBatch(ctx context.Context, events []BatchEvent) (*BatchResult, error) {
	if len(events) == 0 {
		return nil, ErrEmptyBatch
	}

	result := &BatchResult{
		Processed: make([]ProcessedEvent, 0, len(events)),
		Failed:    make([]FailedEvent, 0),
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, failed(event, err))
			continue
		}

		processed, err := c.processOne(ctx, event)
		if err != nil {
			c.logger.Error("batch attendance record failed",
				slog.String("local_id", event.LocalID),
				slog.String("employee_id", event.EmployeeID),
				slog.Any("error", err),
			)
			result.Failed = append(result.Failed, failed(event, err))
			continue
		}
		result.Processed = append(result.Processed, *processed)
	}

	c.logger.Info("batch attendance processed",
		slog.Int("processed", len(result.Processed)),
		slog.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (c *BatchCoordinator) processOne(ctx context.Context, event BatchEvent) (*ProcessedEvent, error) {
	employeeID := strings.TrimSpace(event.EmployeeID)
	rawTime := strings.TrimSpace(event.RecognitionTime)
	rawWindow := strings.TrimSpace(event.TimeWindow)
	if employeeID == "" || rawTime == "" || rawWindow == "" {
		return nil, fmt.Errorf("%w (employeeId, recognitionTime, or timeWindow)", ErrMissingBatchFields)
	}

	window, err := ParseWindow(rawWindow)
	if err != nil {
		return nil, err
	}

	recognitionTime, err := ParseRecognitionTime(rawTime)
	if err != nil {
		return nil, err
	}

	label := string(window)
	res, err := c.processor.ProcessAttendance(ctx, ProcessInput{
		EmployeeID:      employeeID,
		RecognitionTime: &recognitionTime,
		TimeWindow:      &label,
	})
	if err != nil {
		return nil, err
	}
	if res.Record == nil {
		return nil, fmt.Errorf("attendance: %s", res.Message)
	}

	status := ProcessedUpdated
	if res.Created {
		status = ProcessedCreated
	}
	return &ProcessedEvent{LocalID: event.LocalID, RecordID: res.Record.ID, Status: status}, nil
}

func failed(event BatchEvent, err error) FailedEvent {
	return FailedEvent{
		LocalID:    event.LocalID,
		EmployeeID: event.EmployeeID,
		Error:      err.Error(),
		Err:        err,
	}
}
