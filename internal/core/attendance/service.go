package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultMaxWriteAttempts = 3
	defaultRecentLimit      = 40
	maxRecentLimit          = 200
)

// Outcome は打刻処理の結果区分です。
type Outcome string

const (
	// OutcomeSuccess は記録の作成または更新が行われたことを示します。
	OutcomeSuccess Outcome = "success"
	// OutcomeInfo は記録を変更しなかったことを示します。エラーではありません。
	OutcomeInfo Outcome = "info"
)

// Options は Service の依存と設定です。ゼロ値のフィールドには既定値が使われます。
type Options struct {
	Calendar         *Calendar
	Policy           Policy
	MaxWriteAttempts int
	RecentLimit      int
	Clock            Clock
	Tx               TransactionManager
	Logger           *slog.Logger
}

// Service は勤怠打刻のユースケースをまとめます。
type Service struct {
	repo        Repository
	resolver    *Resolver
	calendar    *Calendar
	clock       Clock
	tx          TransactionManager
	logger      *slog.Logger
	maxAttempts int
	recentLimit int
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	ProcessAttendance(ctx context.Context, in ProcessInput) (*ProcessResult, error)
	ListAttendance(ctx context.Context, in ListAttendanceInput) ([]*Record, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, opts Options) (*Service, error) {
	calendar := opts.Calendar
	if calendar == nil {
		calendar = NewCalendar(nil)
	}
	if opts.Policy.Bands == (Bands{}) {
		opts.Policy.Bands = DefaultBands()
	}
	resolver, err := NewResolver(opts.Policy, calendar)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		repo:        repo,
		resolver:    resolver,
		calendar:    calendar,
		clock:       opts.Clock,
		tx:          opts.Tx,
		logger:      opts.Logger,
		maxAttempts: opts.MaxWriteAttempts,
		recentLimit: opts.RecentLimit,
	}
	if svc.clock == nil {
		svc.clock = realClock{}
	}
	if svc.tx == nil {
		svc.tx = noopTransactionManager{}
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}
	if svc.maxAttempts <= 0 {
		svc.maxAttempts = defaultMaxWriteAttempts
	}
	if svc.recentLimit <= 0 {
		svc.recentLimit = defaultRecentLimit
	}
	return svc, nil
}

// ProcessInput は打刻イベントです。RecognitionTime が nil の場合は現在時刻を使います。
// TimeWindow が nil または空文字の場合は時刻による暗黙判定を行います。
type ProcessInput struct {
	EmployeeID      string
	RecognitionTime *time.Time
	TimeWindow      *string
}

// ProcessResult は打刻処理の結果です。
type ProcessResult struct {
	Outcome Outcome
	Message string
	Slot    Slot
	Reason  Reason
	Created bool
	Record  *Record
}

// ListAttendanceInput は勤怠一覧取得時の入力です。
type ListAttendanceInput struct {
	EmployeeID string
	Limit      int
}

// ProcessAttendance は打刻イベントを判定し、当日の勤怠記録を作成または更新します。
func (s *Service) ProcessAttendance(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}

	eventTime := s.clock.Now()
	if in.RecognitionTime != nil {
		if in.RecognitionTime.IsZero() {
			return nil, fmt.Errorf("recognition_time: %w", ErrInvalidRecognitionTime)
		}
		eventTime = *in.RecognitionTime
	}

	var window *Window
	if in.TimeWindow != nil {
		if trimmed := strings.TrimSpace(*in.TimeWindow); trimmed != "" {
			w := Window(trimmed)
			window = &w
		}
	}

	day := s.calendar.Day(eventTime)
	logger := s.logger.With(
		slog.String("employee_id", employeeID),
		slog.String("date", FormatDay(day)),
	)

	for attempt := 1; ; attempt++ {
		result, err := s.processOnce(ctx, logger, employeeID, day, eventTime, window)
		if err == nil {
			return result, nil
		}
		if !IsWriteConflict(err) || attempt >= s.maxAttempts {
			return nil, err
		}
		logger.Warn("attendance write conflicted, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
	}
}

func (s *Service) processOnce(ctx context.Context, logger *slog.Logger, employeeID string, day, eventTime time.Time, window *Window) (*ProcessResult, error) {
	var result *ProcessResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByEmployeeAndDate(txCtx, employeeID, day)
		if err != nil {
			if !errors.Is(err, ErrRecordNotFound) {
				return storageError(err)
			}
			existing = nil
		}

		resolution := s.resolver.Resolve(existing, eventTime, window)
		if !resolution.IsWrite() {
			if resolution.Reason == ReasonInvalidWindow {
				return fmt.Errorf("time_window: %w: %q", ErrInvalidTimeWindow, string(*window))
			}
			logger.Info("no attendance field to update", slog.String("reason", string(resolution.Reason)))
			result = &ProcessResult{
				Outcome: OutcomeInfo,
				Message: infoMessage(resolution.Reason),
				Reason:  resolution.Reason,
				Record:  existing,
			}
			return nil
		}

		now := s.clock.Now()
		var written *Record
		if existing == nil {
			record := &Record{
				EmployeeID: employeeID,
				Date:       day,
				Status:     StatusPresent,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			record.SetSlot(resolution.Slot, resolution.Value)
			written, err = s.repo.Create(txCtx, record)
		} else {
			written, err = s.repo.UpdateSlot(txCtx, SlotUpdate{
				RecordID:    existing.ID,
				Slot:        resolution.Slot,
				Value:       resolution.Value,
				OnlyIfEmpty: !resolution.Explicit,
				UpdatedAt:   now,
			})
		}
		if errors.Is(err, ErrRecordNotFound) {
			// 読み取り後に記録が削除された場合は競合として再試行させる。
			return fmt.Errorf("%w: %w", ErrSlotConflict, err)
		}
		if err != nil {
			return storageError(err)
		}

		logger.Info("attendance recorded",
			slog.String("slot", resolution.Slot.String()),
			slog.Bool("explicit", resolution.Explicit),
			slog.Bool("created", existing == nil),
		)
		result = &ProcessResult{
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("%s recorded for %s.", resolution.Slot.Label(), employeeID),
			Slot:    resolution.Slot,
			Created: existing == nil,
			Record:  written,
		}
		return nil
	}); err != nil {
		return nil, storageError(err)
	}
	return result, nil
}

// ListAttendance は直近の勤怠記録を日付の新しい順に返します。
func (s *Service) ListAttendance(ctx context.Context, in ListAttendanceInput) ([]*Record, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = s.recentLimit
	}
	if limit > maxRecentLimit {
		return nil, fmt.Errorf("limit: %w", ErrInvalidLimit)
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListRecent(txCtx, ListRecentFilter{
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			Limit:      limit,
		})
		if err != nil {
			return storageError(err)
		}
		records = found
		return nil
	}); err != nil {
		return nil, storageError(err)
	}
	return records, nil
}

func infoMessage(reason Reason) string {
	switch reason {
	case ReasonOutOfSequence:
		return "Attendance cannot be recorded at this time."
	default:
		return "Attendance already recorded for this period or no valid next action."
	}
}

// storageError はドメインエラー以外を ErrStorage でラップします。
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStorage),
		errors.Is(err, ErrInvalidEmployeeID),
		errors.Is(err, ErrInvalidTimeWindow),
		errors.Is(err, ErrInvalidRecognitionTime),
		errors.Is(err, ErrInvalidLimit),
		errors.Is(err, ErrEmployeeNotFound),
		errors.Is(err, ErrRecordAlreadyExists),
		errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrRecordNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}
