package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededRepositories() (*AttendanceRepository, *EmployeeRepository) {
	employees := NewEmployeeRepository(
		&employee.Employee{ID: "emp-1", FirstName: "Juan", LastName: "Dela Cruz"},
		&employee.Employee{ID: "emp-2", FirstName: "Maria", MiddleName: "Luz", LastName: "Reyes"},
	)
	return NewAttendanceRepository(employees), employees
}

func TestAttendanceRepository_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(8 * time.Hour)

	created, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: day, CheckInAM: &checkIn})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, attendance.StatusPresent, created.Status)

	found, err := repo.FindByEmployeeAndDate(ctx, "emp-1", day)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.True(t, found.CheckInAM.Equal(checkIn))

	// 返却値を書き換えても保存済みの記録には影響しない。
	*found.CheckInAM = checkIn.Add(time.Hour)
	again, err := repo.FindByEmployeeAndDate(ctx, "emp-1", day)
	require.NoError(t, err)
	require.True(t, again.CheckInAM.Equal(checkIn))

	_, err = repo.FindByEmployeeAndDate(ctx, "emp-1", day.AddDate(0, 0, 1))
	require.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestAttendanceRepository_CreateRejectsDuplicateDay(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: day})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: day})
	require.ErrorIs(t, err, attendance.ErrRecordAlreadyExists)
}

func TestAttendanceRepository_CreateUnknownEmployee(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()

	_, err := repo.Create(context.Background(), &attendance.Record{EmployeeID: "ghost", Date: time.Now()})
	require.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestAttendanceRepository_UpdateSlot(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(8 * time.Hour)

	created, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: day, CheckInAM: &checkIn})
	require.NoError(t, err)

	checkOut := day.Add(12 * time.Hour)
	updated, err := repo.UpdateSlot(ctx, attendance.SlotUpdate{
		RecordID:    created.ID,
		Slot:        attendance.SlotCheckOutAM,
		Value:       checkOut,
		OnlyIfEmpty: true,
		UpdatedAt:   checkOut,
	})
	require.NoError(t, err)
	require.True(t, updated.CheckOutAM.Equal(checkOut))

	_, err = repo.UpdateSlot(ctx, attendance.SlotUpdate{
		RecordID:    created.ID,
		Slot:        attendance.SlotCheckOutAM,
		Value:       checkOut.Add(time.Minute),
		OnlyIfEmpty: true,
	})
	require.ErrorIs(t, err, attendance.ErrSlotConflict)

	overwritten, err := repo.UpdateSlot(ctx, attendance.SlotUpdate{
		RecordID: created.ID,
		Slot:     attendance.SlotCheckOutAM,
		Value:    checkOut.Add(time.Minute),
	})
	require.NoError(t, err)
	require.True(t, overwritten.CheckOutAM.Equal(checkOut.Add(time.Minute)))

	_, err = repo.UpdateSlot(ctx, attendance.SlotUpdate{RecordID: "missing", Slot: attendance.SlotCheckInPM})
	require.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestAttendanceRepository_ListRecent(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		day := base.AddDate(0, 0, i)
		_, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: day, UpdatedAt: day})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-2", Date: base, UpdatedAt: base})
	require.NoError(t, err)

	records, err := repo.ListRecent(ctx, attendance.ListRecentFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, base.AddDate(0, 0, 2), records[0].Date)
	require.Equal(t, "Juan Dela Cruz", records[0].EmployeeName)

	onlyMaria, err := repo.ListRecent(ctx, attendance.ListRecentFilter{EmployeeID: "emp-2", Limit: 10})
	require.NoError(t, err)
	require.Len(t, onlyMaria, 1)
	require.Equal(t, "Maria Luz Reyes", onlyMaria[0].EmployeeName)

	_, err = repo.ListRecent(ctx, attendance.ListRecentFilter{})
	require.ErrorIs(t, err, attendance.ErrInvalidLimit)
}

func TestAttendanceRepository_ConcurrentEventsKeepOneRecordPerDay(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	loc := time.FixedZone("PHT", 8*60*60)
	svc, err := attendance.NewService(repo, attendance.Options{
		Calendar: attendance.NewCalendar(loc),
	})
	require.NoError(t, err)

	eventTime := time.Date(2025, 1, 6, 8, 5, 0, 0, loc)
	const workers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		info    int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ProcessAttendance(context.Background(), attendance.ProcessInput{
				EmployeeID:      "emp-1",
				RecognitionTime: &eventTime,
			})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			switch result.Outcome {
			case attendance.OutcomeSuccess:
				success++
			case attendance.OutcomeInfo:
				info++
			}
		}()
	}
	wg.Wait()

	// 1 件目が午前出勤、2 件目が午前退勤を書き込み、残りは記録済みとなる。
	require.Equal(t, 2, success)
	require.Equal(t, workers-2, info)

	records, err := repo.ListRecent(context.Background(), attendance.ListRecentFilter{EmployeeID: "emp-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].CheckInAM.Equal(eventTime))
	require.True(t, records[0].CheckOutAM.Equal(eventTime))
	require.Nil(t, records[0].CheckInPM)
}

func TestAttendanceRepository_OutOfOrderConcurrentEventsKeepSlotsOrdered(t *testing.T) {
	t.Parallel()

	repo, _ := newSeededRepositories()
	loc := time.FixedZone("PHT", 8*60*60)
	svc, err := attendance.NewService(repo, attendance.Options{
		Calendar: attendance.NewCalendar(loc),
	})
	require.NoError(t, err)

	base := time.Date(2025, 1, 6, 8, 15, 0, 0, loc)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		eventTime := base.Add(time.Duration(i) * time.Second)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessAttendance(context.Background(), attendance.ProcessInput{
				EmployeeID:      "emp-1",
				RecognitionTime: &eventTime,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := repo.ListRecent(context.Background(), attendance.ListRecentFilter{EmployeeID: "emp-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.CheckInAM)
	if rec.CheckOutAM != nil {
		require.False(t, rec.CheckOutAM.Before(*rec.CheckInAM), "check-out AM %s precedes check-in AM %s", rec.CheckOutAM, rec.CheckInAM)
	}
	require.Nil(t, rec.CheckInPM)
}
