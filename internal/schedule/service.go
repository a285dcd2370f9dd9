package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/metrics"

	"github.com/google/uuid"
)

var ErrSlotNotFound = errors.New("availability slot not found")

type Service interface {
	GetSchedule(ctx context.Context, trainerID int, weekStart time.Time) (*WeeklySchedule, error)
	SetDayActive(ctx context.Context, trainerID int, weekStart time.Time, day string, active bool) (*WeeklySchedule, error)
	AddSlot(ctx context.Context, trainerID int, weekStart time.Time, day string, slot TimeSlot) (*WeeklySchedule, error)
	RemoveSlot(ctx context.Context, trainerID int, weekStart time.Time, day, slotID string) (*WeeklySchedule, error)
	UpdateSlot(ctx context.Context, trainerID int, weekStart time.Time, day, slotID, field, value string) (*WeeklySchedule, []string, error)
	Save(ctx context.Context, trainerID int, req SaveScheduleRequest) (*WeeklySchedule, error)
	Materialize(ctx context.Context, trainerID int, weekStart time.Time) (int, error)
}

type service struct {
	repo Repository
	now  func() time.Time

	// Uncommitted edits per trainer. Cleared on save.
	mu     sync.Mutex
	drafts map[int]*WeeklySchedule
}

func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		now:    time.Now,
		drafts: make(map[int]*WeeklySchedule),
	}
}

// draft returns the trainer's working copy, loading the committed week
// when no edits are pending. Callers must hold s.mu for the whole edit:
// the returned schedule is shared between that trainer's requests.
func (s *service) draft(ctx context.Context, trainerID int, weekStart time.Time) (*WeeklySchedule, error) {
	if d, ok := s.drafts[trainerID]; ok && d.WeekStart.Equal(weekStart) {
		return d, nil
	}

	stored, err := s.repo.GetSchedule(ctx, trainerID, weekStart)
	if errors.Is(err, ErrScheduleNotFound) {
		stored = NewWeeklySchedule(trainerID, weekStart)
	} else if err != nil {
		return nil, err
	}

	s.drafts[trainerID] = stored
	return stored, nil
}

func (s *service) GetSchedule(ctx context.Context, trainerID int, weekStart time.Time) (*WeeklySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft(ctx, trainerID, weekStart)
}

func (s *service) SetDayActive(ctx context.Context, trainerID int, weekStart time.Time, day string, active bool) (*WeeklySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(ctx, trainerID, weekStart)
	if err != nil {
		return nil, err
	}
	if err := d.SetDayActive(day, active); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) AddSlot(ctx context.Context, trainerID int, weekStart time.Time, day string, slot TimeSlot) (*WeeklySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(ctx, trainerID, weekStart)
	if err != nil {
		return nil, err
	}

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	if err := d.AddSlot(day, slot, s.now()); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) RemoveSlot(ctx context.Context, trainerID int, weekStart time.Time, day, slotID string) (*WeeklySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(ctx, trainerID, weekStart)
	if err != nil {
		return nil, err
	}
	if err := d.RemoveSlot(day, slotID); err != nil {
		return nil, ErrSlotNotFound
	}
	return d, nil
}

func (s *service) UpdateSlot(ctx context.Context, trainerID int, weekStart time.Time, day, slotID, field, value string) (*WeeklySchedule, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draft(ctx, trainerID, weekStart)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := d.UpdateSlot(day, slotID, field, value)
	if err != nil {
		return nil, nil, err
	}
	return d, warnings, nil
}

// Save validates and commits a whole weekly schedule, then materializes
// the committed week into bookable slots.
func (s *service) Save(ctx context.Context, trainerID int, req SaveScheduleRequest) (*WeeklySchedule, error) {
	schedule := NewWeeklySchedule(trainerID, req.WeekStart)
	for _, posted := range req.Schedule {
		for i := range schedule.Days {
			if schedule.Days[i].Day == posted.Day {
				slots := posted.Slots
				for j := range slots {
					if slots[j].ID == "" {
						slots[j].ID = uuid.NewString()
					}
				}
				schedule.Days[i].IsActive = posted.IsActive
				schedule.Days[i].Slots = slots
			}
		}
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, trainerID)
	s.mu.Unlock()

	if _, err := s.Materialize(ctx, trainerID, req.WeekStart); err != nil {
		return nil, err
	}

	schedule.Dirty = false
	return schedule, nil
}

func (s *service) Materialize(ctx context.Context, trainerID int, weekStart time.Time) (int, error) {
	stored, err := s.repo.GetSchedule(ctx, trainerID, weekStart)
	if errors.Is(err, ErrScheduleNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	dated := ExpandWeek(stored, s.now())
	created, err := s.repo.MaterializeSlots(ctx, trainerID, dated)
	if err != nil {
		return created, err
	}

	metrics.SlotsMaterializedTotal.Add(float64(created))
	return created, nil
}
