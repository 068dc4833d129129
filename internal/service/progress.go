package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/malla/internal/curriculum"
	"github.com/jask/malla/internal/database"
	"github.com/jask/malla/internal/database/repository"
)

// Change describes one applied transition.
type Change struct {
	CourseID curriculum.ID
	From     curriculum.State
	To       curriculum.State
}

// ProgressService wraps the registry's mutations with history and logging.
// History and Maintenance are optional (the file backend has neither).
// Key is the progress entry the registry writes to; history rows and resets
// are scoped to it.
type ProgressService struct {
	Registry    *curriculum.Registry
	History     *repository.HistoryRepo
	Maintenance *MaintenanceService
	Key         string
	Log         zerolog.Logger
}

// Advance moves a course to its next state. The registry writes the
// snapshot; the change is then appended to the history. A history failure
// is logged and does not undo the change.
func (s *ProgressService) Advance(ctx context.Context, id curriculum.ID) (Change, error) {
	from := s.Registry.State(id)
	to, err := s.Registry.Advance(ctx, id)
	if errors.Is(err, curriculum.ErrUnknownCourse) {
		return Change{}, err
	}
	ch := Change{CourseID: id, From: from, To: to}
	if err != nil {
		s.Log.Error().Err(err).Str("course", string(id)).Msg("persist progress")
		return ch, err
	}
	s.Log.Info().Str("course", string(id)).Str("from", from.String()).Str("to", to.String()).Msg("course advanced")

	if s.History != nil {
		rec := repository.StateChange{
			ID:        uuid.NewString(),
			StoreKey:  s.Key,
			CourseID:  string(id),
			From:      from.String(),
			To:        to.String(),
			ChangedAt: database.Now(),
		}
		if herr := s.History.Insert(ctx, rec); herr != nil {
			s.Log.Warn().Err(herr).Str("course", string(id)).Msg("record history")
		}
	}
	return ch, nil
}

// Recent returns the latest recorded changes, newest first.
func (s *ProgressService) Recent(ctx context.Context, limit int) ([]repository.StateChange, error) {
	if s.History == nil {
		return nil, nil
	}
	return s.History.Recent(ctx, s.Key, limit)
}

// Reset clears the stored progress and history under Key, then writes an
// all-pending snapshot.
func (s *ProgressService) Reset(ctx context.Context) error {
	if s.Maintenance != nil {
		if err := s.Maintenance.Reset(ctx, s.Key); err != nil {
			return fmt.Errorf("reset storage: %w", err)
		}
	}
	if err := s.Registry.Reset(ctx); err != nil {
		return err
	}
	s.Log.Info().Int("courses", s.Registry.Len()).Msg("progress reset")
	return nil
}
