package service

import (
	"context"
	"fmt"
)

// PipelineService runs the full per-user pass: mastery recomputation
// first, then scheduling. The ordering matters: the scheduler must read
// the mastery the first step just committed.
type PipelineService struct {
	mastery   *MasteryService
	schedules *ScheduleService
}

func NewPipelineService(mastery *MasteryService, schedules *ScheduleService) *PipelineService {
	return &PipelineService{mastery: mastery, schedules: schedules}
}

func (p *PipelineService) RunForUser(ctx context.Context, userID, stream string) error {
	if err := p.mastery.ProcessOneUser(ctx, userID, stream); err != nil {
		return fmt.Errorf("mastery pass failed: %w", err)
	}
	if err := p.schedules.UpdateSchedulesForUser(ctx, userID); err != nil {
		return fmt.Errorf("scheduling pass failed: %w", err)
	}
	return nil
}
