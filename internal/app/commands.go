package service

import (
	"context"

	"github.com/okian/deliberation/internal/domain/model"
)

// StartDeliberation moves category c's deliberation to in-progress.
func (s *Service) StartDeliberation(ctx context.Context, c model.Category) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandStartDeliberation, Category: c})
}

// CompleteDeliberation closes category c's deliberation.
func (s *Service) CompleteDeliberation(ctx context.Context, c model.Category) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandCompleteDeliberation, Category: c})
}

// UpdatePicklist replaces category c's picklist.
func (s *Service) UpdatePicklist(ctx context.Context, c model.Category, ids []string) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandUpdatePicklist, Category: c, Picklist: ids})
}

// AddToPicklist appends a team to category c's picklist.
func (s *Service) AddToPicklist(ctx context.Context, c model.Category, teamID string) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandAddToPicklist, Category: c, TeamID: teamID})
}

// RemoveFromPicklist drops a team from category c's picklist.
func (s *Service) RemoveFromPicklist(ctx context.Context, c model.Category, teamID string) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandRemoveFromPicklist, Category: c, TeamID: teamID})
}

// ReorderPicklist moves the entry at from to to.
func (s *Service) ReorderPicklist(ctx context.Context, c model.Category, from, to int) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandReorderPicklist, Category: c, FromIndex: from, ToIndex: to})
}

// StartFinal opens the final deliberation.
func (s *Service) StartFinal(ctx context.Context) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandStartFinal})
}

// AdvanceStage leaves stage from for the next applicable stage.
func (s *Service) AdvanceStage(ctx context.Context, from model.Stage) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandAdvanceStage, Stage: from})
}

// UpdateAward sets the winners of an award in the current stage.
func (s *Service) UpdateAward(ctx context.Context, award string, winners []string) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandUpdateAward, Award: award, Winners: winners})
}

// UpdateManualEligibility replaces the manual override list of a stage.
func (s *Service) UpdateManualEligibility(ctx context.Context, stage model.Stage, teams []string) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandUpdateManualEligibility, Stage: stage, Teams: teams})
}

// ApproveFinal completes the final deliberation.
func (s *Service) ApproveFinal(ctx context.Context) (model.State, error) {
	return s.run(ctx, model.Command{Kind: model.CommandApproveFinal})
}

func (s *Service) run(ctx context.Context, cmd model.Command) (model.State, error) {
	res, err := s.Execute(ctx, cmd)
	return res.State, err
}
