package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Recall returns the relations persisted by an earlier Convert of the same
// requirement set.
func (s Service) Recall(ctx context.Context, req RecallRequest) (RecallResult, error) {
	if s.Results == nil {
		return RecallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("service requires a result store")
	}
	set, err := requirementSet(req.Requirements, req.RequirementFile, nil)
	if err != nil {
		return RecallResult{}, err
	}
	cfg, err := s.loadConfig(ctx, req.Settings)
	if err != nil {
		return RecallResult{}, err
	}
	deps, err := s.Results(cfg.General.DependencyStore).Recall(set.Content)
	if err != nil {
		return RecallResult{}, err
	}
	return RecallResult{Dependencies: deps}, nil
}
