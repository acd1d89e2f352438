package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/model"
)

// TemplateTag marks a workflow as a reusable template in the catalog.
const TemplateTag = "template"

// TemplateService resolves template workflows from the backend catalog
// by tag-set containment.
type TemplateService struct {
	backend Backend
	logger  zerolog.Logger
}

func NewTemplateService(backend Backend, logger zerolog.Logger) *TemplateService {
	return &TemplateService{
		backend: backend,
		logger:  logger.With().Str("component", "template-resolver").Logger(),
	}
}

// FindTemplate returns the template whose tag set contains all of
// {template, workspace, segment}. Extra tags are allowed. When the
// catalog holds several matches the one with the lowest ID wins, so
// repeated resolution for a key is deterministic even in a messy
// catalog. Zero matches is ErrTemplateMissing.
func (s *TemplateService) FindTemplate(ctx context.Context, key model.TriggerKey) (*model.Workflow, error) {
	workflows, err := s.backend.ListByTags(ctx, TemplateTag)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", key, err)
	}

	var matches []model.Workflow
	for _, wf := range workflows {
		if wf.HasTags(TemplateTag, key.Workspace, key.Segment) {
			matches = append(matches, wf)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, key)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > 1 {
		s.logger.Warn().
			Str("key", key.String()).
			Int("matches", len(matches)).
			Str("selected", matches[0].ID).
			Msg("multiple templates match key, selecting lowest ID")
	}

	tpl := matches[0]
	s.logger.Info().
		Str("key", key.String()).
		Str("template_id", tpl.ID).
		Str("template_name", tpl.Name).
		Msg("resolved template")
	return &tpl, nil
}

// List returns every catalog entry tagged as a template, with workspace
// and segment derived from the remaining tags in catalog order.
func (s *TemplateService) List(ctx context.Context) ([]model.TemplateInfo, error) {
	workflows, err := s.backend.ListByTags(ctx, TemplateTag)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	infos := make([]model.TemplateInfo, 0, len(workflows))
	for _, wf := range workflows {
		if !wf.HasTags(TemplateTag) {
			continue
		}
		info := model.TemplateInfo{
			ID:   wf.ID,
			Name: wf.Name,
			Tags: wf.TagNames(),
		}
		var rest []string
		for _, name := range info.Tags {
			if name != TemplateTag {
				rest = append(rest, name)
			}
		}
		if len(rest) > 0 {
			info.Workspace = rest[0]
		}
		if len(rest) > 1 {
			info.Segment = rest[1]
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}
