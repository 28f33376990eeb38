package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/weiawesome/wes-io-blog/internal/audit"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

const maxGroupTitleLength = 200

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,200}$`)

// groupService implements GroupService.
type groupService struct {
	groups repository.GroupRepository
}

// NewGroupService creates a new GroupService instance.
func NewGroupService(groups repository.GroupRepository) GroupService {
	return &groupService{groups: groups}
}

func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

func (s *groupService) CreateGroup(ctx context.Context, actorID string, req *domain.CreateGroupRequest) (*domain.Group, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > maxGroupTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxGroupTitleLength)
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, fmt.Errorf("%w: slug may contain only letters, digits, '-' and '_'", ErrValidation)
	}

	group := &domain.Group{
		Title:       title,
		Slug:        req.Slug,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, req.Slug).Msg("failed to create group")
		return nil, err
	}

	audit.Log(ctx, audit.ActionGroupCreate, actorID, group.Slug, "group created")
	return group, nil
}

// DeleteGroup removes a group that no post references.
func (s *groupService) DeleteGroup(ctx context.Context, actorID, slug string) error {
	l := pkglog.Ctx(ctx)

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to get group")
		return err
	}

	if err := s.groups.Delete(ctx, group.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrGroupHasPosts):
			return ErrGroupHasPosts
		case errors.Is(err, repository.ErrGroupNotFound):
			return ErrGroupNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to delete group")
		return err
	}

	audit.Log(ctx, audit.ActionGroupDelete, actorID, slug, "group deleted")
	return nil
}

var _ GroupService = (*groupService)(nil)
