package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatterhub/internal/config"
	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type folderService struct {
	base
}

// NewFolderService creates a new folder service
func NewFolderService(s *store.Store, logger *slog.Logger, opts ...Option) services.FolderService {
	return &folderService{base: newBase(s, logger, opts)}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentFolderID = normalizeRef(req.ParentFolderID)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, invalid(err)
	}

	if req.ParentFolderID != nil {
		if err := s.requireFolder(ctx, *req.ParentFolderID); err != nil {
			return nil, err
		}
	}

	now := s.timestamp()
	folder := &models.Folder{
		ID:             s.newID(),
		Name:           req.Name,
		ParentFolderID: req.ParentFolderID,
		SystemPrompt:   req.SystemPrompt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.Put(ctx, s.store, repositories.Folders, *folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_folder_id", folder.ParentFolderID,
	)
	return folder, nil
}

// GetFolder returns the folder or nil
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return store.Get[models.Folder](ctx, s.store, repositories.Folders, id)
}

// ListFolders lists every folder in creation order
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return store.All[models.Folder](ctx, s.store, repositories.Folders)
}

// UpdateFolder renames, moves or edits the prompt of a folder
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, invalid(err)
	}

	folder, err := store.Get[models.Folder](ctx, s.store, repositories.Folders, id)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		s.logger.Debug("update of missing folder ignored", "id", id)
		return nil, nil
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.SystemPrompt != nil {
		folder.SystemPrompt = *req.SystemPrompt
	}

	// Tri-state: only move when the field was present
	if req.ParentFolderID.Present {
		parentID := normalizeRef(req.ParentFolderID.Value)
		if parentID != nil {
			if err := s.requireFolder(ctx, *parentID); err != nil {
				return nil, err
			}
			if err := s.validateNoCircularReference(ctx, id, *parentID); err != nil {
				return nil, err
			}
			s.logger.Debug("moving folder to new parent", "folder_id", id, "new_parent_folder_id", *parentID)
		} else {
			s.logger.Debug("moving folder to root", "folder_id", id)
		}
		folder.ParentFolderID = parentID
	}

	folder.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.Folders, *folder); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_folder_id", folder.ParentFolderID,
	)
	return folder, nil
}

// DeleteFolder deletes the folder only. Nested folders and chat groups keep
// their reference and are treated as unfiled.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.Folders, id); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	s.logger.Info("folder deleted", "id", id)
	return nil
}

// Tree builds the sidebar tree. Folders with a dangling parent, or caught in
// a parent cycle, are shown at root level.
func (s *folderService) Tree(ctx context.Context) (*services.FolderTree, error) {
	folders, err := store.All[models.Folder](ctx, s.store, repositories.Folders)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	groups, err := store.All[models.ChatGroup](ctx, s.store, repositories.ChatGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat groups: %w", err)
	}

	byID := make(map[string]models.Folder, len(folders))
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
		nodes[f.ID] = &models.FolderTreeNode{
			ID:              f.ID,
			Name:            f.Name,
			ParentFolderID:  f.ParentFolderID,
			HasSystemPrompt: f.SystemPrompt != "",
			Folders:         []*models.FolderTreeNode{},
			ChatGroupIDs:    []string{},
		}
	}

	tree := &services.FolderTree{
		Folders:      []*models.FolderTreeNode{},
		ChatGroupIDs: []string{},
	}
	for _, f := range folders {
		node := nodes[f.ID]
		parent, ok := attachableParent(f, byID)
		if !ok {
			tree.Folders = append(tree.Folders, node)
			continue
		}
		nodes[parent].Folders = append(nodes[parent].Folders, node)
	}

	for _, g := range groups {
		if g.FolderID != nil {
			if node, ok := nodes[*g.FolderID]; ok {
				node.ChatGroupIDs = append(node.ChatGroupIDs, g.ID)
				continue
			}
		}
		tree.ChatGroupIDs = append(tree.ChatGroupIDs, g.ID)
	}

	return tree, nil
}

// attachableParent returns f's parent when the parent exists and f's chain
// reaches a root without revisiting a folder
func attachableParent(f models.Folder, byID map[string]models.Folder) (string, bool) {
	if f.ParentFolderID == nil {
		return "", false
	}
	if _, ok := byID[*f.ParentFolderID]; !ok {
		return "", false
	}

	visited := map[string]bool{f.ID: true}
	cur := *f.ParentFolderID
	for {
		if visited[cur] {
			return "", false
		}
		visited[cur] = true
		next, ok := byID[cur]
		if !ok || next.ParentFolderID == nil {
			return *f.ParentFolderID, true
		}
		cur = *next.ParentFolderID
	}
}

func (s *folderService) requireFolder(ctx context.Context, id string) error {
	parent, err := store.Get[models.Folder](ctx, s.store, repositories.Folders, id)
	if err != nil {
		return err
	}
	if parent == nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("parent folder %s not found", id)}
	}
	return nil
}

// validateNoCircularReference ensures moving a folder won't create circular references
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID string) error {
	// Can't move folder to be its own parent
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move folder to be its own parent", domain.ErrValidation)
	}

	// Walk up from the new parent; an existing cycle above it ends the walk
	visited := map[string]bool{}
	currentID := newParentID
	for !visited[currentID] {
		visited[currentID] = true

		parent, err := store.Get[models.Folder](ctx, s.store, repositories.Folders, currentID)
		if err != nil {
			return err
		}
		if parent == nil || parent.ParentFolderID == nil {
			return nil
		}
		if *parent.ParentFolderID == folderID {
			return fmt.Errorf("%w: cannot move folder to be a child of its own descendant", domain.ErrValidation)
		}
		currentID = *parent.ParentFolderID
	}

	s.logger.Warn("existing folder cycle above move target",
		"folder_id", folderID,
		"new_parent_folder_id", newParentID,
		"error", domain.ErrCycleDetected,
	)
	return nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.SystemPrompt, validation.Length(0, config.MaxSystemPromptLength)),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *services.UpdateFolderRequest) error {
	if req.Name == nil && req.SystemPrompt == nil && !req.ParentFolderID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxFolderNameLength),
			),
		)
	}
	if req.SystemPrompt != nil {
		rules = append(rules, validation.Field(&req.SystemPrompt, validation.Length(0, config.MaxSystemPromptLength)))
	}

	return validation.ValidateStruct(req, rules...)
}
