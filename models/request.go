package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Label    string `json:"label" validate:"required,min=1,max=255"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

// BatchCreateRequest represents the request body for creating several nodes at once
type BatchCreateRequest struct {
	Nodes []CreateNodeRequest `json:"nodes" validate:"required,min=1,max=100,dive"`
}

// UpdateNodeRequest represents the request body for relabeling a node
type UpdateNodeRequest struct {
	Label string `json:"label" validate:"required,min=1,max=255"`
}

// MoveNodeRequest represents the request body for relocating a subtree.
// A missing or null newParentId turns the node into a root.
type MoveNodeRequest struct {
	NewParentID *int64 `json:"newParentId" validate:"omitempty,gt=0"`
}

// Validate validates the create node request
func (r *CreateNodeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the batch create request
func (r *BatchCreateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the update node request
func (r *UpdateNodeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the move node request
func (r *MoveNodeRequest) Validate() error {
	return validate.Struct(r)
}
