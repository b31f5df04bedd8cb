// Package mcp provides an MCP (Model Context Protocol) server adapter for docrag.
// It lets AI assistants search indexed documents and ask questions about them.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingOwner is returned when document or chat ports are set without an owner.
var ErrMissingOwner = errors.New("mcp: owner id is required")

// toolError keeps the domain sentinel in the chain and prefixes a short
// hint the assistant can act on.
func toolError(op string, err error) error {
	var stepErr *domain.StepError
	switch {
	case errors.As(err, &stepErr):
		return fmt.Errorf("%s: %s step failed: %w", op, stepErr.Step, err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: not found: %w", op, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("%s: check the arguments: %w", op, err)
	case errors.Is(err, domain.ErrIngestionInProgress):
		return fmt.Errorf("%s: try again later: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
