package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/common"
)

// Prompt names a destructive choice Delete needs the user to make.
type Prompt string

const (
	// PromptDeleteSeriesForward: yes deletes this occurrence and every later
	// one, no deletes this occurrence only.
	PromptDeleteSeriesForward Prompt = "delete-series-forward"
	// PromptDeleteLinkedGroup: yes deletes the copies in every department,
	// no deletes the current department's copy only.
	PromptDeleteLinkedGroup Prompt = "delete-linked-group"
)

// Confirmer answers prompts synchronously. An error aborts the delete
// before anything is written.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Answers is a Confirmer with fixed answers. Prompts without an answer
// fail with common.ErrConfirmationRequired.
type Answers map[Prompt]bool

func (a Answers) Confirm(_ context.Context, p Prompt) (bool, error) {
	yes, ok := a[p]
	if !ok {
		return false, fmt.Errorf("%w: %s", common.ErrConfirmationRequired, p)
	}
	return yes, nil
}
