// Package batch commits lists of event writes as size-bounded transactions.
//
// Each chunk of at most Limit operations is applied in its own transaction.
// Chunks run in order and are not atomic as a whole: when a later chunk
// fails the earlier ones stay committed and the returned count says how many
// operations made it.
package batch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
)

// DefaultLimit mirrors the per-commit ceiling of the store the data was
// migrated from.
const DefaultLimit = 499

type Kind int

const (
	OpUpsert Kind = iota + 1
	OpDelete
	OpMergeAttendance
)

func (k Kind) String() string {
	switch k {
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	case OpMergeAttendance:
		return "merge-attendance"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Op is one write. Upserts carry Event; deletes and attendance merges
// address the document by ID.
type Op struct {
	Kind          Kind
	Event         *models.Event
	ID            string
	ParticipantID string
	Status        models.AttendanceStatus
}

func Upsert(e *models.Event) Op {
	return Op{Kind: OpUpsert, Event: e, ID: e.ID}
}

func Delete(id string) Op {
	return Op{Kind: OpDelete, ID: id}
}

func MergeAttendance(id, participantID string, status models.AttendanceStatus) Op {
	return Op{Kind: OpMergeAttendance, ID: id, ParticipantID: participantID, Status: status}
}

type Writer struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	limit  int
	logger logging.Logger
}

// NewWriter returns a Writer. limit <= 0 commits every call in one
// transaction.
func NewWriter(db *sql.DB, repos repomanager.RepositoryManager, limit int, logger logging.Logger) *Writer {
	return &Writer{
		db:     db,
		repos:  repos,
		limit:  limit,
		logger: logger.With("module", "batch"),
	}
}

// Commit applies ops chunk by chunk and returns how many operations belong
// to committed chunks. A cancelled context stops before the next chunk
// starts; a running chunk is never interrupted by the writer itself.
func (w *Writer) Commit(ctx context.Context, ops []Op) (int, error) {
	if len(ops) == 0 {
		return 0, nil
	}

	chunks := split(ops, w.limit)
	committed := 0

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return committed, err
		}

		err := dbx.WithTxRetry(ctx, w.db, nil, w.repos.RetryPolicy(), func(ctx context.Context, tx dbx.DBTX) error {
			repo := w.repos.Events(tx)
			for _, op := range chunk {
				if err := apply(ctx, repo, op); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			w.logger.Error(ctx, "batch chunk failed",
				"chunk", i+1, "chunks", len(chunks), "committed", committed, "error", err)
			return committed, fmt.Errorf("commit chunk %d/%d: %w", i+1, len(chunks), err)
		}

		committed += len(chunk)
		w.logger.Debug(ctx, "batch chunk committed", "chunk", i+1, "chunks", len(chunks), "ops", len(chunk))
	}

	return committed, nil
}

func apply(ctx context.Context, repo events.Repository, op Op) error {
	switch op.Kind {
	case OpUpsert:
		return repo.Upsert(ctx, op.Event)
	case OpDelete:
		return repo.Delete(ctx, op.ID)
	case OpMergeAttendance:
		e, err := repo.GetByID(ctx, op.ID)
		if err != nil {
			return fmt.Errorf("merge attendance into %s: %w", op.ID, err)
		}
		if e.Attendance == nil {
			e.Attendance = make(map[string]models.AttendanceStatus, 1)
		}
		e.Attendance[op.ParticipantID] = op.Status
		return repo.Upsert(ctx, e)
	}
	return fmt.Errorf("unknown batch op %s", op.Kind)
}

func split(ops []Op, limit int) [][]Op {
	if limit <= 0 || len(ops) <= limit {
		return [][]Op{ops}
	}
	chunks := make([][]Op, 0, (len(ops)+limit-1)/limit)
	for start := 0; start < len(ops); start += limit {
		end := min(start+limit, len(ops))
		chunks = append(chunks, ops[start:end])
	}
	return chunks
}
