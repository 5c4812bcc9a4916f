package rewrite

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Operation records one file's pending rewrite within a Transaction: the
// original bytes (kept only in memory, for Rollback) and the rewritten
// bytes waiting to be committed to disk.
type Operation struct {
	Path      string
	Original  string
	Rewritten string
	applied   bool
}

// Transaction batches the rewrites produced by one CLI invocation across
// however many files it touched. Nothing here is persisted: no backup file,
// no on-disk log, no state surviving the process exit — "Rewrites mutate
// input files in place … no backup is written" rules out carrying a
// recovery log the way the teacher's TransactionManager does.
//
// A run ID still identifies the batch in Commit and Rollback error
// messages; it is not printed in --detail output and never gets written
// anywhere.
type Transaction struct {
	ID         uuid.UUID
	mu         sync.Mutex
	operations []*Operation
	byPath     map[string]*Operation
}

// Begin starts a new in-memory transaction.
func Begin() *Transaction {
	return &Transaction{
		ID:     uuid.New(),
		byPath: make(map[string]*Operation),
	}
}

// Stage records that path's content should become rewritten, remembering
// original so Rollback can restore it. Staging the same path twice replaces
// the prior staged content but keeps the first-seen original.
func (tx *Transaction) Stage(path, original, rewritten string) *Operation {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if op, ok := tx.byPath[path]; ok {
		op.Rewritten = rewritten
		return op
	}
	op := &Operation{Path: path, Original: original, Rewritten: rewritten}
	tx.operations = append(tx.operations, op)
	tx.byPath[path] = op
	return op
}

// Operations returns every staged operation, in staging order.
func (tx *Transaction) Operations() []*Operation {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	out := make([]*Operation, len(tx.operations))
	copy(out, tx.operations)
	return out
}

// Commit writes every staged operation's rewritten content to disk via
// writeFile (normally AtomicWrite). It stops at the first failure and
// returns it, leaving earlier writes in place — there is no on-disk log to
// roll them back from, so a partially-applied Commit is reported, not
// silently undone.
func (tx *Transaction) Commit(writeFile func(path, content string) error) error {
	tx.mu.Lock()
	ops := make([]*Operation, len(tx.operations))
	copy(ops, tx.operations)
	tx.mu.Unlock()

	for _, op := range ops {
		if err := writeFile(op.Path, op.Rewritten); err != nil {
			return fmt.Errorf("transaction %s: writing %s: %w", tx.ID, op.Path, err)
		}
		tx.mu.Lock()
		op.applied = true
		tx.mu.Unlock()
	}
	return nil
}

// Rollback writes every operation that Commit applied back to its Original
// content via writeFile, newest first. Operations Commit never applied are
// skipped without touching disk. Staged operations stay in the transaction.
func (tx *Transaction) Rollback(writeFile func(path, content string) error) error {
	tx.mu.Lock()
	ops := make([]*Operation, len(tx.operations))
	copy(ops, tx.operations)
	tx.mu.Unlock()

	var firstErr error
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if !op.applied {
			continue
		}
		if err := writeFile(op.Path, op.Original); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("transaction %s: restoring %s: %w", tx.ID, op.Path, err)
		}
	}
	return firstErr
}
