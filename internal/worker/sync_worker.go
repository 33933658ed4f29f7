package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"financeiro/internal/amqp"
	"financeiro/internal/log"
	"financeiro/internal/metrics"
	"financeiro/internal/sheets"
	"financeiro/internal/storage"
)

// startupConcurrency bounds the ledgers mirrored at once on startup.
const startupConcurrency = 4

// ErrEmptyKey is returned for ledger-saved messages without a user key.
var ErrEmptyKey = errors.New("message has no user key")

// SyncWorker copies saved ledgers from the store to the spreadsheet mirror.
// Every message triggers a full copy, so redelivered or out-of-order
// messages converge on the latest stored ledger.
type SyncWorker struct {
	store   storage.Store
	mirror  sheets.LedgerMirror
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewSyncWorker(store storage.Store, mirror sheets.LedgerMirror, m *metrics.Metrics, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		store:   store,
		mirror:  mirror,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerSaved processes a single ledger-saved message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *SyncWorker) HandleLedgerSaved(ctx context.Context, msg *amqp.LedgerSavedMessage) error {
	if msg == nil || msg.UserKey == "" {
		w.metrics.Mirror(metrics.ResultInvalid)
		return ErrEmptyKey
	}

	w.logger.InfoContext(ctx, "Processing ledger saved message",
		log.FieldUserKey, msg.UserKey,
		log.FieldCount, msg.Count,
		"reason", msg.Reason,
		"timestamp", msg.Timestamp)

	return w.SyncLedger(ctx, msg.UserKey)
}

// SyncLedger mirrors the stored ledger of key.
func (w *SyncWorker) SyncLedger(ctx context.Context, key string) error {
	txs, err := w.store.Load(ctx, key)
	if err != nil {
		w.metrics.Mirror(metrics.ResultSaveFailed)
		return fmt.Errorf("load ledger %s: %w", key, err)
	}

	if err := w.mirror.MirrorLedger(ctx, key, txs); err != nil {
		w.metrics.Mirror(metrics.ResultSaveFailed)
		w.logger.ErrorContext(ctx, "Failed to mirror ledger",
			log.FieldUserKey, key,
			log.FieldOperation, log.OpMirror,
			log.FieldError, err)
		return fmt.Errorf("mirror ledger %s: %w", key, err)
	}

	w.metrics.Mirror(metrics.ResultOK)
	w.logger.InfoContext(ctx, "Successfully mirrored ledger",
		log.FieldUserKey, key,
		log.FieldCount, len(txs))
	return nil
}

// StartupSyncCheck mirrors every stored ledger. It recovers from messages
// lost while the worker was down. Stores that cannot list their ledgers are
// skipped.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	lister, ok := w.store.(storage.Lister)
	if !ok {
		w.logger.InfoContext(ctx, "Store cannot list ledgers, skipping startup sync")
		return nil
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list ledgers for startup check: %w", err)
	}
	if len(keys) == 0 {
		w.logger.InfoContext(ctx, "No ledgers found on startup")
		return nil
	}

	var synced, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(startupConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := w.SyncLedger(gctx, key); err != nil {
				failed.Add(1)
				return nil
			}
			synced.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(keys),
		"synced", synced.Load(),
		"errors", failed.Load())
	return nil
}
