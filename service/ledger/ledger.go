package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wms.GO/core/errs"
	inventoryEntity "wms.GO/model/entity/inventory"
	inventoryRepo "wms.GO/model/repository/inventory"
	"wms.GO/service/harmonize"
)

// Key aliases the repository's stock bucket key.
type Key = inventoryRepo.Key

// Options tune Ledger behavior.
type Options struct {
	// AllowNegative permits negative cached quantities (backorders). When
	// false the cache is clamped at zero and the row flagged; the log keeps
	// the exact deltas either way.
	AllowNegative bool
	// MaxRetries bounds commit retries on BackendUnavailableError.
	MaxRetries int
	// Backoff is the base delay between retries (doubling each attempt).
	Backoff time.Duration
	// Invalidate, when set, is called once per touched key after a commit
	// (read-cache invalidation hook).
	Invalidate func(msku string, locationID uint)
}

// Ledger applies resolved quantity deltas to stock under an append-only
// transaction log. The log is the source of truth; the inventory table is a
// derived cache kept in sync within the same storage transaction.
type Ledger struct {
	db   *gorm.DB
	repo *inventoryRepo.InventoryRepository
	opts Options
	log  zerolog.Logger

	// Advisory write lock: one batch apply at a time per process. Reads
	// (CurrentQuantity, Replay) never take it.
	mu sync.Mutex
}

func NewLedger(db *gorm.DB, repo *inventoryRepo.InventoryRepository, opts Options, log zerolog.Logger) *Ledger {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &Ledger{db: db, repo: repo, opts: opts, log: log}
}

// ApplyResult reports one committed batch.
type ApplyResult struct {
	BatchID      string                        `json:"batch_id"`
	Transactions []inventoryEntity.Transaction `json:"transactions"`
}

// Apply posts one transaction row per resolved line and moves the cached
// quantities by the same deltas, all inside a single storage transaction:
// readers observe either the pre-batch or the fully-post-batch state, never
// an interleaving, and cancellation leaves no rows behind. Sign convention:
// order negates the line quantity, return keeps it positive, adjustment and
// transfer take the caller's sign as-is.
//
// A reference (reference_id, transaction_type) already present in the log
// rejects the whole batch with DuplicateReferenceError and zero state
// change, which makes re-uploading the same sales file safe.
func (l *Ledger) Apply(ctx context.Context, lines []harmonize.ResolvedLine, transactionType string, locationID uint) (*ApplyResult, error) {
	if err := validate(lines, transactionType, locationID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return &ApplyResult{BatchID: uuid.NewString()}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	batchID := uuid.NewString()
	rows := buildRows(lines, transactionType, locationID, batchID)

	var commitErr error
	backoff := l.opts.Backoff
	for attempt := 0; attempt < l.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			l.log.Warn().Err(commitErr).Int("attempt", attempt).Msg("ledger commit retry")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		commitErr = l.commit(ctx, rows)
		if commitErr == nil {
			break
		}
		var backend *errs.BackendUnavailableError
		if !errors.As(commitErr, &backend) {
			// Domain failure (duplicate, validation): not retryable.
			return nil, commitErr
		}
	}
	if commitErr != nil {
		return nil, commitErr
	}

	if l.opts.Invalidate != nil {
		touched := make(map[Key]bool)
		for _, row := range rows {
			k := Key{MSKU: row.MSKU, LocationID: row.LocationID}
			if !touched[k] {
				touched[k] = true
				l.opts.Invalidate(row.MSKU, row.LocationID)
			}
		}
	}

	l.log.Info().Str("batch", batchID).Int("rows", len(rows)).Str("type", transactionType).Msg("ledger batch committed")
	return &ApplyResult{BatchID: batchID, Transactions: rows}, nil
}

func validate(lines []harmonize.ResolvedLine, transactionType string, locationID uint) error {
	switch transactionType {
	case inventoryEntity.TxnOrder, inventoryEntity.TxnReturn, inventoryEntity.TxnAdjustment, inventoryEntity.TxnTransfer:
	default:
		return &errs.ValidationError{Field: "transaction_type", Reason: fmt.Sprintf("unknown type %q", transactionType)}
	}
	if locationID == 0 {
		return &errs.ValidationError{Field: "location_id", Reason: "must be set"}
	}
	for _, line := range lines {
		if line.MSKU == "" {
			return &errs.ValidationError{Field: "msku", Reason: "must not be empty"}
		}
		if line.SourceOrderID == "" {
			return &errs.ValidationError{Field: "reference_id", Reason: "must not be empty"}
		}
		switch transactionType {
		case inventoryEntity.TxnOrder, inventoryEntity.TxnReturn:
			if line.QuantityDelta <= 0 {
				return &errs.ValidationError{Field: "quantity_delta", Reason: fmt.Sprintf("must be positive for %s, got %d", transactionType, line.QuantityDelta)}
			}
		default:
			if line.QuantityDelta == 0 {
				return &errs.ValidationError{Field: "quantity_delta", Reason: "must be non-zero"}
			}
		}
	}
	return nil
}

func buildRows(lines []harmonize.ResolvedLine, transactionType string, locationID uint, batchID string) []inventoryEntity.Transaction {
	rows := make([]inventoryEntity.Transaction, 0, len(lines))
	for _, line := range lines {
		change := line.QuantityDelta
		if transactionType == inventoryEntity.TxnOrder {
			change = -change
		}
		rows = append(rows, inventoryEntity.Transaction{
			MSKU:            line.MSKU,
			LocationID:      locationID,
			QuantityChange:  change,
			TransactionType: transactionType,
			ReferenceID:     line.SourceOrderID,
			BatchID:         batchID,
			SourceSKU:       line.SourceSKU,
		})
	}
	return rows
}

// commit writes the buffered rows and moves the cache in one storage
// transaction. No durable intermediate state: either every row and every
// cache delta lands, or nothing does.
func (l *Ledger) commit(ctx context.Context, rows []inventoryEntity.Transaction) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Duplicate guard inside the transaction, against committed state.
		seen := make(map[string]bool)
		for _, row := range rows {
			refKey := row.ReferenceID + "|" + row.TransactionType
			if seen[refKey] {
				continue
			}
			seen[refKey] = true
			var count int64
			if err := tx.Model(&inventoryEntity.Transaction{}).
				Where("reference_id = ? AND transaction_type = ?", row.ReferenceID, row.TransactionType).
				Count(&count).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "duplicate check", Err: err}
			}
			if count > 0 {
				return &errs.DuplicateReferenceError{ReferenceID: row.ReferenceID, TransactionType: row.TransactionType}
			}
		}

		if err := tx.Create(&rows).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "transaction insert", Err: err}
		}

		// Accumulate per-key deltas, then move each cached record once.
		deltas := make(map[Key]int)
		order := make([]Key, 0)
		for _, row := range rows {
			k := Key{MSKU: row.MSKU, LocationID: row.LocationID}
			if _, ok := deltas[k]; !ok {
				order = append(order, k)
			}
			deltas[k] += row.QuantityChange
		}

		for _, k := range order {
			if err := l.moveRecord(tx, k, deltas[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *Ledger) moveRecord(tx *gorm.DB, k Key, delta int) error {
	var rec inventoryEntity.Record
	err := tx.Where("msku = ? AND location_id = ?", k.MSKU, k.LocationID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = inventoryEntity.Record{MSKU: k.MSKU, LocationID: k.LocationID}
	case err != nil:
		return &errs.BackendUnavailableError{Op: "record lookup", Err: err}
	}

	rec.Quantity += delta
	if rec.Quantity < 0 && !l.opts.AllowNegative {
		l.log.Warn().Str("msku", k.MSKU).Uint("location", k.LocationID).Int("quantity", rec.Quantity).
			Msg("stock clamped at zero")
		rec.Quantity = 0
		rec.Clamped = true
	}

	if err := tx.Save(&rec).Error; err != nil {
		return &errs.BackendUnavailableError{Op: "record update", Err: err}
	}
	return nil
}

// CurrentQuantity returns the cached stock level (0 when the key has never
// been touched). Audit checks the standing invariant that this equals the
// sum of matching transaction rows.
func (l *Ledger) CurrentQuantity(msku string, locationID uint) int {
	qty, _ := l.repo.CurrentQuantity(msku, locationID)
	return qty
}

// Replay recomputes all quantities strictly from the transaction log,
// ignoring the cache. A zero from-time replays the full log; a later
// from-time returns deltas since that instant.
func (l *Ledger) Replay(from time.Time) (map[Key]int, error) {
	out, err := l.repo.SumAllFromLog(from)
	if err != nil {
		return nil, &errs.BackendUnavailableError{Op: "replay", Err: err}
	}
	return out, nil
}

// Divergence is one (msku, location) where cache and log disagree.
type Divergence struct {
	MSKU       string `json:"msku"`
	LocationID uint   `json:"location_id"`
	Cached     int    `json:"cached"`
	Replayed   int    `json:"replayed"`
	Clamped    bool   `json:"clamped"`
}

// Audit compares a full replay against the cache and returns every
// divergent key. Clamped rows always diverge (the log keeps exact
// deltas) and are reported with the flag set so the caller can separate
// them from genuine corruption.
func (l *Ledger) Audit() ([]Divergence, error) {
	replayed, err := l.Replay(time.Time{})
	if err != nil {
		return nil, err
	}
	records, err := l.repo.AllRecords()
	if err != nil {
		return nil, &errs.BackendUnavailableError{Op: "audit", Err: err}
	}

	cached := make(map[Key]inventoryEntity.Record, len(records))
	for _, rec := range records {
		cached[Key{MSKU: rec.MSKU, LocationID: rec.LocationID}] = rec
	}

	var out []Divergence
	for k, want := range replayed {
		rec, ok := cached[k]
		if !ok {
			if want != 0 {
				out = append(out, Divergence{MSKU: k.MSKU, LocationID: k.LocationID, Cached: 0, Replayed: want})
			}
			continue
		}
		if rec.Quantity != want {
			out = append(out, Divergence{MSKU: k.MSKU, LocationID: k.LocationID, Cached: rec.Quantity, Replayed: want, Clamped: rec.Clamped})
		}
	}
	for k, rec := range cached {
		if _, ok := replayed[k]; !ok && rec.Quantity != 0 {
			out = append(out, Divergence{MSKU: k.MSKU, LocationID: k.LocationID, Cached: rec.Quantity, Replayed: 0, Clamped: rec.Clamped})
		}
	}
	return out, nil
}

// Repair rewrites the cache from a full replay. Used when Audit reports
// divergence the operator attributes to cache corruption. Takes the write
// lock: repairs don't race batch applies.
func (l *Ledger) Repair(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	replayed, err := l.Replay(time.Time{})
	if err != nil {
		return 0, err
	}

	fixed := 0
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, want := range replayed {
			var rec inventoryEntity.Record
			ferr := tx.Where("msku = ? AND location_id = ?", k.MSKU, k.LocationID).First(&rec).Error
			switch {
			case errors.Is(ferr, gorm.ErrRecordNotFound):
				rec = inventoryEntity.Record{MSKU: k.MSKU, LocationID: k.LocationID}
			case ferr != nil:
				return &errs.BackendUnavailableError{Op: "repair lookup", Err: ferr}
			}
			clamped := false
			if want < 0 && !l.opts.AllowNegative {
				want = 0
				clamped = true
			}
			if rec.ID != 0 && rec.Quantity == want && rec.Clamped == clamped {
				continue
			}
			rec.Quantity = want
			rec.Clamped = clamped
			if err := tx.Save(&rec).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "repair update", Err: err}
			}
			fixed++
		}
		// Cached rows with no transactions at all never show up in the
		// replay; zero them so the cache converges to the log.
		var cachedRows []inventoryEntity.Record
		if err := tx.Find(&cachedRows).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "repair scan", Err: err}
		}
		for i := range cachedRows {
			rec := &cachedRows[i]
			if _, ok := replayed[Key{MSKU: rec.MSKU, LocationID: rec.LocationID}]; ok {
				continue
			}
			if rec.Quantity == 0 && !rec.Clamped {
				continue
			}
			rec.Quantity = 0
			rec.Clamped = false
			if err := tx.Save(rec).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "repair update", Err: err}
			}
			fixed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.log.Info().Int("fixed", fixed).Msg("ledger cache repaired from log")
	return fixed, nil
}
