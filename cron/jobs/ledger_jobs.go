package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wms.GO/config"
	"wms.GO/cron"
	"wms.GO/model/repository/inventory"
	"wms.GO/service/ledger"
)

func init() {
	cron.Register("ledgeraudit", "0 * * * *", LedgerAuditJob)
	cron.Register("ledgerrepair", "30 3 * * *", LedgerRepairJob)
}

func newLedger() (*ledger.Ledger, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, err
	}
	repo, err := inventory.NewInventoryRepository(db)
	if err != nil {
		return nil, err
	}
	config.LoadAppConfig()
	return ledger.NewLedger(db, repo, ledger.Options{
		AllowNegative: config.AppConfig.AllowNegativeStock,
	}, log.Logger), nil
}

// LedgerAuditJob replays the transaction log and logs any divergence
// between it and the cached inventory table.
func LedgerAuditJob(args ...string) {
	l, err := newLedger()
	if err != nil {
		log.Error().Err(err).Msg("ledger audit: connect")
		return
	}
	divergences, err := l.Audit()
	if err != nil {
		log.Error().Err(err).Msg("ledger audit failed")
		return
	}
	if len(divergences) == 0 {
		log.Info().Msg("ledger audit: cache matches log")
		return
	}
	for _, d := range divergences {
		log.Warn().
			Str("msku", d.MSKU).
			Uint("location_id", d.LocationID).
			Int("cached", d.Cached).
			Int("replayed", d.Replayed).
			Bool("clamped", d.Clamped).
			Msg("ledger audit: divergence")
	}
}

// LedgerRepairJob rewrites the cached inventory table from the
// transaction log.
func LedgerRepairJob(args ...string) {
	l, err := newLedger()
	if err != nil {
		log.Error().Err(err).Msg("ledger repair: connect")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	fixed, err := l.Repair(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ledger repair failed")
		return
	}
	log.Info().Int("fixed", fixed).Msg("ledger repair complete")
}
