package harmonize

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"wms.GO/core/errs"
	mappingRepo "wms.GO/model/repository/mapping"
)

const sampleOrderIDLimit = 5

// Engine resolves a batch of raw order lines against the mapping table and
// combo resolver. Pure transform: it never mutates mapping state, and
// re-running it on the same input with unchanged mappings yields identical
// output.
type Engine struct {
	mappings *mappingRepo.MappingRepository
	resolver *ComboResolver
	log      zerolog.Logger
}

func NewEngine(mappings *mappingRepo.MappingRepository, resolver *ComboResolver, log zerolog.Logger) *Engine {
	return &Engine{mappings: mappings, resolver: resolver, log: log}
}

type lookupResult struct {
	msku  string
	units int
	ok    bool
}

// Process classifies every raw line as resolved or unmapped. Per-line
// failures (unknown sku, unresolved combo component, bad quantity) degrade
// to the unmapped list; a bad line never aborts the batch. The returned
// error is reserved for storage-level failure, where no classification is
// trustworthy.
func (e *Engine) Process(rawLines []OrderLineItem) (resolved []ResolvedLine, unmapped []UnmappedLine, err error) {
	// Memoize per batch; identical (marketplace, sku) pairs resolve once.
	lookups := make(map[string]lookupResult)
	combos := make(map[string][]Expanded)
	comboMiss := make(map[string]string)

	for _, line := range rawLines {
		if line.RawSKU == "" {
			unmapped = append(unmapped, UnmappedLine{OrderLineItem: line, Reason: "empty sku"})
			continue
		}
		if line.QuantitySold <= 0 {
			unmapped = append(unmapped, UnmappedLine{OrderLineItem: line, Reason: fmt.Sprintf("non-positive quantity %d", line.QuantitySold)})
			continue
		}

		key := fmt.Sprintf("%d|%s", line.MarketplaceID, line.RawSKU)

		lr, seen := lookups[key]
		if !seen {
			msku, units, ok, lerr := e.mappings.Lookup(line.MarketplaceID, line.RawSKU)
			if lerr != nil {
				return nil, nil, lerr
			}
			lr = lookupResult{msku: msku, units: units, ok: ok}
			lookups[key] = lr
		}

		if lr.ok {
			resolved = append(resolved, ResolvedLine{
				MSKU:          lr.msku,
				QuantityDelta: line.QuantitySold * lr.units,
				SourceOrderID: line.OrderID,
				SourceSKU:     line.RawSKU,
				Price:         line.Price,
			})
			continue
		}

		isCombo, cerr := e.resolver.IsCombo(line.MarketplaceID, line.RawSKU)
		if cerr != nil {
			return nil, nil, cerr
		}
		if !isCombo {
			unmapped = append(unmapped, UnmappedLine{OrderLineItem: line, Reason: "no mapping"})
			continue
		}

		if reason, missed := comboMiss[key]; missed {
			unmapped = append(unmapped, UnmappedLine{OrderLineItem: line, Reason: reason})
			continue
		}

		// Expand per unit once; scale by the line's quantity below. The
		// whole line defers on any unresolved component; partial
		// resolution would silently under-credit inventory.
		perUnit, seenCombo := combos[key]
		if !seenCombo {
			var xerr error
			perUnit, xerr = e.resolver.Expand(line.MarketplaceID, line.RawSKU, 1)
			if xerr != nil {
				var unresolvedErr *errs.UnresolvedComponentError
				if errors.As(xerr, &unresolvedErr) {
					reason := unresolvedErr.Error()
					comboMiss[key] = reason
					e.log.Warn().Str("sku", line.RawSKU).Uint("marketplace", line.MarketplaceID).
						Str("component", unresolvedErr.MSKU).Msg("combo deferred: unresolved component")
					unmapped = append(unmapped, UnmappedLine{OrderLineItem: line, Reason: reason})
					continue
				}
				return nil, nil, xerr
			}
			combos[key] = perUnit
		}

		for _, comp := range perUnit {
			resolved = append(resolved, ResolvedLine{
				MSKU:          comp.MSKU,
				QuantityDelta: comp.Quantity * line.QuantitySold,
				SourceOrderID: line.OrderID,
				SourceSKU:     line.RawSKU,
				Price:         line.Price,
			})
		}
	}

	e.log.Info().Int("raw", len(rawLines)).Int("resolved", len(resolved)).Int("unmapped", len(unmapped)).
		Msg("harmonization batch processed")
	return resolved, unmapped, nil
}

// Report aggregates unmapped lines per (marketplace, sku) with occurrence
// counts and a bounded sample of order IDs, for operator triage.
func Report(unmapped []UnmappedLine) []ReportEntry {
	type aggKey struct {
		marketplaceID uint
		sku           string
	}
	agg := make(map[aggKey]*ReportEntry)
	order := make([]aggKey, 0)

	for _, u := range unmapped {
		k := aggKey{marketplaceID: u.MarketplaceID, sku: u.RawSKU}
		entry, ok := agg[k]
		if !ok {
			entry = &ReportEntry{MarketplaceID: u.MarketplaceID, SKU: u.RawSKU}
			agg[k] = entry
			order = append(order, k)
		}
		entry.Occurrences++
		entry.TotalQuantity += u.QuantitySold
		if u.OrderID != "" && len(entry.SampleOrderIDs) < sampleOrderIDLimit {
			entry.SampleOrderIDs = append(entry.SampleOrderIDs, u.OrderID)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].marketplaceID != order[j].marketplaceID {
			return order[i].marketplaceID < order[j].marketplaceID
		}
		return order[i].sku < order[j].sku
	})

	out := make([]ReportEntry, 0, len(order))
	for _, k := range order {
		out = append(out, *agg[k])
	}
	return out
}
