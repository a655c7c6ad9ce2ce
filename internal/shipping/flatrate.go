package shipping

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dukerupert/adorn/internal/domain"
)

// DefaultFees is the delivery fee table for Nigerian states, in kobo.
var DefaultFees = []Region{
	{Name: "Lagos", FeeMinor: 150000},
	{Name: "Abuja", FeeMinor: 200000},
	{Name: "Kano", FeeMinor: 250000},
	{Name: "Rivers", FeeMinor: 250000},
	{Name: "Oyo", FeeMinor: 250000},
	{Name: "Delta", FeeMinor: 250000},
	{Name: "Imo", FeeMinor: 250000},
	{Name: "Anambra", FeeMinor: 250000},
	{Name: "Edo", FeeMinor: 250000},
	{Name: "Cross River", FeeMinor: 250000},
	{Name: OthersRegion, FeeMinor: 250000},
}

// FeeTable is a flat-rate Provider keyed by region name. Lookups ignore case
// and surrounding space; unknown regions pay the Others fee.
type FeeTable struct {
	regions  []Region
	byName   map[string]int64
	fallback int64
}

// NewFeeTable builds a table from rows. An Others row is required.
func NewFeeTable(rows []Region) (*FeeTable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFeeTable
	}

	t := &FeeTable{byName: make(map[string]int64, len(rows))}
	var others *Region
	for _, r := range rows {
		key := normalize(r.Name)
		if key == "" {
			return nil, ErrInvalidFeeEntry(r.Name, errors.New("empty region"))
		}
		if r.FeeMinor < 0 {
			return nil, ErrInvalidFeeEntry(r.Name, errors.New("negative fee"))
		}
		if key == normalize(OthersRegion) {
			r := r
			others = &r
			continue
		}
		if _, dup := t.byName[key]; !dup {
			t.regions = append(t.regions, r)
		}
		t.byName[key] = r.FeeMinor
	}
	if others == nil {
		return nil, ErrNoFallback
	}
	t.fallback = others.FeeMinor
	t.regions = append(t.regions, Region{Name: OthersRegion, FeeMinor: others.FeeMinor})
	return t, nil
}

// NewDefaultFeeTable returns the built-in Nigerian state table.
func NewDefaultFeeTable() *FeeTable {
	t, err := NewFeeTable(DefaultFees)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseFees reads a "Region:fee,Region:fee" list with fees in minor units.
// Listed regions override the defaults; everything else keeps its default fee.
// An empty list yields the default table.
func ParseFees(fees string) (*FeeTable, error) {
	fees = strings.TrimSpace(fees)
	if fees == "" {
		return NewDefaultFeeTable(), nil
	}

	rows := append([]Region(nil), DefaultFees...)
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[normalize(r.Name)] = i
	}

	for _, entry := range strings.Split(fees, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, fee, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, ErrInvalidFeeEntry(entry, errors.New("want Region:fee"))
		}
		minor, err := strconv.ParseInt(strings.TrimSpace(fee), 10, 64)
		if err != nil {
			return nil, ErrInvalidFeeEntry(entry, err)
		}
		r := Region{Name: strings.TrimSpace(name), FeeMinor: minor}
		if i, ok := index[normalize(r.Name)]; ok {
			rows[i].FeeMinor = minor
			continue
		}
		// Keep Others last.
		rows = append(rows[:len(rows)-1], r, rows[len(rows)-1])
		index[normalize(r.Name)] = len(rows) - 2
		index[normalize(OthersRegion)] = len(rows) - 1
	}
	return NewFeeTable(rows)
}

// Fee returns the fee for region. An empty region is a validation error.
func (t *FeeTable) Fee(_ context.Context, region string) (int64, error) {
	key := normalize(region)
	if key == "" {
		return 0, domain.NewValidationError("shipping.fee", "state", "Select a delivery state")
	}
	if fee, ok := t.byName[key]; ok {
		return fee, nil
	}
	return t.fallback, nil
}

func (t *FeeTable) Regions() []Region {
	return append([]Region(nil), t.regions...)
}

func normalize(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}
