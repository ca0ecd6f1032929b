package catalogsync

import (
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/fuzzy"
)

type ProvisioningPolicy string

const (
	// ProvisioningLenient sends products with unresolvable codes to the
	// "None" category and profile.
	ProvisioningLenient ProvisioningPolicy = "lenient"
	// ProvisioningStrict fails the run with a ProvisioningError instead.
	ProvisioningStrict ProvisioningPolicy = "strict"
)

type ArchiveMode string

const (
	// ArchiveEager archives the previous snapshot before inserting the new
	// one. A failed insert leaves the store with no current inventory.
	ArchiveEager ArchiveMode = "eager"
	// ArchiveAtomic archives and inserts in one transaction. A failed insert
	// leaves the previous snapshot current.
	ArchiveAtomic ArchiveMode = "atomic"
)

type HoursPolicy string

const (
	HoursSkipStore HoursPolicy = "skip"
	HoursAbort     HoursPolicy = "abort"
)

type Options struct {
	Provisioning   ProvisioningPolicy
	Archive        ArchiveMode
	Hours          HoursPolicy
	FuzzyThreshold float64
	Fanout         int
	ImageBaseURL   string // Upstream image directory
}

func DefaultOptions() Options {
	return Options{
		Provisioning:   ProvisioningLenient,
		Archive:        ArchiveEager,
		Hours:          HoursSkipStore,
		FuzzyThreshold: fuzzy.DefaultThreshold,
		Fanout:         16,
	}
}

// Validate rejects unknown policy names and fills zero values with defaults.
func (o *Options) Validate() error {
	d := DefaultOptions()
	if o.Provisioning == "" {
		o.Provisioning = d.Provisioning
	}
	if o.Archive == "" {
		o.Archive = d.Archive
	}
	if o.Hours == "" {
		o.Hours = d.Hours
	}
	if o.FuzzyThreshold == 0 {
		o.FuzzyThreshold = d.FuzzyThreshold
	}
	if o.Fanout <= 0 {
		o.Fanout = d.Fanout
	}

	switch o.Provisioning {
	case ProvisioningLenient, ProvisioningStrict:
	default:
		return fmt.Errorf("unknown provisioning policy %q", o.Provisioning)
	}
	switch o.Archive {
	case ArchiveEager, ArchiveAtomic:
	default:
		return fmt.Errorf("unknown archive mode %q", o.Archive)
	}
	switch o.Hours {
	case HoursSkipStore, HoursAbort:
	default:
		return fmt.Errorf("unknown hours policy %q", o.Hours)
	}
	if o.FuzzyThreshold < 0 || o.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold %v outside [0, 1]", o.FuzzyThreshold)
	}
	return nil
}
