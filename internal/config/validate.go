package config

import (
	"fmt"
	"strings"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	var errs []domain.FieldError

	if _, err := domain.ParseSensePolicy(c.Extract.SensePolicy); err != nil {
		errs = append(errs, domain.FieldError{Field: "extract.sense_policy", Message: fmt.Sprintf("unknown policy %q", c.Extract.SensePolicy)})
	}
	if c.Extract.MaxLineSize < 4096 {
		errs = append(errs, domain.FieldError{Field: "extract.max_line_size", Message: fmt.Sprintf("must be >= 4096 (got %d)", c.Extract.MaxLineSize)})
	}
	if c.Extract.DedupWindow < 0 {
		errs = append(errs, domain.FieldError{Field: "extract.dedup_window", Message: fmt.Sprintf("must be >= 0 (got %d)", c.Extract.DedupWindow)})
	}
	for i, pos := range c.Extract.SkipPOS {
		c.Extract.SkipPOS[i] = strings.ToLower(strings.TrimSpace(pos))
	}

	if c.Build.SenseCutoff < 1 {
		errs = append(errs, domain.FieldError{Field: "build.sense_cutoff", Message: fmt.Sprintf("must be >= 1 (got %d)", c.Build.SenseCutoff)})
	}
	if c.Build.EdgeCutoff < 1 {
		errs = append(errs, domain.FieldError{Field: "build.edge_cutoff", Message: fmt.Sprintf("must be >= 1 (got %d)", c.Build.EdgeCutoff)})
	}
	if c.Build.Workers < 0 {
		errs = append(errs, domain.FieldError{Field: "build.workers", Message: fmt.Sprintf("must be >= 0 (got %d)", c.Build.Workers)})
	}

	switch c.Format.NodeIDs {
	case NodeIDsConcept, NodeIDsSequential:
	default:
		errs = append(errs, domain.FieldError{Field: "format.node_ids", Message: fmt.Sprintf("must be %q or %q (got %q)", NodeIDsConcept, NodeIDsSequential, c.Format.NodeIDs)})
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, domain.FieldError{Field: "store.driver", Message: fmt.Sprintf("must be %q or %q (got %q)", DriverSQLite, DriverPostgres, c.Store.Driver)})
	}
	if c.Store.BatchSize <= 0 {
		errs = append(errs, domain.FieldError{Field: "store.batch_size", Message: fmt.Sprintf("must be > 0 (got %d)", c.Store.BatchSize)})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
