package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/senderfilter"
)

// RulesFactory creates the rule-based pieces of the extraction pipeline
type RulesFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRulesFactory creates a new rules factory
func NewRulesFactory(cfg *config.Config, logger *zap.Logger) *RulesFactory {
	return &RulesFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePatternRuler creates the domain pattern layer
func (f *RulesFactory) CreatePatternRuler() *core.PatternRuler {
	return core.NewPatternRuler(f.cfg.GetPatterns())
}

// CreateExtractor creates the requirement extractor
func (f *RulesFactory) CreateExtractor() *core.RequirementExtractor {
	extraction := f.cfg.GetExtraction()
	dates := core.NewDateNormalizer(extraction.MinYear, extraction.MaxYear)
	return core.NewRequirementExtractor(extraction, dates, f.logger.Named("extractor"))
}

// CreateSenderFilter creates the filter of ignored sender domains
func (f *RulesFactory) CreateSenderFilter() core.SenderFilter {
	domains := f.cfg.GetStringSlice("senders.ignored_domains")
	if len(domains) > 0 {
		f.logger.Info("Loaded ignored sender domains", zap.Strings("domains", domains))
	}
	return senderfilter.NewChecker(domains, f.logger)
}
