package di

import (
	"go.uber.org/dig"

	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/factory"
	"github.com/mikey/staffing-mail-agent/internal/logging"
	"github.com/mikey/staffing-mail-agent/internal/ports"
	"github.com/mikey/staffing-mail-agent/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ResultRepository, error) {
		return f.CreateResultRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) (core.ServiceOptions, error) {
		return f.GetServiceOptions()
	}); err != nil {
		return nil, err
	}

	// Register staffing service
	if err := container.Provide(core.NewStaffingService); err != nil {
		return nil, err
	}

	// Register mailbox agent
	if err := container.Provide(factory.NewMailboxFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.MailboxFactory) (ports.MailboxAgent, error) {
		return f.CreateMailboxAgent()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers the factories and the pieces of the extraction
// pipeline shared by the daemon and the CLI
func providePipeline(container *dig.Container) error {
	constructors := []any{
		factory.NewTextProcessorFactory,
		factory.NewRecognizerFactory,
		factory.NewStoreFactory,
		factory.NewPublisherFactory,
		factory.NewRulesFactory,
		func(f *factory.TextProcessorFactory) *utils.TextProcessor {
			return f.CreateTextProcessor()
		},
		func(f *factory.RecognizerFactory) (core.EntityRecognizer, error) {
			return f.CreateRecognizer()
		},
		func(f *factory.PublisherFactory) (core.ResultPublisher, error) {
			return f.CreatePublisher()
		},
		func(f *factory.RulesFactory) *core.PatternRuler {
			return f.CreatePatternRuler()
		},
		func(f *factory.RulesFactory) *core.RequirementExtractor {
			return f.CreateExtractor()
		},
		func(f *factory.RulesFactory) core.SenderFilter {
			return f.CreateSenderFilter()
		},
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}
