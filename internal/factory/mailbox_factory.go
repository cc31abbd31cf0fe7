package factory

import (
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/mailbox"
	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/ports"
)

// MailboxFactory creates mailbox agents based on configuration
type MailboxFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.StaffingService
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger, service *core.StaffingService) *MailboxFactory {
	return &MailboxFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateMailboxAgent creates the agent selected by mailbox.type
func (f *MailboxFactory) CreateMailboxAgent() (ports.MailboxAgent, error) {
	mailboxType := f.cfg.GetString("mailbox.type")

	switch mailboxType {
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		if imapCfg.Server == "" {
			return nil, fmt.Errorf("imap server is required")
		}
		agentCfg, err := f.cfg.GetAgent()
		if err != nil {
			return nil, err
		}

		box := mailbox.NewIMAPMailbox(mailbox.IMAPConfig{
			Address:         imapCfg.Address(),
			Username:        imapCfg.Username,
			Password:        imapCfg.Password,
			Folder:          imapCfg.Folder,
			ProcessedFolder: imapCfg.ProcessedFolder,
			MaxBodySize:     imapCfg.MaxBodySize,
		}, mailbox.DialTLS, f.logger.Named("imap"))

		return mailbox.NewPollingAgent(
			f.service,
			box,
			box,
			agentCfg.PollInterval,
			agentCfg.RunOnce,
			f.logger,
		), nil
	case "smtp":
		smtpCfg := f.cfg.GetSMTP()
		return mailbox.NewSMTPIngress(f.service, mailbox.IngressConfig{
			ListenAddress:        smtpCfg.ListenAddress,
			ClassificationHeader: smtpCfg.ClassificationHeader,
			UrgentHeader:         smtpCfg.UrgentHeader,
			RequirementsHeader:   smtpCfg.RequirementsHeader,
			ForwardEnabled:       smtpCfg.ForwardEnabled,
			ForwardAddress:       net.JoinHostPort(smtpCfg.ForwardAddress, strconv.Itoa(smtpCfg.ForwardPort)),
		}, f.logger.Named("smtp")), nil
	default:
		return nil, fmt.Errorf("unsupported mailbox type: %s", mailboxType)
	}
}
