package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/smallbiznis/descomplaca/internal/config"
	"go.uber.org/zap"
)

const (
	selLoginUser     = `input[name*="Usuario"], input[id*="Usuario"], input[name*="Cnpj"], input[id*="Cnpj"]`
	selLoginPassword = `input[name*="Senha"], input[id*="Senha"], input[type="password"]`
	selLoginSubmit   = `button[type="submit"], input[type="submit"], .btn-primary`
	selPipelineRows  = `.table-scrollable tbody tr`
	selPaidIcon      = `.fa-check`

	selFormTaxID  = `input[name="cpf"]`
	selFormName   = `input[name="nome"]`
	selFormSubmit = `button[type="submit"], input[type="submit"]`

	selAccountName = `.nome-usuario, [data-testid="nome"], h1`

	loginPath    = "/Login"
	pipelinePath = "/PedidoAutorizacao/Index"
	detailPath   = "/PedidoAutorizacao/%s"

	loginPollInterval = 250 * time.Millisecond
)

// RodAutomator drives a single Chrome instance, launched on first use. The
// gov.br and plate portal flows keep separate tabs so their logins survive
// each other.
type RodAutomator struct {
	cfg config.AutomationConfig
	log *zap.Logger

	mu         sync.Mutex
	browser    *rod.Browser
	govPage    *rod.Page
	portalPage *rod.Page
}

func NewRodAutomator(cfg config.AutomationConfig, log *zap.Logger) *RodAutomator {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	return &RodAutomator{cfg: cfg, log: log.Named("automation.rod")}
}

func (a *RodAutomator) ensureBrowser() (*rod.Browser, error) {
	if a.browser != nil {
		if _, err := a.browser.Version(); err == nil {
			return a.browser, nil
		}
		a.log.Warn("stale browser connection, relaunching")
		_ = a.browser.Close()
		a.browser, a.govPage, a.portalPage = nil, nil, nil
	}

	controlURL, err := launcher.New().
		Headless(a.cfg.Headless).
		Set(flags.NoSandbox).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch: %v", ErrBrowserUnavailable, err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrBrowserUnavailable, err)
	}
	a.browser = browser
	a.log.Info("browser started", zap.Bool("headless", a.cfg.Headless))
	return browser, nil
}

// page returns the tab stored in slot, opening it when needed. Callers hold a.mu.
func (a *RodAutomator) page(ctx context.Context, slot **rod.Page) (*rod.Page, error) {
	browser, err := a.ensureBrowser()
	if err != nil {
		return nil, err
	}
	if *slot == nil {
		p, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, fmt.Errorf("%w: open tab: %v", ErrBrowserUnavailable, err)
		}
		*slot = p
	}
	return (*slot).Context(ctx).Timeout(a.cfg.NavigateTimeout), nil
}

func navigate(p *rod.Page, url string) error {
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	return nil
}

func currentURL(p *rod.Page) string {
	info, err := p.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

func (a *RodAutomator) NavigateGovBR(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.page(ctx, &a.govPage)
	if err != nil {
		return err
	}
	if err := navigate(p, a.cfg.GovBRURL); err != nil {
		return err
	}
	a.log.Info("gov.br login opened")
	return nil
}

// ScrapeUserData reads name and CPF from the page the citizen landed on
// after the gov.br login.
func (a *RodAutomator) ScrapeUserData(ctx context.Context) (UserData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.govPage == nil {
		return UserData{}, ErrUserDataUnavailable
	}
	p, err := a.page(ctx, &a.govPage)
	if err != nil {
		return UserData{}, err
	}

	body, err := p.Element("body")
	if err != nil {
		return UserData{}, fmt.Errorf("%w: %v", ErrUserDataUnavailable, err)
	}
	text, err := body.Text()
	if err != nil {
		return UserData{}, fmt.Errorf("%w: %v", ErrUserDataUnavailable, err)
	}
	taxID := FindTaxID(text)
	if taxID == "" {
		return UserData{}, ErrUserDataUnavailable
	}

	data := UserData{TaxID: taxID}
	if els, err := p.Elements(selAccountName); err == nil && len(els) > 0 {
		if name, err := els.First().Text(); err == nil {
			data.Name = strings.TrimSpace(name)
		}
	}
	return data, nil
}

// SubmitExternalForm fills the municipal request form with the citizen data.
func (a *RodAutomator) SubmitExternalForm(ctx context.Context, data UserData) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.page(ctx, &a.govPage)
	if err != nil {
		return false, err
	}
	if err := navigate(p, a.cfg.FormURL); err != nil {
		return false, err
	}

	fields := []struct{ selector, value string }{
		{selFormTaxID, data.TaxID},
		{selFormName, data.Name},
	}
	for _, f := range fields {
		el, err := p.Element(f.selector)
		if err != nil {
			return false, fmt.Errorf("%w: field %s: %v", ErrNavigation, f.selector, err)
		}
		if err := el.Input(f.value); err != nil {
			return false, fmt.Errorf("%w: input %s: %v", ErrNavigation, f.selector, err)
		}
	}
	submit, err := p.Element(selFormSubmit)
	if err != nil {
		return false, fmt.Errorf("%w: submit: %v", ErrNavigation, err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("%w: submit: %v", ErrNavigation, err)
	}
	a.log.Info("external form submitted")
	return true, nil
}

// FetchExternalPipeline logs into the plate portal when needed and reads
// every order row, visiting the attachments page of paid rows in production.
func (a *RodAutomator) FetchExternalPipeline(ctx context.Context) ([]PipelineRow, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.page(ctx, &a.portalPage)
	if err != nil {
		return nil, err
	}
	if err := a.portalLogin(ctx, p); err != nil {
		return nil, err
	}
	if err := navigate(p, a.cfg.PortalURL+pipelinePath); err != nil {
		return nil, err
	}

	rows, err := p.Elements(selPipelineRows)
	if err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrNavigation, err)
	}

	out := make([]PipelineRow, 0, len(rows))
	for _, row := range rows {
		record, ok := a.readRow(row)
		if !ok {
			continue
		}
		out = append(out, record)
	}

	for i := range out {
		inspect, hasPhotos := PhotoDecision(out[i].Status, out[i].IsPaid)
		if inspect {
			hasPhotos = a.checkPhotos(p, out[i].ExternalID)
		}
		out[i].HasPhotos = hasPhotos
	}
	a.log.Info("pipeline fetched", zap.Int("rows", len(out)))
	return out, nil
}

func (a *RodAutomator) readRow(row *rod.Element) (PipelineRow, bool) {
	cols, err := row.Elements("td")
	if err != nil || len(cols) < minPipelineColumns {
		return PipelineRow{}, false
	}
	cells := make([]string, len(cols))
	for i, col := range cols {
		text, err := col.Text()
		if err != nil {
			return PipelineRow{}, false
		}
		cells[i] = text
	}
	paid, _, err := cols[colPaid].Has(selPaidIcon)
	if err != nil {
		paid = false
	}
	return RowFromCells(cells, paid)
}

// checkPhotos navigates away from the listing, so it runs after all rows are read.
func (a *RodAutomator) checkPhotos(p *rod.Page, externalID string) bool {
	if err := navigate(p, a.cfg.PortalURL+fmt.Sprintf(detailPath, externalID)); err != nil {
		a.log.Warn("attachments page unavailable", zap.String("external_id", externalID), zap.Error(err))
		return false
	}
	html, err := p.HTML()
	if err != nil {
		return false
	}
	return PhotosFromContent(html)
}

func (a *RodAutomator) portalLogin(ctx context.Context, p *rod.Page) error {
	if err := navigate(p, a.cfg.PortalURL+loginPath); err != nil {
		return err
	}
	if !strings.Contains(currentURL(p), loginPath) {
		return nil
	}
	if a.cfg.PortalUsername == "" || a.cfg.PortalPassword == "" {
		return ErrMissingCredentials
	}

	user, err := p.Element(selLoginUser)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}
	if err := user.Input(a.cfg.PortalUsername); err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}
	password, err := p.Element(selLoginPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}
	if err := password.Input(a.cfg.PortalPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}
	submit, err := p.Element(selLoginSubmit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrPortalLogin, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.NavigateTimeout)
	defer cancel()
	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()
	for strings.Contains(currentURL(p), loginPath) {
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("%w: still on login page", ErrPortalLogin)
		case <-ticker.C:
		}
	}
	a.log.Info("plate portal login succeeded")
	return nil
}

func (a *RodAutomator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.browser == nil {
		return nil
	}
	err := a.browser.Close()
	a.browser, a.govPage, a.portalPage = nil, nil, nil
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var _ Automator = (*RodAutomator)(nil)
