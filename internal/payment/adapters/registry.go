package adapters

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/payment/adapters/asaas"
	"github.com/smallbiznis/descomplaca/internal/payment/adapters/mercadopago"
	"github.com/smallbiznis/descomplaca/internal/payment/domain"
	"go.uber.org/zap"
)

// Registry holds the webhook adapters of every configured provider.
type Registry struct {
	adapters map[string]domain.WebhookAdapter
}

func NewRegistry(adapters ...domain.WebhookAdapter) *Registry {
	registry := &Registry{adapters: map[string]domain.WebhookAdapter{}}
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		provider := normalize(adapter.Provider())
		if provider == "" {
			continue
		}
		registry.adapters[provider] = adapter
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	_, ok := r.adapters[normalize(provider)]
	return ok
}

func (r *Registry) Adapter(provider string) (domain.WebhookAdapter, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	adapter, ok := r.adapters[normalize(provider)]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return adapter, nil
}

// Build wires the gateway chosen by PAYMENT_PROVIDER and the webhook
// adapters of every provider with credentials.
func Build(cfg config.Config, log *zap.Logger) (domain.Gateway, *Registry, error) {
	pc := cfg.Payment
	var (
		asaasClient *asaas.Client
		mpGateway   *mercadopago.Gateway
		webhooks    []domain.WebhookAdapter
	)

	if pc.AsaasAPIKey != "" {
		client, err := asaas.NewClient(asaas.Config{BaseURL: pc.AsaasAPIURL, APIKey: pc.AsaasAPIKey, Timeout: pc.Timeout})
		if err != nil {
			return nil, nil, err
		}
		asaasClient = client
	}
	// Asaas webhooks are accepted even without an API key; the token alone guards them.
	webhooks = append(webhooks, asaas.NewWebhookAdapter(pc.AsaasWebhookToken))

	if pc.MercadoPagoAccessToken != "" {
		gateway, err := mercadopago.NewGateway(pc.MercadoPagoAccessToken)
		if err != nil {
			return nil, nil, err
		}
		mpGateway = gateway
		webhooks = append(webhooks, mercadopago.NewWebhookAdapter(gateway, pc.MercadoPagoWebhookSecret))
	}

	registry := NewRegistry(webhooks...)

	switch normalize(pc.Provider) {
	case asaas.ProviderName, "":
		if asaasClient == nil {
			log.Warn("asaas api key missing; checkout disabled")
			return nil, registry, nil
		}
		return asaasClient, registry, nil
	case mercadopago.ProviderName:
		if mpGateway == nil {
			log.Warn("mercado pago access token missing; checkout disabled")
			return nil, registry, nil
		}
		return mpGateway, registry, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, pc.Provider)
	}
}

func normalize(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
