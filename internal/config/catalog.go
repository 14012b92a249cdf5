package config

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.default.yml
var defaultCatalogYAML []byte

// CatalogService describes one bureaucracy service offered on the marketplace.
type CatalogService struct {
	ID           string   `mapstructure:"-" yaml:"-" json:"id"`
	Name         string   `mapstructure:"name" yaml:"name" json:"name"`
	Requirements []string `mapstructure:"requirements" yaml:"requirements" json:"requirements"`
	DocsNeeded   []string `mapstructure:"docs_needed" yaml:"docs_needed" json:"docs_needed"`
}

type ServiceCatalog struct {
	Services map[string]CatalogService `mapstructure:"services" yaml:"services" json:"services"`
}

// List returns the services ordered by id.
func (c ServiceCatalog) List() []CatalogService {
	out := make([]CatalogService, 0, len(c.Services))
	for id, svc := range c.Services {
		svc.ID = id
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func DefaultServiceCatalog() (ServiceCatalog, error) {
	var doc struct {
		Catalog ServiceCatalog `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(defaultCatalogYAML, &doc); err != nil {
		return ServiceCatalog{}, fmt.Errorf("decode default catalog: %w", err)
	}
	return doc.Catalog, nil
}

type CatalogHolder struct {
	current atomic.Value // holds ServiceCatalog
}

// NewCatalogHolder reads catalog.yml (explicit path, /etc/descomplaca or the
// working directory) and reloads it on change. Without a file the embedded
// defaults are used.
func NewCatalogHolder(cfg Config, log *zap.Logger) (*CatalogHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("catalog.config")

	v := viper.New()
	if cfg.CatalogPath != "" {
		v.SetConfigFile(cfg.CatalogPath)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/descomplaca")
		v.AddConfigPath(".")
	}

	holder := &CatalogHolder{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg.CatalogPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		defaults, derr := DefaultServiceCatalog()
		if derr != nil {
			return nil, derr
		}
		holder.current.Store(defaults)
		log.Info("service catalog loaded from defaults", zap.Int("services", len(defaults.Services)))
		return holder, nil
	}

	catalog, err := decodeCatalog(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(catalog)
	log.Info("service catalog loaded", zap.String("file", v.ConfigFileUsed()), zap.Int("services", len(catalog.Services)))

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeCatalog(v)
		if err != nil {
			log.Warn("catalog reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("service catalog reloaded", zap.String("file", e.Name), zap.Int("services", len(updated.Services)))
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticCatalogHolder wraps a fixed catalog.
func NewStaticCatalogHolder(catalog ServiceCatalog) *CatalogHolder {
	holder := &CatalogHolder{}
	holder.current.Store(catalog)
	return holder
}

func (h *CatalogHolder) Get() ServiceCatalog {
	return h.current.Load().(ServiceCatalog)
}

func (h *CatalogHolder) Service(id string) (CatalogService, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	svc, ok := h.Get().Services[id]
	if ok {
		svc.ID = id
	}
	return svc, ok
}

// IsEligible reports whether the service exists in the catalog.
func (h *CatalogHolder) IsEligible(id string) bool {
	_, ok := h.Service(id)
	return ok
}

func (h *CatalogHolder) Requirements(id string) []string {
	svc, _ := h.Service(id)
	return svc.Requirements
}

func decodeCatalog(v *viper.Viper) (ServiceCatalog, error) {
	var catalog ServiceCatalog
	if err := v.UnmarshalKey("catalog", &catalog); err != nil {
		return ServiceCatalog{}, err
	}
	if err := validateCatalog(catalog); err != nil {
		return ServiceCatalog{}, err
	}
	return catalog, nil
}

func validateCatalog(catalog ServiceCatalog) error {
	if len(catalog.Services) == 0 {
		return errors.New("catalog.services cannot be empty")
	}
	for id, svc := range catalog.Services {
		if strings.TrimSpace(svc.Name) == "" {
			return fmt.Errorf("catalog.services.%s.name is required", id)
		}
	}
	return nil
}
