package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/curebird/backend/pkg/log"
)

type DataGovConfig struct {
	// Public demo key shipped as default so the service degrades to the
	// shared quota instead of failing when unset.
	APIKey     string `env:"DATA_GOV_API_KEY" envDefault:"579b464db66ec23bdd000001cdd3946e44ce4aad7209ff7b23ac571b"`
	BaseURL    string `env:"DATA_GOV_BASE_URL" envDefault:"https://api.data.gov.in"`
	ResourceID string `env:"DATA_GOV_RESOURCE_ID" envDefault:"96973b30-3829-46c4-912b-ab7ec65aff1b"`
	Limit      int    `env:"DATA_GOV_LIMIT" envDefault:"1000"`
}

func NewDataGovConfig(ctx context.Context) *DataGovConfig {
	c := &DataGovConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse DataGov config")
	}
	return c
}

func (c DataGovConfig) ResourceURL() string {
	return fmt.Sprintf("%s/resource/%s?api-key=%s&format=json&limit=%d",
		c.BaseURL, c.ResourceID, c.APIKey, c.Limit)
}
