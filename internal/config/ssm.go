package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rs/zerolog/log"
)

// ParameterGetter is the slice of the SSM client used to fetch secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// FillFromSSM fetches every missing required setting from SSM Parameter
// Store at <SSMPrefix>/<NAME> (e.g. /edu-studio/prod/GOOGLE_API_KEY).
// Parameters that do not exist are skipped and stay missing; any other SSM
// failure is returned. Without an SSM prefix it does nothing.
func (c *Config) FillFromSSM(ctx context.Context, client ParameterGetter) error {
	if c.SSMPrefix == "" {
		return nil
	}
	for _, r := range c.required() {
		if *r.value != "" {
			continue
		}

		paramName := c.SSMPrefix + "/" + r.name
		ssmStart := time.Now()
		result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           &paramName,
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			var notFound *ssmtypes.ParameterNotFound
			if errors.As(err, &notFound) {
				log.Warn().Str("param", paramName).Msg("Parameter not found in SSM")
				continue
			}
			return fmt.Errorf("failed to read %s from SSM: %w", paramName, err)
		}
		if result.Parameter == nil || result.Parameter.Value == nil {
			continue
		}

		*r.value = *result.Parameter.Value
		log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Secret loaded from SSM")
	}
	return nil
}
