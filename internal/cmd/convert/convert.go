package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal/config"
)

// overrides maps flag names to the config values they replace. A value is
// only applied when the flag was passed or CSVJSON_<FLAG> is set.
var overrides = map[string]func(c *config.Csvjson, v *viper.Viper, key string){
	"source":      func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Source.Path = v.GetString(key) },
	"delimiter":   func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Source.Delimiter = v.GetString(key) },
	"output":      func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Output.Key = v.GetString(key) },
	"catalog":     func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Output.CatalogKey = v.GetString(key) },
	"format":      func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Preserver.Type = v.GetString(key) },
	"repository":  func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Repository.Type = v.GetString(key) },
	"non-numeric": func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Transform.NonNumeric = v.GetString(key) },
	"fields":      func(c *config.Csvjson, v *viper.Viper, key string) { c.Converter.Transform.Fields = v.GetStringSlice(key) },
	"log-level":   func(c *config.Csvjson, v *viper.Viper, key string) { c.Global.Logger.Level = v.GetString(key) },
}

func NewCommand() *cobra.Command {
	var configPath string
	var bindErr error
	v := viper.New()

	var cmd = &cobra.Command{
		Use:   "convert",
		Short: "Converts a CSV coordinate file into a JSON position document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bindErr != nil {
				return bindErr
			}

			c := config.Default()
			if configPath != "" {
				var err error
				c, err = config.NewFromFile(configPath)
				if err != nil {
					return err
				}
			}

			for key, apply := range overrides {
				if v.IsSet(key) {
					apply(c, v, key)
				}
			}

			if err := c.Validate(); err != nil {
				return err
			}

			logger, err := c.Global.Logger.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("csvjson.convert")

			conv, err := config.InitializeConverter(c, l)
			if err != nil {
				return err
			}

			cat, err := conv.Convert(cmd.Context())
			if err != nil {
				return err
			}

			l.Info("conversion complete",
				zap.String("id", cat.ID),
				zap.String("target", cat.Target),
				zap.Int("records", cat.NumRecordsProcessed),
				zap.Duration("duration", cat.Duration()),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringP("source", "s", "", "CSV file to read (default earth.csv)")
	cmd.Flags().String("delimiter", "", "CSV field delimiter (default ,)")
	cmd.Flags().StringP("output", "o", "", "Output key to write (default json/earth.json)")
	cmd.Flags().String("catalog", "", "Also write the run catalog under this key")
	cmd.Flags().StringP("format", "f", "", "Output format: json or parquet")
	cmd.Flags().StringP("repository", "r", "", "Where to write: local, s3 or stdout")
	cmd.Flags().String("non-numeric", "", "Non-numeric coordinates: passthrough, skip or fail")
	cmd.Flags().StringSlice("fields", nil, "Coordinate fields to round (default x,y,z)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")

	bindErr = bindFlags(v, cmd.Flags())
	v.SetEnvPrefix("CSVJSON")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// bindFlags binds every override key to the flag of the same name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	for key := range overrides {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
