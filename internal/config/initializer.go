package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
	"github.com/turbolytics/csvjson/internal/converter"
	lcsv "github.com/turbolytics/csvjson/internal/csv"
	"github.com/turbolytics/csvjson/internal/local"
	"github.com/turbolytics/csvjson/internal/parquet"
	"github.com/turbolytics/csvjson/internal/position"
	"github.com/turbolytics/csvjson/internal/preserver"
	"github.com/turbolytics/csvjson/internal/s3"
	"github.com/turbolytics/csvjson/internal/stdout"
)

func InitializeRepository(c Repository, l *zap.Logger) (internal.Repository, error) {
	switch c.Type {
	case "local":
		return local.New(
			c.LocalConfig.Path,
			local.WithCreateDirs(c.LocalConfig.CreateDirs),
			local.WithLogger(l),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(l),
			s3.WithRegion(c.S3Config.Region),
			s3.WithBucket(c.S3Config.Bucket),
			s3.WithEndpoint(c.S3Config.Endpoint),
			s3.WithPrefix(c.S3Config.Prefix),
			s3.WithForcePathStyle(c.S3Config.ForcePathStyle),
		)
	case "stdout":
		return stdout.New(stdout.WithLogger(l)), nil
	default:
		return nil, fmt.Errorf("unknown repository type: %s", c.Type)
	}
}

func InitializePreserver(c Converter, repository internal.Repository, l *zap.Logger) (internal.Preserver, error) {
	switch c.Preserver.Type {
	case "json":
		return preserver.NewJSON(
			preserver.WithRepository(repository),
			preserver.WithDocumentKey(c.Preserver.JSON.DocumentKey),
			preserver.WithIndent(c.Preserver.JSON.Indent),
			preserver.WithLogger(l),
		), nil
	case "parquet":
		return parquet.New(
			parquet.WithRepository(repository),
			parquet.WithCoordinates(c.Transform.Fields),
			parquet.WithLogger(l),
		)
	default:
		return nil, fmt.Errorf("unknown preserver type: %s", c.Preserver.Type)
	}
}

func InitializeConverter(c *Csvjson, l *zap.Logger) (*converter.Converter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	conv := c.Converter

	policy, err := position.ParsePolicy(conv.Transform.NonNumeric)
	if err != nil {
		return nil, err
	}

	repository, err := InitializeRepository(conv.Repository, l)
	if err != nil {
		return nil, err
	}

	p, err := InitializePreserver(conv, repository, l)
	if err != nil {
		return nil, err
	}

	return converter.New(
		converter.WithLogger(l),
		converter.WithSource(
			lcsv.NewSource(
				conv.Source.Path,
				lcsv.WithDelimiter(conv.Source.DelimiterRune()),
				lcsv.WithLogger(l),
			),
		),
		converter.WithTransformer(
			position.New(
				position.WithFields(conv.Transform.Fields),
				position.WithPolicy(policy),
				position.WithLogger(l),
			),
		),
		converter.WithRepository(repository),
		converter.WithPreserver(p),
		converter.WithOutputKey(conv.Output.Key),
		converter.WithCatalogKey(conv.Output.CatalogKey),
	), nil
}
