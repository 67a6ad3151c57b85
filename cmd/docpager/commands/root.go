package commands

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/docpager"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("docpager")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	logger := logrus.New()

	rootCmd := &cobra.Command{
		Use:           "docpager",
		Short:         "Inspect and craft docpager cursor tokens",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			if v.GetBool("verbose") {
				logger.SetLevel(logrus.DebugLevel)
			}

			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("cannot read config: %w", err)
				}
			}

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file with a docpager section")
	flags.String("secret", "", "token signing secret (env DOCPAGER_SECRET)")
	flags.StringArray("key", nil, "ordering key as field[:asc|desc[:objectid|time|int|float|string]], at most two")
	flags.String("identifier", "_id:asc:objectid", "tiebreaker key, same format as --key")
	flags.BoolP("verbose", "v", false, "log ignored cursors")
	_ = v.BindPFlags(flags)

	env := &environment{viper: v, logger: logger}
	rootCmd.AddCommand(
		newEncodeCommand(env),
		newDecodeCommand(env),
		newFilterCommand(env),
	)

	return rootCmd
}

// environment is shared by the subcommands.
type environment struct {
	viper  *viper.Viper
	logger *logrus.Logger
}

func (e *environment) config() (docpager.Config, error) {
	cfg, err := docpager.LoadConfig(e.viper, "docpager")
	if err != nil {
		return cfg, err
	}

	if secret := e.viper.GetString("secret"); secret != "" {
		cfg.Secret = secret
	}

	return cfg, nil
}

func (e *environment) builder() (*docpager.CursorBuilder, error) {
	keys := make([]docpager.Key, 0, 2)
	for _, raw := range e.viper.GetStringSlice("key") {
		key, err := parseKeyFlag(raw)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if len(keys) > 2 {
		return nil, fmt.Errorf("%w: at most two --key flags are supported", docpager.ErrInvalidKey)
	}

	identifier, err := parseKeyFlag(e.viper.GetString("identifier"))
	if err != nil {
		return nil, err
	}

	var (
		primary   docpager.Key
		secondary *docpager.Key
	)
	if len(keys) > 0 {
		primary = keys[0]
	}
	if len(keys) > 1 {
		secondary = &keys[1]
	}

	return docpager.NewCursorBuilder(primary, secondary, docpager.WithBuilderIdentifier(identifier))
}
