package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	config "bizops-analytics-api/configs"
	"bizops-analytics-api/pkg/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliSettings は設定ファイル・環境変数・フラグをまとめた共通設定です。
type cliSettings struct {
	Noise   string `mapstructure:"noise"`
	Seed    uint64 `mapstructure:"seed"`
	Profile string `mapstructure:"profile"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	rootCmd := &cobra.Command{
		Use:   "analytics-cli",
		Short: "Runs predictive analytics over local sales, customer and inventory files",
		Long: `analytics-cli runs the same analytics engine as the API server against local files:
demand and revenue forecasts and anomaly detection over .xlsx/.csv series,
churn risk, inventory optimisation and product recommendations over JSON input.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.analytics-cli.yaml)")
	rootCmd.PersistentFlags().String("noise", config.NoiseSeeded, "forecast noise source: random, seeded or off")
	rootCmd.PersistentFlags().Uint64("seed", 42, "seed for the seeded noise source")
	rootCmd.PersistentFlags().String("profile", "", "YAML analytics profile overriding engine parameters")
	_ = a.v.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.SetOut(out)
	rootCmd.AddCommand(
		a.anomaliesCmd(),
		a.demandCmd(),
		a.revenueCmd(),
		a.churnCmd(),
		a.inventoryCmd(),
		a.recommendCmd(),
	)
	return rootCmd
}

func (a *app) initConfig(stderr io.Writer) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".analytics-cli")
	}

	a.v.SetEnvPrefix("ANALYTICS_CLI")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}
	fmt.Fprintln(stderr, "Using config file:", a.v.ConfigFileUsed())
	return nil
}

// newService 共通設定から分析エンジンを組み立てる
func (a *app) newService() (*services.AnalyticsService, error) {
	var s cliSettings
	if err := a.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	params := services.DefaultParams()
	if s.Profile != "" {
		profile, err := config.LoadAnalyticsProfile(s.Profile)
		if err != nil {
			return nil, err
		}
		profile.Apply(&params)
	}

	noise := (&config.Config{NoiseMode: s.Noise, NoiseSeed: s.Seed}).NoiseSource()
	return services.NewAnalyticsServiceWithParams(params, noise)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
