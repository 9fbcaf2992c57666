package cli

import (
	"errors"
	"fmt"

	"github.com/carlmontanari/ethermq/ethermq"
	"github.com/urfave/cli/v2"
)

const (
	configFlag         = "config"
	cidrFlag           = "cidr"
	segmentFlag        = "segment"
	brokerFlag         = "broker"
	interfaceFlag      = "interface"
	logLevelFlag       = "log-level"
	metricsAddressFlag = "metrics-address"
	unicastFlag        = "unicast"
	liveReloadFlag     = "live-reload"

	exitUsage = 2
)

// ShowVersion shows the version information for the ethermq cli.
func ShowVersion(_ *cli.Context) {
	fmt.Printf("\tversion: %s\n", ethermq.Version)                            //nolint:forbidigo
	fmt.Printf("\tsource : %s\n", "https://github.com/carlmontanari/ethermq") //nolint:forbidigo
}

// Entrypoint loads the ethermq config, creates the ethermq manager and starts it.
func Entrypoint() *cli.App {
	cli.VersionPrinter = ShowVersion

	return &cli.App{
		Name:    "ethermq",
		Version: ethermq.Version,
		Usage:   "bridge an ethernet segment over an mqtt broker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configFlag,
				Usage: "ethermq configuration file to load, optional",
			},
			&cli.StringFlag{
				Name:    cidrFlag,
				Aliases: []string{"c"},
				Usage:   "ip address/subnet for this node, i.e. 10.10.0.2/24",
			},
			&cli.StringFlag{
				Name:    segmentFlag,
				Aliases: []string{"s"},
				Usage:   "ethernet segment for this node",
			},
			&cli.StringFlag{
				Name:  brokerFlag,
				Usage: fmt.Sprintf("mqtt broker url (default %q)", ethermq.DefaultBrokerURL),
			},
			&cli.StringFlag{
				Name: interfaceFlag,
				Usage: fmt.Sprintf(
					"name of the tap interface to create (default %q)", ethermq.DefaultInterfaceName,
				),
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "log level, one of debug, info, warn, error (default \"info\")",
			},
			&cli.StringFlag{
				Name:  metricsAddressFlag,
				Usage: "address to serve prometheus metrics on, disabled if empty",
			},
			&cli.BoolFlag{
				Name:  unicastFlag,
				Usage: "send frames for learned remote macs to that node's topic only",
			},
			&cli.BoolFlag{
				Name:  liveReloadFlag,
				Usage: "watch the config file and apply changes while running",
			},
		},
		Action: func(ctx *cli.Context) error {
			m, err := ethermq.GetManager(options(ctx)...)
			if err != nil {
				if errors.Is(err, ethermq.ErrConfig) {
					_ = cli.ShowAppHelp(ctx)

					return cli.Exit(err.Error(), exitUsage)
				}

				return err
			}

			return m.Run()
		},
	}
}

// options returns manager options for every flag that was actually set, so flags only override
// config file values when given.
func options(ctx *cli.Context) []ethermq.Option {
	opts := []ethermq.Option{
		ethermq.WithConfigFile(ctx.String(configFlag)),
		ethermq.WithLiveReload(ctx.Bool(liveReloadFlag)),
	}

	stringOptions := map[string]func(string) ethermq.Option{
		cidrFlag:           ethermq.WithCIDR,
		segmentFlag:        ethermq.WithSegment,
		brokerFlag:         ethermq.WithBrokerURL,
		interfaceFlag:      ethermq.WithInterfaceName,
		logLevelFlag:       ethermq.WithLogLevel,
		metricsAddressFlag: ethermq.WithMetricsAddress,
	}

	for flag, opt := range stringOptions {
		if ctx.IsSet(flag) {
			opts = append(opts, opt(ctx.String(flag)))
		}
	}

	if ctx.IsSet(unicastFlag) {
		opts = append(opts, ethermq.WithUnicast(ctx.Bool(unicastFlag)))
	}

	return opts
}
