package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/webitel/im-delivery-service/config"
	"github.com/webitel/im-delivery-service/infra/otel"
)

const (
	ServiceName      = "im-delivery-service"
	ServiceNamespace = "webitel"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:  ServiceName,
		Usage: "Real-time instant-messaging delivery backend",
		Commands: []*cli.Command{
			roleCmd("gateway", "Run the WebSocket session gateway (C10)", NewGatewayApp),
			roleCmd("ingress", "Run the Chat.SendMsg ingress RPC (C7)", NewIngressApp),
			roleCmd("consumer", "Run the sequence-allocating consumer (C8)", NewConsumerApp),
			roleCmd("pusher", "Run the standalone fan-out pusher (C9)", NewPusherApp),
			roleCmd("db", "Run the history/inbox/groups RPC surface (C5/C6/C11)", NewDbApp),
			loadseqCmd(),
			dashboardCmd(),
		},
	}

	return app.Run(os.Args)
}

var configFileFlag = &cli.StringFlag{
	Name:  "config_file",
	Usage: "Path to the configuration file",
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(nil, c.String("config_file"))
}

// roleCmd builds one subcommand per deployable role (§6), each its
// own fx.App so roles can run as independent processes or, for local
// development, as several processes on one machine sharing the same
// backing stores.
func roleCmd(name, usage string, newApp func(*config.Config) *fx.App) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{configFileFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			tp := otel.Setup(ServiceName)
			defer func() { _ = otel.Shutdown(context.Background(), tp) }()

			app := newApp(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("shutting down", "role", name)
			return app.Stop(context.Background())
		},
	}
}
