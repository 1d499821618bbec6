// Package cmd contains the CLI commands for the Sensu PagerDuty handler.
package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/event"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/logging"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/metrics"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/notifier"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/resolver"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/template"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/pkg/config"
)

// deps holds the collaborators the handler reaches outside the process.
type deps struct {
	env       resolver.Env
	fqdn      func(ctx context.Context) (string, error)
	newClient func(cfg notifier.PagerDutyConfig) (notifier.Client, error)
	logOutput io.Writer
}

func defaultDeps() deps {
	return deps{
		env:  resolver.ProcessEnv,
		fqdn: resolver.FQDN,
		newClient: func(cfg notifier.PagerDutyConfig) (notifier.Client, error) {
			return notifier.NewPagerDutyNotifier(cfg)
		},
		logOutput: os.Stderr,
	}
}

type options struct {
	dedupKey   string
	details    string
	summary    string
	source     string
	status     statusFlag
	token      string
	configPath string
	envFile    string
	verbose    bool
}

// Execute runs the handler with the process arguments and stdin.
// This is called by main.main().
func Execute() error {
	return newRootCmd(defaultDeps()).Execute()
}

func newRootCmd(d deps) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sensu-pagerduty-handler",
		Short: "Sensu Go handler that forwards events to PagerDuty",
		Long: `sensu-pagerduty-handler reads a Sensu Go event on stdin and sends a
trigger (status 1 or 2) or resolve (status 0) event to the PagerDuty
Events API v2.

Every alert field is taken from its flag, then from its environment
variable, then from a default derived from the event:

  --dedup-key  PAGERDUTY_DEDUP_KEY  {namespace}_{entity}_{check}
  --summary    PAGERDUTY_SUMMARY    {namespace}/{entity}/{check} : {output}
  --status     PAGERDUTY_STATUS     check status from the event
  --source     PAGERDUTY_SOURCE     FQDN of the local host
  --details    PAGERDUTY_DETAILS    the full event

Details may be JSON text, which is sent as structured data, or a
reference to one value of the event such as "{{ .check.output }}".

Examples:
  # Alert with defaults
  sensu-pagerduty-handler -t $PD_INTEGRATION_KEY < event.json

  # Send only the check metadata as custom details
  sensu-pagerduty-handler -t $PD_INTEGRATION_KEY -d '{{ .check.metadata }}' < event.json`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runHandler(cmd, opts, d)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.dedupKey, "dedup-key", "k", "", "key identifying the alert for deduplication (env PAGERDUTY_DEDUP_KEY)")
	flags.StringVarP(&opts.details, "details", "d", "", "details to send, JSON or a {{ .path }} reference (env PAGERDUTY_DETAILS, default: full event)")
	flags.StringVarP(&opts.summary, "summary", "S", "", "alert summary (env PAGERDUTY_SUMMARY)")
	flags.StringVar(&opts.source, "source", "", "alert source (env PAGERDUTY_SOURCE, default: local FQDN)")
	flags.VarP(&opts.status, "status", "s", "check status: 0 (OK), 1 (Warning), 2 (Critical) (env PAGERDUTY_STATUS)")
	flags.StringVarP(&opts.token, "token", "t", "", "PagerDuty integration (routing) key")
	flags.StringVarP(&opts.configPath, "config", "c", "", "optional handler config file (YAML)")
	flags.StringVar(&opts.envFile, "env-file", "", "optional dotenv file supplying PAGERDUTY_* variables")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("token")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runHandler(cmd *cobra.Command, opts *options, d deps) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: d.logOutput})
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("invocation_id", uuid.NewString()))
	defer logger.Sync() //nolint:errcheck

	var entity string
	defer func() {
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		}
		if cfg.Pushgateway.URL != "" {
			pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			pusher := metrics.NewPusher(cfg.Pushgateway.URL, cfg.Pushgateway.Job, nil)
			if entity != "" {
				pusher.Grouping("entity", entity)
			}
			if perr := pusher.Push(pushCtx); perr != nil {
				logger.Warn("metrics push failed", zap.Error(perr))
			}
		}
	}()

	if opts.token == "" {
		return &resolver.InputValidationError{Field: "token", Reason: "must not be empty"}
	}
	client, err := d.newClient(notifier.PagerDutyConfig{
		RoutingKey: opts.token,
		Endpoint:   cfg.PagerDuty.EventsEndpoint,
		Severity:   cfg.PagerDuty.Severity,
		ClientName: cfg.PagerDuty.Client,
		Timeout:    cfg.PagerDuty.Timeout,
	})
	if err != nil {
		return err
	}

	env := d.env
	if opts.envFile != "" {
		fileEnv, ferr := resolver.LoadEnvFile(opts.envFile)
		if ferr != nil {
			return ferr
		}
		env = resolver.Layered(d.env, fileEnv)
	}

	doc, err := readEvent(cmd.InOrStdin())
	if err != nil {
		return err
	}
	entity, _ = doc.LookupString(event.EntityNamePath)

	req := resolver.Requested{
		DedupKey: optionalString(cmd.Flags(), "dedup-key", opts.dedupKey),
		Summary:  optionalString(cmd.Flags(), "summary", opts.summary),
		Source:   optionalString(cmd.Flags(), "source", opts.source),
		Details:  optionalString(cmd.Flags(), "details", opts.details),
	}
	if opts.status.set {
		status := opts.status.value
		req.Status = &status
	}

	res := resolver.New(
		resolver.WithEnv(env),
		resolver.WithFQDN(d.fqdn),
		resolver.WithLogger(logger),
	)
	fields, err := res.Resolve(ctx, req, doc)
	if err != nil {
		return err
	}

	_, err = notifier.NewDispatcher(client, logger).Dispatch(ctx, fields)
	return err
}

func readEvent(in io.Reader) (event.Document, error) {
	if f, ok := in.(*os.File); ok {
		return event.ReadStdin(f)
	}
	return event.Decode(in)
}

// errorKind names the error category for the errors_total metric.
func errorKind(err error) string {
	var (
		invalid  *resolver.InputValidationError
		parse    *event.ParseError
		notFound *template.PathNotFoundError
		dispatch *notifier.DispatchError
	)
	switch {
	case errors.As(err, &invalid):
		return "input_validation"
	case errors.As(err, &parse), errors.Is(err, event.ErrInteractiveInput):
		return "event_parse"
	case errors.As(err, &notFound):
		return "path_not_found"
	case errors.As(err, &dispatch):
		return "dispatch"
	default:
		return "other"
	}
}
