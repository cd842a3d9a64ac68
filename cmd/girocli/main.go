// Command girocli exercises the GiroCheckout gateway from the command line.
// It reads the project credentials from the environment and runs one API
// operation per invocation, which makes it handy for smoke-testing a project
// configuration before wiring the gateway into an application.
//
// Usage:
//
//	girocli purchase <amount> <currency> <description>
//	girocli status <reference>
//	girocli bankstatus <bic>
//	girocli issuers
//	girocli projects
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/girokit/girocheckout-go/internal/adapters/girocheckout"
	"github.com/girokit/girocheckout-go/internal/domain"
	pkghttp "github.com/girokit/girocheckout-go/pkg/http"
)

type cliConfig struct {
	MerchantID    string `env:"GIROCHECKOUT_MERCHANT_ID" env-required:"true"`
	ProjectID     string `env:"GIROCHECKOUT_PROJECT_ID" env-required:"true"`
	Passphrase    string `env:"GIROCHECKOUT_PASSPHRASE" env-required:"true"`
	PaymentMethod string `env:"GIROCHECKOUT_PAYMENT_METHOD" env-default:"CreditCard"`
	Language      string `env:"GIROCHECKOUT_LANGUAGE" env-default:"de"`
	BaseURL       string `env:"GIROCHECKOUT_BASE_URL"`
	ReturnURL     string `env:"GIROCHECKOUT_RETURN_URL"`
	NotifyURL     string `env:"GIROCHECKOUT_NOTIFY_URL"`

	Timeout time.Duration `env:"GIROCHECKOUT_TIMEOUT" env-default:"60s"`
	Debug   bool          `env:"GIROCHECKOUT_DEBUG" env-default:"false"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var cfg cliConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "girocli: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	gw, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := run(ctx, gw, cfg, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "girocli: logger setup failed: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func buildGateway(cfg cliConfig, logger *zap.Logger) (*girocheckout.Gateway, error) {
	method, err := domain.ParsePaymentMethod(cfg.PaymentMethod)
	if err != nil {
		return nil, err
	}
	client := pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(), cfg.Timeout)
	return girocheckout.New(girocheckout.Config{
		MerchantID:    cfg.MerchantID,
		ProjectID:     cfg.ProjectID,
		Passphrase:    cfg.Passphrase,
		Language:      cfg.Language,
		PaymentMethod: method,
		BaseURL:       cfg.BaseURL,
	}, client, logger)
}

func run(ctx context.Context, gw *girocheckout.Gateway, cfg cliConfig, command string, args []string) error {
	switch command {
	case "purchase":
		return runPurchase(ctx, gw, cfg, args)
	case "status":
		if len(args) != 1 {
			return fmt.Errorf("usage: girocli status <reference>")
		}
		return runStatus(ctx, gw, args[0])
	case "bankstatus":
		if len(args) != 1 {
			return fmt.Errorf("usage: girocli bankstatus <bic>")
		}
		return runBankStatus(ctx, gw, args[0])
	case "issuers":
		return runIssuers(ctx, gw)
	case "projects":
		return runProjects(ctx, gw)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runPurchase(ctx context.Context, gw *girocheckout.Gateway, cfg cliConfig, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: girocli purchase <amount> <currency> <description>")
	}
	minor, err := domain.MinorUnits(args[0])
	if err != nil {
		return err
	}

	resp, err := gw.Purchase(ctx, &domain.TransactionRequest{
		TransactionID: uuid.NewString(),
		AmountMinor:   minor,
		Currency:      args[1],
		Description:   args[2],
		ReturnURL:     cfg.ReturnURL,
		NotifyURL:     cfg.NotifyURL,
	})
	if err != nil {
		return err
	}

	fmt.Printf("rc:        %d\n", resp.Code())
	fmt.Printf("reference: %s\n", resp.TransactionReference())
	if resp.IsRedirect() {
		fmt.Printf("redirect:  %s\n", resp.RedirectURL())
	}
	return nil
}

func runStatus(ctx context.Context, gw *girocheckout.Gateway, reference string) error {
	resp, err := gw.GetTransaction(ctx, reference)
	if err != nil {
		return err
	}
	fmt.Printf("rc:      %d\n", resp.Code())
	fmt.Printf("status:  %s\n", resp.Status())
	fmt.Printf("reason:  %d %s\n", resp.ReasonCode(), resp.ReasonMessage("en"))
	fmt.Printf("backend: %s\n", resp.BackendTransactionID())
	return nil
}

func runBankStatus(ctx context.Context, gw *girocheckout.Gateway, bic string) error {
	resp, err := gw.BankStatus(ctx, bic)
	if err != nil {
		return err
	}
	fmt.Printf("bank:      %s\n", resp.BankName())
	fmt.Printf("giropay:   %s\n", strconv.FormatBool(resp.SupportsGiropay()))
	fmt.Printf("giropayid: %s\n", strconv.FormatBool(resp.SupportsGiropayID()))
	return nil
}

func runIssuers(ctx context.Context, gw *girocheckout.Gateway) error {
	resp, err := gw.Issuers(ctx)
	if err != nil {
		return err
	}
	for bic, name := range resp.Issuers() {
		fmt.Printf("%s\t%s\n", bic, name)
	}
	return nil
}

func runProjects(ctx context.Context, gw *girocheckout.Gateway) error {
	resp, err := gw.Projects(ctx)
	if err != nil {
		return err
	}
	for _, p := range resp.Projects() {
		fmt.Printf("%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Mode, p.PayMethods)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: girocli <command> [args]

commands:
  purchase <amount> <currency> <description>
  status <reference>
  bankstatus <bic>
  issuers
  projects`)
}
