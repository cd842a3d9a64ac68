// Command notifyd is a small callback receiver for GiroCheckout redirect
// returns and back-channel notifications. It verifies every inbound message
// and logs the classified outcome; a shop integration would replace the log
// statements with order updates.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/girokit/girocheckout-go/internal/adapters/girocheckout"
	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
	pkghttp "github.com/girokit/girocheckout-go/pkg/http"
)

type serverConfig struct {
	ListenAddr string `env:"NOTIFYD_LISTEN_ADDR" env-default:":8480"`

	MerchantID    string `env:"GIROCHECKOUT_MERCHANT_ID" env-required:"true"`
	ProjectID     string `env:"GIROCHECKOUT_PROJECT_ID" env-required:"true"`
	Passphrase    string `env:"GIROCHECKOUT_PASSPHRASE" env-required:"true"`
	PaymentMethod string `env:"GIROCHECKOUT_PAYMENT_METHOD" env-default:"CreditCard"`
	Language      string `env:"GIROCHECKOUT_LANGUAGE" env-default:"de"`
	BaseURL       string `env:"GIROCHECKOUT_BASE_URL"`

	EnrichNotifications bool `env:"NOTIFYD_ENRICH_NOTIFICATIONS" env-default:"false"`

	ReadTimeout     time.Duration `env:"NOTIFYD_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"NOTIFYD_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"NOTIFYD_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type server struct {
	gateway *girocheckout.Gateway
	logger  *zap.Logger
}

func main() {
	var cfg serverConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "notifyd: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifyd: logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	method, err := domain.ParsePaymentMethod(cfg.PaymentMethod)
	if err != nil {
		logger.Fatal("invalid payment method", zap.Error(err))
	}

	client := pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(), 60*time.Second)
	gw, err := girocheckout.New(girocheckout.Config{
		MerchantID:          cfg.MerchantID,
		ProjectID:           cfg.ProjectID,
		Passphrase:          cfg.Passphrase,
		Language:            cfg.Language,
		PaymentMethod:       method,
		BaseURL:             cfg.BaseURL,
		EnrichNotifications: cfg.EnrichNotifications,
	}, client, logger)
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}

	s := &server{gateway: gw, logger: logger}

	router := httprouter.New()
	router.GET("/notify", s.handleNotify)
	router.POST("/notify", s.handleNotify)
	router.GET("/return", s.handleReturn)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("notifyd listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", zap.Error(err))
	}
	logger.Info("notifyd stopped")
}

// handleNotify processes the provider's back-channel notification. The
// provider delivers the gc-fields as query parameters or a form-encoded POST
// body; ParseForm merges both. It retries on anything but 200, so a rejected
// hash answers 400 to force a retry and leave an audit trail.
func (s *server) handleNotify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	n, err := s.gateway.AcceptNotification(r.Context(), r.Form)
	if err != nil {
		s.reject(w, err)
		return
	}

	s.logger.Info("payment notification",
		zap.String("reference", n.TransactionReference()),
		zap.String("merchant_tx_id", n.TransactionID()),
		zap.String("status", string(n.Status())),
		zap.Int64("amount", n.AmountMinor()),
		zap.String("currency", n.Currency()),
	)
	w.WriteHeader(http.StatusOK)
}

// handleReturn processes the payer's browser redirect after the hosted form.
func (s *server) handleReturn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	n, err := s.gateway.CompletePurchase(r.Form)
	if err != nil {
		s.reject(w, err)
		return
	}

	s.logger.Info("payer returned",
		zap.String("reference", n.TransactionReference()),
		zap.String("status", string(n.Status())),
		zap.Bool("cancelled", n.IsCancelled()),
	)

	switch {
	case n.IsSuccessful():
		fmt.Fprintln(w, "payment completed")
	case n.IsCancelled():
		fmt.Fprintln(w, "payment cancelled")
	default:
		fmt.Fprintf(w, "payment %s: %s\n", n.Status(), n.Message())
	}
}

func (s *server) reject(w http.ResponseWriter, err error) {
	var ierr *pkgerrors.IntegrityError
	if errors.As(err, &ierr) {
		http.Error(w, "invalid hash", http.StatusBadRequest)
		return
	}
	http.Error(w, "bad request", http.StatusBadRequest)
}
