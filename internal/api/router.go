package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/nano-wallet/docs"
	"github.com/AlexZinkM/nano-wallet/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(nanoHandler *handler.NanoHandler, bookHandler *handler.AddressBookHandler, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Wallet endpoints
	mux.HandleFunc("/wallet/generate", nanoHandler.Generate)
	mux.HandleFunc("/wallet/import", nanoHandler.Import)
	mux.HandleFunc("/wallet/unlock", nanoHandler.Unlock)
	mux.HandleFunc("/wallet/lock", nanoHandler.Lock)
	mux.HandleFunc("/wallet/accounts", nanoHandler.Accounts)
	mux.HandleFunc("/wallet/balance", nanoHandler.GetBalance)
	mux.HandleFunc("/wallet/receive", nanoHandler.Receive)
	mux.HandleFunc("/wallet/send", nanoHandler.Send)
	mux.HandleFunc("/wallet/representative", nanoHandler.ChangeRepresentative)
	mux.HandleFunc("/wallet/history", nanoHandler.TransactionHistory)
	mux.HandleFunc("/wallet/export", nanoHandler.Export)
	mux.HandleFunc("/wallet/backup", nanoHandler.Backup)
	mux.HandleFunc("/wallet/restore", nanoHandler.Restore)

	mux.HandleFunc("/address/validate", nanoHandler.ValidateAddress)
	mux.HandleFunc("/broadcasts", nanoHandler.Broadcasts)
	mux.HandleFunc("/addressbook", bookHandler.Contacts)

	return mux
}
