package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gosuda.org/portal/portal/core/cryptoops"
	"gosuda.org/portal/sdk"

	"github.com/gosuda/werewolf-gm/journal"
)

var rootCmd = &cobra.Command{
	Use:   "gmserver",
	Short: "Game-master support server for turn-based social deduction games",
	RunE:  runServer,
}

var (
	flagServerURLs []string
	flagPort       int
	flagName       string
	flagCredKey    string
	flagJournalDir string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&flagServerURLs, "server-url", strings.Split(os.Getenv("RELAY"), ","), "relayserver base URL(s); repeat or comma-separated (from env RELAY if set)")
	flags.IntVar(&flagPort, "port", 8080, "local HTTP port (negative to disable)")
	flags.StringVar(&flagName, "name", "werewolf-gm", "backend display name")
	flags.StringVar(&flagCredKey, "cred-key", "", "optional credential key to use for the listener (base64 encoded)")
	flags.StringVar(&flagJournalDir, "journal-dir", os.Getenv("GM_JOURNAL_DIR"), "directory for the event journal (empty to disable)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute gmserver command")
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := make([]string, 0, len(flagServerURLs))
	for _, raw := range flagServerURLs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			servers = append(servers, trimmed)
		}
	}

	jnl, err := journal.Open(flagJournalDir)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	mgr := NewSessionManager(jnl)
	handler := NewHTTPServer(mgr, jnl)

	var (
		ln     net.Listener
		client *sdk.RDClient
	)

	if len(servers) > 0 {
		cred := sdk.NewCredential()
		if flagCredKey != "" {
			key, err := base64.StdEncoding.DecodeString(flagCredKey)
			if err != nil {
				return fmt.Errorf("decode cred key: %w", err)
			}
			cred2, err := cryptoops.NewCredentialFromPrivateKey(key)
			if err != nil {
				return fmt.Errorf("new credential from private key: %w", err)
			}
			cred = cred2
		}

		c, err := sdk.NewClient(func(cfg *sdk.RDClientConfig) {
			cfg.BootstrapServers = servers
		})
		if err != nil {
			return fmt.Errorf("new client: %w", err)
		}
		listener, err := c.Listen(cred, flagName, []string{"http/1.1"})
		if err != nil {
			_ = c.Close()
			return fmt.Errorf("listen: %w", err)
		}
		client = c
		ln = listener
		log.Info().Msg("[gm] relay listener enabled")
	} else {
		log.Info().Msg("[gm] relay disabled; running local mode only")
	}

	mux := handler.Router()
	if ln != nil {
		go func() {
			if err := http.Serve(ln, mux); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
				log.Error().Err(err).Msg("[gm] relay http error")
			}
		}()
	}

	var httpSrv *http.Server
	if flagPort >= 0 {
		httpSrv = &http.Server{Addr: fmt.Sprintf(":%d", flagPort), Handler: mux, ReadHeaderTimeout: 5 * time.Second, IdleTimeout: 60 * time.Second}
		log.Info().Msgf("[gm] serving locally at http://127.0.0.1:%d", flagPort)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Err(err).Msg("[gm] local http stopped")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		if ln != nil {
			_ = ln.Close()
		}
		if client != nil {
			_ = client.Close()
		}
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("[gm] http server shutdown error")
			}
		}
		mgr.Close()
		if err := jnl.Close(); err != nil {
			log.Error().Err(err).Msg("[gm] journal close error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("[gm] shutdown complete")
	return nil
}
