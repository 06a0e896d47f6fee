package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/hynli/riverfish/internal/engine"
	"github.com/hynli/riverfish/internal/logx"
	"github.com/hynli/riverfish/internal/server"
)

var (
	addr     = flag.String("addr", "", "listen address (default $RIVERFISH_ADDR or :8080)")
	logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	threads  = flag.Int("threads", 0, "search threads (0 = leave at default)")
	hashMB   = flag.Int("hash", 0, "hash size in MB (0 = leave at default)")
)

func main() {
	flag.Parse()
	log := logx.NewLoggerWithLevel(*logLevel)
	gin.SetMode(gin.ReleaseMode)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = os.Getenv("RIVERFISH_ADDR")
	}
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	eng := engine.New()
	defer eng.Close()

	if *hashMB > 0 {
		if err := eng.Options().Set("Hash", strconv.Itoa(*hashMB)); err != nil {
			log.Fatal().Err(err).Msg("invalid hash size")
		}
	}
	if *threads > 0 {
		if err := eng.Options().Set("Threads", strconv.Itoa(*threads)); err != nil {
			log.Fatal().Err(err).Msg("invalid thread count")
		}
	}

	srv := server.New(eng, log)

	done := make(chan struct{})
	go srv.Hub().Run(done)

	httpServer := &http.Server{Addr: listenAddr, Handler: srv.Router()}

	go func() {
		log.Info().Str("addr", listenAddr).Msg("analysis server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	close(done)
	eng.Stop()
	eng.WaitForSearchFinished()
	httpServer.Close()
}
