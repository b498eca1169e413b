package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dig_container "github.com/trezcool/college/apps/api/di/dig"
	echoapi "github.com/trezcool/college/apps/api/echo"
	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/user"
)

func main() {
	c := dig_container.New()
	if err := c.Invoke(run); err != nil {
		log.Fatal(err)
	}
}

// debugMux serves the operational endpoints, apart from the public server:
//
//	/debug/pprof/* - runtime profiles
//	/debug/vars    - build & backend info
//	/metrics       - prometheus metrics
func debugMux(conf *core.Config) *http.ServeMux {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("cache_backend").Set(conf.Cache.Backend)
	expvar.NewString("media_backend").Set(conf.Media.Backend)
	expvar.NewString("unread_ttl").Set(conf.Cache.UnreadTTL.String())

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func run(
	conf *core.Config,
	loggerParam dig_container.LoggerParam,
	store *dig_container.Store,
	server *echoapi.Server,
) error {
	apiLogger := loggerParam.Logger
	apiLogger.Info(fmt.Sprintf("College initializing : version %q, env %q", conf.Build, conf.Env))

	core.ParseEmailTemplates(conf, apiLogger)
	user.LoadCommonPasswords(apiLogger)

	defer func() {
		if err := store.Close(); err != nil {
			apiLogger.Error(fmt.Sprintf("closing store: %v", err), err)
		}
	}()
	defer apiLogger.Info("College stopped")

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, debugMux(conf)); err != nil {
			apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	go server.Start()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		apiLogger.Info(fmt.Sprintf("%v: shutting down...", sig))

		// outstanding requests get until the timeout to complete
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}
