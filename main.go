// hearth is a small home-automation controller. This entrypoint wires
// its embedded HTTP engine (debug console + web dashboard), the device
// registry the poll job keeps fresh, and telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hearthlab/hearth/auth/basicauth"
	"github.com/hearthlab/hearth/device"
	"github.com/hearthlab/hearth/httpd"
	"github.com/hearthlab/hearth/scheduler"
	"github.com/hearthlab/hearth/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context) error {
	port := flag.Int("port", 8085, "dashboard port")
	docroot := flag.String("docroot", "www", "static file root")
	certFile := flag.String("certfile", "", "TLS certificate; empty listens on plain TCP")
	keyFile := flag.String("keyfile", "", "TLS private key")
	logLevel := flag.Int("loglevel", httpd.LogTransaction, "0 silent, 1 lifecycle, 2 per-transaction, 3 wire dump")
	adminPass := flag.String("adminpass", "", "password for /admin/* (basic auth, user \"admin\"); empty leaves admin open")
	pollEvery := flag.Duration("poll", 15*time.Second, "device poll interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger, shutdownTelemetry, err := telemetry.Setup(ctx, "hearth")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()
	slog.SetDefault(logger)

	registry := device.NewRegistry()
	registry.Add(device.Device{ID: "attic-temp", Name: "Attic temperature", Kind: "thermometer"})
	registry.Add(device.Device{ID: "hall-thermostat", Name: "Hall thermostat", Kind: "thermostat"})
	registry.Add(device.Device{ID: "garden-valve", Name: "Garden valve relay", Kind: "relay"})

	opts := []httpd.Option{
		httpd.WithLogLevel(*logLevel),
		httpd.WithDefaultContentType("text/html"),
		httpd.WithResponder(homeResponder, "GET", "/"),
	}
	if *certFile != "" {
		opts = append(opts, httpd.WithTLS(*certFile, *keyFile))
	}

	srv, err := httpd.Start(*port, opts...)
	if err != nil {
		return err
	}

	srv.DefineRoute(healthResponder, "GET", "/health")
	srv.DefineRoute(device.ListResponder(registry), "GET", "/devices")
	srv.DefineRoute(device.GetResponder(registry), "GET", "/devices/*")
	srv.DefineRoute(device.SetResponder(registry), "POST", "/admin/devices/*")
	srv.DefineRoute(httpd.FileResponder(*docroot), "GET", "/static/*")

	srv.DefinePlugin(serverHeaderPlugin)
	if *adminPass != "" {
		srv.DefinePlugin(basicauth.Plugin("hearth", map[string]string{"admin": *adminPass}, "/admin/*"))
	}

	sched := scheduler.New()
	sched.AddJob(scheduler.NewJob("poll-devices", device.PollJob(registry, simulatedPoller)).
		WithInterval(*pollEvery))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		return httpd.StopAll()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var homeResponder httpd.Handler = func(req *httpd.Request) (httpd.Fields, error) {
	return httpd.Fields{
		Body: []byte("<html><body><h1>hearth</h1>" +
			`<p><a href="/devices">devices</a> &middot; <a href="/health">health</a></p>` +
			"</body></html>"),
		ContentType: "text/html",
	}, nil
}

var healthResponder httpd.Handler = func(req *httpd.Request) (httpd.Fields, error) {
	return httpd.Fields{Body: []byte("ok"), ContentType: "text/plain"}, nil
}

// serverHeaderPlugin stamps every response, errors included.
func serverHeaderPlugin(req *httpd.Request, res *httpd.Response) error {
	res.Header["Server"] = "hearth/0.1"
	return nil
}

// simulatedPoller stands in for the hardware bus adapters, which live
// outside this repository. It produces plausible drifting readings so
// the dashboard has something to show.
func simulatedPoller(ctx context.Context, id string) (device.Reading, error) {
	r := device.Reading{Time: time.Now()}
	switch id {
	case "garden-valve":
		r.Value = float64(rand.Intn(2))
		r.Unit = "state"
	default:
		r.Value = 18 + rand.Float64()*6
		r.Unit = "C"
	}
	return r, nil
}
