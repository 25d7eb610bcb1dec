// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command agentrun drives a small actor-runtime demo: it spawns a
// handful of agents wired into a mesh topology, signals each one, and
// runs a quorum call across them before shutting the runtime down.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	leanrapi "github.com/leanr-go/leanr/api"
	"github.com/leanr-go/leanr/config"
	"github.com/leanr-go/leanr/internal/logging"
	"github.com/leanr-go/leanr/runtime"
	"github.com/leanr-go/leanr/version"
)

type echoRequest struct {
	value   int
	respond func(int)
}

func main() {
	agents := flag.Int("agents", 4, "number of demo agents to spawn")
	httpAddr := flag.String("http", "", "if set, serve a /health endpoint on this address")
	configPath := flag.String("config", "", "path to a YAML config file; defaults to config.Default()")
	showVersion := flag.Bool("version", false, "print the agentrun version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Current)
		return
	}

	log := logging.New()
	defer log.Sync()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "agentrun: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	rt, err := runtime.New(runtime.Config{
		WorkerThreads:          cfg.Runtime.WorkerThreads,
		DefaultMailboxCapacity: cfg.Runtime.Mailbox.Capacity,
	}, runtime.Deps{
		Registerer: prometheus.NewRegistry(),
		Namespace:  "leanr_agentrun",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentrun: %v\n", err)
		os.Exit(1)
	}

	rt.Start()
	defer rt.Stop()

	if report, err := rt.Health(context.Background()); err == nil {
		fmt.Printf("health: %+v\n", report)
	}

	if *httpAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			report, err := rt.Health(r.Context())
			if err != nil {
				_ = leanrapi.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			_ = leanrapi.WriteSuccess(w, report)
		})
		server := &http.Server{Addr: *httpAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "agentrun: http server: %v\n", err)
			}
		}()
		defer server.Close()
	}

	topo := runtime.NewTopology[echoRequest](runtime.Mesh)
	var refs []runtime.AgentRef[echoRequest]
	for i := 0; i < *agents; i++ {
		agent := runtime.SpawnMetered[echoRequest](rt, func(ctx context.Context, mb *runtime.Mailbox[echoRequest]) {
			for {
				msg, err := mb.Recv(ctx)
				if err != nil {
					return
				}
				req := msg.Payload()
				req.respond(req.value * 2)
			}
		})
		topo.AddAgent(agent)
		refs = append(refs, agent)
	}

	fmt.Printf("spawned %d agents, each with %d mesh neighbors\n", len(refs), len(topo.Neighbors(refs[0].ID())))

	threshold := len(refs)
	responses, err := runtime.Quorum[echoRequest, int](context.Background(), refs, threshold, time.Second, func(respond func(int)) echoRequest {
		return echoRequest{value: 21, respond: respond}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentrun: quorum failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("quorum of %d agents responded: %v\n", len(responses), responses)
}
