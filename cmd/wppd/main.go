package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wppclone/internal/daemon"
	"github.com/matheus3301/wppclone/internal/instance"
	"go.uber.org/fx"
)

func main() {
	instanceFlag := flag.String("instance", "", "instance name (overrides config default)")
	listenFlag := flag.String("listen", "", "listen address (overrides config listen_addr)")
	flag.Parse()

	instanceName := instance.Resolve(*instanceFlag)
	if err := instance.ValidateName(instanceName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{InstanceName: instanceName, ListenAddr: *listenFlag}),
	)

	app.Run()
}
